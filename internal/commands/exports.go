package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/saft/internal/config"
	"github.com/cleared-dev/saft/internal/exports"
)

func newExportsCommand(g *globals) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List recorded exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.StorageFile {
				return fmt.Errorf("exports listing needs the %s storage driver", config.StorageFile)
			}

			entries, err := exports.ReadLog(cfg.Storage.ExportsDir)
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "TENANT", "PERIOD", "GENERATED", "STATUS", "BYTES")
			for _, e := range entries {
				if tenant != "" && e.TenantID != tenant {
					continue
				}
				t.Row(
					e.ID,
					e.TenantID,
					e.PeriodFrom.Format("2006-01-02")+".."+e.PeriodTo.Format("2006-01-02"),
					e.GeneratedAt.Format("2006-01-02 15:04"),
					string(e.Status),
					strconv.Itoa(e.Bytes),
				)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t)
			return err
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "only list exports for this tenant")

	return cmd
}
