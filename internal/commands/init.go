package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/saft/internal/accounts"
	"github.com/cleared-dev/saft/internal/config"
	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/snapshot"
)

func newInitCommand() *cobra.Command {
	var name string
	var tenant string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new project with a default chart of accounts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, name, tenant); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized project at %s (tenant %s)\n", absDir, tenant)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company legal name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&tenant, "tenant", "default", "tenant directory to create")

	return cmd
}

// defaultTaxTable lists the Romanian VAT rates.
func defaultTaxTable() []model.TaxEntry {
	entries := []struct {
		code, desc, pct string
	}{
		{"310309", "TVA 19%", "19"},
		{"310310", "TVA 9%", "9"},
		{"310311", "TVA 5%", "5"},
		{"310312", "Scutit cu drept de deducere", "0"},
	}
	out := make([]model.TaxEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.TaxEntry{
			TaxType:     "IVA",
			TaxCode:     e.code,
			Description: e.desc,
			Percentage:  decimal.RequireFromString(e.pct),
			Country:     "RO",
		})
	}
	return out
}

func runInit(dir, name, tenant string) error {
	cfg := config.Default()
	for _, d := range []string{cfg.Storage.DataDir, cfg.Storage.ExportsDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	snap := model.Snapshot{
		TenantID: tenant,
		Company: model.Company{
			Name:     name,
			Country:  cfg.AuditFile.Country,
			Currency: cfg.AuditFile.Currency,
		},
		Accounts: accounts.DefaultChart(),
		TaxTable: defaultTaxTable(),
	}
	if err := snapshot.NewDir(filepath.Join(dir, cfg.Storage.DataDir)).Write(snap); err != nil {
		return fmt.Errorf("writing tenant data: %w", err)
	}

	gitignore := cfg.Storage.ExportsDir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
