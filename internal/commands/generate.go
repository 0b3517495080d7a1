package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/saft/internal/generator"
	"github.com/cleared-dev/saft/internal/ledger"
)

func newGenerateCommand(g *globals) *cobra.Command {
	var tenant, from, to, out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the audit file for a tenant and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDay("from", from)
			if err != nil {
				return err
			}
			end, err := parseDay("to", to)
			if err != nil {
				return err
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(g.verbose)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			src, sink, closeFn, err := backend(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			gen := generator.New(src, sink, ledger.NewBuilder(cfg, logger),
				generator.WithLogger(logger),
				generator.WithTimeout(cfg.Fetch.Timeout))

			res, err := gen.Generate(ctx, tenant, start, end)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), res.Document)
				return err
			}
			if err := os.WriteFile(out, []byte(res.Document), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			logger.Debug("wrote audit file", zap.String("path", out))

			m := res.Metadata
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d transactions, debit %s, credit %s", out, m.Transactions, m.TotalDebit, m.TotalCredit)
			if m.ExportID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (export %s)", m.ExportID)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "default", "tenant ID")
	cmd.Flags().StringVar(&from, "from", "", "period start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "period end, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
