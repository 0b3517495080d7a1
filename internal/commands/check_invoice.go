package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/saft/internal/compliance"
	"github.com/cleared-dev/saft/internal/model"
)

func newCheckInvoiceCommand(g *globals) *cobra.Command {
	var tenant, invoice, format, out string

	cmd := &cobra.Command{
		Use:   "check-invoice",
		Short: "Run the e-invoice compliance checks on one invoice",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			src, _, closeFn, err := backend(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			inv, lines, err := src.Invoice(ctx, tenant, invoice)
			if err != nil {
				return err
			}
			issuer, err := src.Company(ctx, tenant)
			if err != nil {
				return err
			}
			parties, err := src.Parties(ctx, tenant)
			if err != nil {
				return err
			}

			// An unknown customer checks as a party with no data.
			var recipient model.Party
			for _, p := range parties {
				if p.ID == inv.CustomerID {
					recipient = p
					break
				}
			}

			rep := compliance.Check(inv, issuer, recipient, lines)
			if err := writeReport(cmd.OutOrStdout(), out, format, "Invoice "+inv.Number, rep); err != nil {
				return err
			}
			if rep.HasFailures() {
				return fmt.Errorf("%w: %d of %d", ErrChecksFailed, rep.Failed, rep.TotalTests)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "default", "tenant ID")
	cmd.Flags().StringVar(&invoice, "invoice", "", "invoice ID or number (required)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "report format: text, json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "report file (default stdout)")
	_ = cmd.MarkFlagRequired("invoice")

	return cmd
}
