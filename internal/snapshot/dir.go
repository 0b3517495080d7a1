// Package snapshot reads and writes a tenant's bookkeeping data as plain
// files: a YAML company profile plus one CSV per table.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleared-dev/saft/internal/accounts"
	"github.com/cleared-dev/saft/internal/model"
)

// File names inside a tenant directory.
const (
	CompanyFile      = "company.yaml"
	AccountsFile     = "chart-of-accounts.csv"
	PartiesFile      = "parties.csv"
	TaxTableFile     = "tax-table.csv"
	InvoicesFile     = "invoices.csv"
	InvoiceLinesFile = "invoice-lines.csv"
)

// Dir serves tenant data from <Root>/<tenant>/. A missing CSV reads as an
// empty table; a missing company profile is an error.
type Dir struct {
	Root string
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// TenantPath returns the directory holding tenantID's files.
func (d *Dir) TenantPath(tenantID string) (string, error) {
	if tenantID == "" || tenantID == "." || tenantID == ".." || strings.ContainsAny(tenantID, `/\`) {
		return "", fmt.Errorf("invalid tenant id %q", tenantID)
	}
	return filepath.Join(d.Root, tenantID), nil
}

// Company reads company.yaml.
func (d *Dir) Company(ctx context.Context, tenantID string) (model.Company, error) {
	var c model.Company
	err := d.read(ctx, tenantID, CompanyFile, true, func(r io.Reader) error {
		var err error
		c, err = ReadCompany(r)
		return err
	})
	return c, err
}

// Accounts reads chart-of-accounts.csv.
func (d *Dir) Accounts(ctx context.Context, tenantID string) ([]model.Account, error) {
	var out []model.Account
	err := d.read(ctx, tenantID, AccountsFile, false, func(r io.Reader) error {
		var err error
		out, err = accounts.ReadAccounts(r)
		return err
	})
	return out, err
}

// Parties reads parties.csv.
func (d *Dir) Parties(ctx context.Context, tenantID string) ([]model.Party, error) {
	var out []model.Party
	err := d.read(ctx, tenantID, PartiesFile, false, func(r io.Reader) error {
		var err error
		out, err = ReadParties(r)
		return err
	})
	return out, err
}

// TaxTable reads tax-table.csv.
func (d *Dir) TaxTable(ctx context.Context, tenantID string) ([]model.TaxEntry, error) {
	var out []model.TaxEntry
	err := d.read(ctx, tenantID, TaxTableFile, false, func(r io.Reader) error {
		var err error
		out, err = ReadTaxTable(r)
		return err
	})
	return out, err
}

// Invoices reads invoices.csv and keeps those issued within [from, to].
func (d *Dir) Invoices(ctx context.Context, tenantID string, from, to time.Time) ([]model.Invoice, error) {
	all, err := d.allInvoices(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var out []model.Invoice
	for _, inv := range all {
		if inRange(inv.IssueDate, from, to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// InvoiceLines reads invoice-lines.csv and keeps the lines whose invoice was
// issued within [from, to].
func (d *Dir) InvoiceLines(ctx context.Context, tenantID string, from, to time.Time) ([]model.InvoiceLine, error) {
	invoices, err := d.Invoices(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(invoices))
	for _, inv := range invoices {
		keep[inv.ID] = true
	}

	var lines []model.InvoiceLine
	err = d.read(ctx, tenantID, InvoiceLinesFile, false, func(r io.Reader) error {
		var err error
		lines, err = ReadInvoiceLines(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	var out []model.InvoiceLine
	for _, l := range lines {
		if keep[l.InvoiceID] {
			out = append(out, l)
		}
	}
	return out, nil
}

// Invoice returns a single invoice with its lines, regardless of date.
func (d *Dir) Invoice(ctx context.Context, tenantID, invoiceID string) (model.Invoice, []model.InvoiceLine, error) {
	all, err := d.allInvoices(ctx, tenantID)
	if err != nil {
		return model.Invoice{}, nil, err
	}
	var inv *model.Invoice
	for i := range all {
		if all[i].ID == invoiceID || all[i].Number == invoiceID {
			inv = &all[i]
			break
		}
	}
	if inv == nil {
		return model.Invoice{}, nil, fmt.Errorf("invoice %s: %w", invoiceID, os.ErrNotExist)
	}

	var lines []model.InvoiceLine
	err = d.read(ctx, tenantID, InvoiceLinesFile, false, func(r io.Reader) error {
		var err error
		lines, err = ReadInvoiceLines(r)
		return err
	})
	if err != nil {
		return model.Invoice{}, nil, err
	}
	var out []model.InvoiceLine
	for _, l := range lines {
		if l.InvoiceID == inv.ID {
			out = append(out, l)
		}
	}
	return *inv, out, nil
}

// Load reads every file of a tenant without any period filter.
func (d *Dir) Load(ctx context.Context, tenantID string) (model.Snapshot, error) {
	snap := model.Snapshot{TenantID: tenantID}
	var err error
	if snap.Company, err = d.Company(ctx, tenantID); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Accounts, err = d.Accounts(ctx, tenantID); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Parties, err = d.Parties(ctx, tenantID); err != nil {
		return model.Snapshot{}, err
	}
	if snap.TaxTable, err = d.TaxTable(ctx, tenantID); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Invoices, err = d.allInvoices(ctx, tenantID); err != nil {
		return model.Snapshot{}, err
	}
	err = d.read(ctx, tenantID, InvoiceLinesFile, false, func(r io.Reader) error {
		var err error
		snap.InvoiceLines, err = ReadInvoiceLines(r)
		return err
	})
	if err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Write stores snap under <Root>/<snap.TenantID>/, replacing existing files.
func (d *Dir) Write(snap model.Snapshot) error {
	dir, err := d.TenantPath(snap.TenantID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating tenant dir: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{CompanyFile, func(w io.Writer) error { return WriteCompany(w, snap.Company) }},
		{AccountsFile, func(w io.Writer) error { return accounts.WriteAccounts(w, snap.Accounts) }},
		{PartiesFile, func(w io.Writer) error { return WriteParties(w, snap.Parties) }},
		{TaxTableFile, func(w io.Writer) error { return WriteTaxTable(w, snap.TaxTable) }},
		{InvoicesFile, func(w io.Writer) error { return WriteInvoices(w, snap.Invoices) }},
		{InvoiceLinesFile, func(w io.Writer) error { return WriteInvoiceLines(w, snap.InvoiceLines) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dir) allInvoices(ctx context.Context, tenantID string) ([]model.Invoice, error) {
	var out []model.Invoice
	err := d.read(ctx, tenantID, InvoicesFile, false, func(r io.Reader) error {
		var err error
		out, err = ReadInvoices(r)
		return err
	})
	return out, err
}

func (d *Dir) read(ctx context.Context, tenantID, name string, required bool, decode func(io.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := d.TenantPath(tenantID)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func inRange(t, from, to time.Time) bool {
	d := t.Format(dateLayout)
	return d >= from.Format(dateLayout) && d <= to.Format(dateLayout)
}
