// Package store reads tenant data from PostgreSQL and records exports there.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleared-dev/saft/internal/exports"
	"github.com/cleared-dev/saft/internal/model"
)

//go:embed schema.sql
var schema string

// ErrTenantNotFound is returned when a tenant has no company profile.
var ErrTenantNotFound = errors.New("tenant not found")

// NewPool connects to databaseURL and pings it.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// Store serves generator reads and export writes from one pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Company returns the tenant's company profile.
func (s *Store) Company(ctx context.Context, tenantID string) (model.Company, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx, `
		SELECT registration_number, tax_registration_number, trade_register_number,
		       name, business_name, street, city, postal_code, country,
		       contact_first_name, contact_last_name, telephone, email,
		       iban, bank_account_number, bank_account_name, sort_code, currency
		FROM companies WHERE tenant_id = $1
	`, tenantID).Scan(
		&c.RegistrationNumber, &c.TaxRegistrationNumber, &c.TradeRegisterNumber,
		&c.Name, &c.BusinessName, &c.Street, &c.City, &c.PostalCode, &c.Country,
		&c.ContactFirstName, &c.ContactLastName, &c.Telephone, &c.Email,
		&c.IBAN, &c.BankAccountNumber, &c.BankAccountName, &c.SortCode, &c.Currency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Company{}, fmt.Errorf("%w: %s", ErrTenantNotFound, tenantID)
		}
		return model.Company{}, fmt.Errorf("querying company: %w", err)
	}
	return c, nil
}

// Accounts returns the chart of accounts ordered by code.
func (s *Store) Accounts(ctx context.Context, tenantID string) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, type, opening_debit, opening_credit, closing_debit, closing_credit
		FROM accounts WHERE tenant_id = $1 ORDER BY code
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Account, error) {
		var a model.Account
		var typ string
		err := row.Scan(&a.ID, &a.Code, &a.Name, &typ, &a.OpeningDebit, &a.OpeningCredit, &a.ClosingDebit, &a.ClosingCredit)
		a.Type = model.AccountType(typ)
		return a, err
	})
}

// Parties returns customers and suppliers ordered by ID.
func (s *Store) Parties(ctx context.Context, tenantID string) ([]model.Party, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, legal_name, tax_id, address, billing_city, billing_country
		FROM parties WHERE tenant_id = $1 ORDER BY id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying parties: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Party, error) {
		var p model.Party
		var kind string
		err := row.Scan(&p.ID, &kind, &p.LegalName, &p.TaxID, &p.Address, &p.BillingCity, &p.BillingCountry)
		p.Kind = model.PartyKind(kind)
		return p, err
	})
}

// TaxTable returns the tenant's tax entries ordered by code.
func (s *Store) TaxTable(ctx context.Context, tenantID string) ([]model.TaxEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tax_type, tax_code, description, percentage, country
		FROM tax_entries WHERE tenant_id = $1 ORDER BY tax_code
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying tax table: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TaxEntry, error) {
		var e model.TaxEntry
		err := row.Scan(&e.TaxType, &e.TaxCode, &e.Description, &e.Percentage, &e.Country)
		return e, err
	})
}

const invoiceColumns = `id, number, type, customer_id, issue_date, due_date, currency,
	subtotal, vat_amount, total, approval_status, notes`

func scanInvoice(row pgx.CollectableRow) (model.Invoice, error) {
	var inv model.Invoice
	var typ, status string
	var due *time.Time
	err := row.Scan(&inv.ID, &inv.Number, &typ, &inv.CustomerID, &inv.IssueDate, &due, &inv.Currency,
		&inv.Subtotal, &inv.VATAmount, &inv.Total, &status, &inv.Notes)
	inv.Type = model.InvoiceType(typ)
	inv.ApprovalStatus = model.ApprovalStatus(status)
	if due != nil {
		inv.DueDate = *due
	}
	return inv, err
}

// Invoices returns invoices issued within [from, to].
func (s *Store) Invoices(ctx context.Context, tenantID string, from, to time.Time) ([]model.Invoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE tenant_id = $1 AND issue_date BETWEEN $2::date AND $3::date
		ORDER BY issue_date, number
	`, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	return pgx.CollectRows(rows, scanInvoice)
}

const lineColumns = `l.id, l.invoice_id, l.product_code, l.description, l.quantity,
	l.unit_price, l.vat_rate, l.unit, l.amount`

func scanLine(row pgx.CollectableRow) (model.InvoiceLine, error) {
	var l model.InvoiceLine
	err := row.Scan(&l.ID, &l.InvoiceID, &l.ProductCode, &l.Description, &l.Quantity,
		&l.UnitPrice, &l.VATRate, &l.Unit, &l.Amount)
	return l, err
}

// InvoiceLines returns the lines of invoices issued within [from, to].
func (s *Store) InvoiceLines(ctx context.Context, tenantID string, from, to time.Time) ([]model.InvoiceLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+lineColumns+`
		FROM invoice_lines l
		JOIN invoices i ON i.tenant_id = l.tenant_id AND i.id = l.invoice_id
		WHERE l.tenant_id = $1 AND i.issue_date BETWEEN $2::date AND $3::date
		ORDER BY l.invoice_id, l.position
	`, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying invoice lines: %w", err)
	}
	return pgx.CollectRows(rows, scanLine)
}

// Invoice returns one invoice, looked up by ID or number, with its lines.
func (s *Store) Invoice(ctx context.Context, tenantID, invoiceID string) (model.Invoice, []model.InvoiceLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices WHERE tenant_id = $1 AND (id = $2 OR number = $2)
		LIMIT 1
	`, tenantID, invoiceID)
	if err != nil {
		return model.Invoice{}, nil, fmt.Errorf("querying invoice: %w", err)
	}
	inv, err := pgx.CollectExactlyOneRow(rows, scanInvoice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Invoice{}, nil, fmt.Errorf("invoice %s not found", invoiceID)
		}
		return model.Invoice{}, nil, fmt.Errorf("querying invoice: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT `+lineColumns+`
		FROM invoice_lines l WHERE l.tenant_id = $1 AND l.invoice_id = $2
		ORDER BY l.position
	`, tenantID, inv.ID)
	if err != nil {
		return model.Invoice{}, nil, fmt.Errorf("querying invoice lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, scanLine)
	if err != nil {
		return model.Invoice{}, nil, fmt.Errorf("querying invoice lines: %w", err)
	}
	return inv, lines, nil
}

// Save implements exports.Sink.
func (s *Store) Save(ctx context.Context, rec exports.Record) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO exports (id, tenant_id, period_from, period_to, generated_at, status, file_content)
		VALUES ($1, $2, $3::date, $4::date, $5, $6, $7)
	`, id, rec.TenantID, rec.PeriodFrom, rec.PeriodTo, rec.GeneratedAt, string(rec.Status), rec.FileContent)
	if err != nil {
		return "", fmt.Errorf("inserting export: %w", err)
	}
	return id, nil
}

// Export returns a recorded export by ID.
func (s *Store) Export(ctx context.Context, id string) (exports.Record, error) {
	var rec exports.Record
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT tenant_id, period_from, period_to, generated_at, status, file_content
		FROM exports WHERE id = $1
	`, id).Scan(&rec.TenantID, &rec.PeriodFrom, &rec.PeriodTo, &rec.GeneratedAt, &status, &rec.FileContent)
	if err != nil {
		return exports.Record{}, fmt.Errorf("querying export %s: %w", id, err)
	}
	rec.Status = exports.Status(status)
	return rec, nil
}

// Import replaces the tenant's data with snap in one transaction.
func (s *Store) Import(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	t := snap.TenantID
	for _, table := range []string{"invoice_lines", "invoices", "tax_entries", "parties", "accounts", "companies"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE tenant_id = $1", t); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	c := snap.Company
	if _, err := tx.Exec(ctx, `
		INSERT INTO companies (tenant_id, registration_number, tax_registration_number, trade_register_number,
			name, business_name, street, city, postal_code, country,
			contact_first_name, contact_last_name, telephone, email,
			iban, bank_account_number, bank_account_name, sort_code, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, t, c.RegistrationNumber, c.TaxRegistrationNumber, c.TradeRegisterNumber,
		c.Name, c.BusinessName, c.Street, c.City, c.PostalCode, c.Country,
		c.ContactFirstName, c.ContactLastName, c.Telephone, c.Email,
		c.IBAN, c.BankAccountNumber, c.BankAccountName, c.SortCode, c.Currency); err != nil {
		return fmt.Errorf("inserting company: %w", err)
	}

	batch := &pgx.Batch{}
	for _, a := range snap.Accounts {
		batch.Queue(`INSERT INTO accounts (tenant_id, id, code, name, type, opening_debit, opening_credit, closing_debit, closing_credit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t, a.ID, a.Code, a.Name, string(a.Type), a.OpeningDebit, a.OpeningCredit, a.ClosingDebit, a.ClosingCredit)
	}
	for _, p := range snap.Parties {
		batch.Queue(`INSERT INTO parties (tenant_id, id, kind, legal_name, tax_id, address, billing_city, billing_country)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t, p.ID, string(p.Kind), p.LegalName, p.TaxID, p.Address, p.BillingCity, p.BillingCountry)
	}
	for _, e := range snap.TaxTable {
		batch.Queue(`INSERT INTO tax_entries (tenant_id, tax_type, tax_code, description, percentage, country)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			t, e.TaxType, e.TaxCode, e.Description, e.Percentage, e.Country)
	}
	for _, inv := range snap.Invoices {
		var due *time.Time
		if !inv.DueDate.IsZero() {
			due = &inv.DueDate
		}
		batch.Queue(`INSERT INTO invoices (tenant_id, id, number, type, customer_id, issue_date, due_date, currency,
				subtotal, vat_amount, total, approval_status, notes)
			VALUES ($1, $2, $3, $4, $5, $6::date, $7::date, $8, $9, $10, $11, $12, $13)`,
			t, inv.ID, inv.Number, string(inv.Type), inv.CustomerID, inv.IssueDate, due, inv.Currency,
			inv.Subtotal, inv.VATAmount, inv.Total, string(inv.ApprovalStatus), inv.Notes)
	}
	for i, l := range snap.InvoiceLines {
		batch.Queue(`INSERT INTO invoice_lines (tenant_id, id, invoice_id, position, product_code, description,
				quantity, unit_price, vat_rate, unit, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			t, l.ID, l.InvoiceID, i, l.ProductCode, l.Description, l.Quantity, l.UnitPrice, l.VATRate, l.Unit, l.Amount)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting tenant data: %w", err)
	}

	return tx.Commit(ctx)
}
