// Package generator runs one audit-file generation: it fetches a tenant's
// data, builds and serializes the document, and records the export.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/saft/internal/exports"
	"github.com/cleared-dev/saft/internal/ledger"
	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/saft"
)

// DefaultTimeout bounds the data fetch when no WithTimeout option is given.
const DefaultTimeout = 10 * time.Second

// Source reads a tenant's bookkeeping data. Invoices and InvoiceLines select
// by invoice issue date within [from, to], both ends inclusive.
type Source interface {
	Company(ctx context.Context, tenantID string) (model.Company, error)
	Accounts(ctx context.Context, tenantID string) ([]model.Account, error)
	Parties(ctx context.Context, tenantID string) ([]model.Party, error)
	TaxTable(ctx context.Context, tenantID string) ([]model.TaxEntry, error)
	Invoices(ctx context.Context, tenantID string, from, to time.Time) ([]model.Invoice, error)
	InvoiceLines(ctx context.Context, tenantID string, from, to time.Time) ([]model.InvoiceLine, error)
}

// Metadata describes a generated document.
type Metadata struct {
	ExportID     string // empty when the sink did not record the export
	TenantID     string
	PeriodFrom   time.Time
	PeriodTo     time.Time
	GeneratedAt  time.Time
	Transactions int
	TotalDebit   string
	TotalCredit  string
}

// Result is a generated document and its metadata.
type Result struct {
	Document string
	Metadata Metadata
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithTimeout bounds the data fetch.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// Generator produces audit files. It is safe for concurrent use.
type Generator struct {
	src     Source
	sink    exports.Sink
	builder *ledger.Builder
	logger  *zap.Logger
	timeout time.Duration
}

// New returns a Generator. A nil sink discards exports.
func New(src Source, sink exports.Sink, builder *ledger.Builder, opts ...Option) *Generator {
	if sink == nil {
		sink = exports.Discard{}
	}
	g := &Generator{
		src:     src,
		sink:    sink,
		builder: builder,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate builds the audit file for tenantID over [from, to]. Fetch errors
// come back as *DataFetchFailedError and a missing master account as
// *ledger.MissingMasterAccountError; in both cases nothing is serialized or
// recorded.
func (g *Generator) Generate(ctx context.Context, tenantID string, from, to time.Time) (*Result, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("period end %s is before start %s", saft.Date(to), saft.Date(from))
	}
	log := g.logger.With(zap.String("tenant", tenantID), zap.String("from", saft.Date(from)), zap.String("to", saft.Date(to)))

	snap, err := g.fetch(ctx, tenantID, from, to)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return nil, err
	}

	doc, err := g.builder.Build(snap, from, to)
	if err != nil {
		return nil, err
	}
	data, err := saft.Marshal(doc)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		TenantID:     tenantID,
		PeriodFrom:   from,
		PeriodTo:     to,
		GeneratedAt:  g.now(),
		Transactions: len(doc.Transactions()),
		TotalDebit:   doc.GeneralLedgerEntries.TotalDebit,
		TotalCredit:  doc.GeneralLedgerEntries.TotalCredit,
	}

	exportID, err := g.sink.Save(ctx, exports.Record{
		TenantID:    tenantID,
		PeriodFrom:  from,
		PeriodTo:    to,
		GeneratedAt: meta.GeneratedAt,
		Status:      exports.StatusGenerated,
		FileContent: data,
	})
	if err != nil {
		log.Warn("recording export failed", zap.Error(err))
	} else {
		meta.ExportID = exportID
	}

	log.Info("generated audit file",
		zap.String("export_id", meta.ExportID),
		zap.Int("transactions", meta.Transactions),
		zap.Int("bytes", len(data)))

	return &Result{Document: string(data), Metadata: meta}, nil
}

// fetch runs the six reads concurrently and waits for all of them.
func (g *Generator) fetch(ctx context.Context, tenantID string, from, to time.Time) (model.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	snap := model.Snapshot{TenantID: tenantID}
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() (err error) {
		snap.Company, err = g.src.Company(ctx, tenantID)
		return wrapFetch("company", err)
	})
	eg.Go(func() (err error) {
		snap.Accounts, err = g.src.Accounts(ctx, tenantID)
		return wrapFetch("accounts", err)
	})
	eg.Go(func() (err error) {
		snap.Parties, err = g.src.Parties(ctx, tenantID)
		return wrapFetch("parties", err)
	})
	eg.Go(func() (err error) {
		snap.TaxTable, err = g.src.TaxTable(ctx, tenantID)
		return wrapFetch("tax table", err)
	})
	eg.Go(func() (err error) {
		snap.Invoices, err = g.src.Invoices(ctx, tenantID, from, to)
		return wrapFetch("invoices", err)
	})
	eg.Go(func() (err error) {
		snap.InvoiceLines, err = g.src.InvoiceLines(ctx, tenantID, from, to)
		return wrapFetch("invoice lines", err)
	})

	if err := eg.Wait(); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

func wrapFetch(source string, err error) error {
	if err == nil {
		return nil
	}
	var dfe *DataFetchFailedError
	if errors.As(err, &dfe) {
		return err
	}
	return &DataFetchFailedError{Source: source, Err: err}
}

func (g *Generator) now() time.Time {
	if g.builder != nil && g.builder.Now != nil {
		return g.builder.Now()
	}
	return time.Now()
}
