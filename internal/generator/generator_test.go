package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cleared-dev/saft/internal/config"
	"github.com/cleared-dev/saft/internal/exports"
	"github.com/cleared-dev/saft/internal/ledger"
	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/validate"
)

var generatedAt = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// fakeSource serves a fixed snapshot. failOn makes one read fail; block makes
// every read wait for its context.
type fakeSource struct {
	snap   model.Snapshot
	failOn string
	block  bool
}

func (f *fakeSource) wait(ctx context.Context, source string) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.failOn == source {
		return errors.New("connection reset")
	}
	return nil
}

func (f *fakeSource) Company(ctx context.Context, _ string) (model.Company, error) {
	return f.snap.Company, f.wait(ctx, "company")
}

func (f *fakeSource) Accounts(ctx context.Context, _ string) ([]model.Account, error) {
	return f.snap.Accounts, f.wait(ctx, "accounts")
}

func (f *fakeSource) Parties(ctx context.Context, _ string) ([]model.Party, error) {
	return f.snap.Parties, f.wait(ctx, "parties")
}

func (f *fakeSource) TaxTable(ctx context.Context, _ string) ([]model.TaxEntry, error) {
	return f.snap.TaxTable, f.wait(ctx, "tax table")
}

func (f *fakeSource) Invoices(ctx context.Context, _ string, _, _ time.Time) ([]model.Invoice, error) {
	return f.snap.Invoices, f.wait(ctx, "invoices")
}

func (f *fakeSource) InvoiceLines(ctx context.Context, _ string, _, _ time.Time) ([]model.InvoiceLine, error) {
	return f.snap.InvoiceLines, f.wait(ctx, "invoice lines")
}

type recordingSink struct {
	mu      sync.Mutex
	records []exports.Record
	err     error
}

func (s *recordingSink) Save(_ context.Context, rec exports.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.records = append(s.records, rec)
	return "exp-1", nil
}

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Company: model.Company{
			RegistrationNumber:    "12345678",
			TaxRegistrationNumber: "RO12345678",
			Name:                  "Acme SRL",
			City:                  "Brasov",
			Country:               "RO",
			ContactFirstName:      "Ana",
			ContactLastName:       "Pop",
			Telephone:             "0268000000",
			IBAN:                  "RO49AAAA1B31007593840000",
			BankAccountName:       "Acme SRL",
			SortCode:              "BTRLRO22",
		},
		Accounts: []model.Account{
			{ID: "1", Code: "4111", Name: "Clienti", Type: model.AccountTypeAsset},
			{ID: "2", Code: "707", Name: "Venituri din vanzarea marfurilor", Type: model.AccountTypeRevenue},
			{ID: "3", Code: "4427", Name: "TVA colectata", Type: model.AccountTypeLiability},
		},
		Parties: []model.Party{
			{ID: "c1", Kind: model.PartyCustomer, LegalName: "Client SRL", TaxID: "RO87654321", BillingCity: "Iasi", BillingCountry: "RO"},
		},
		TaxTable: []model.TaxEntry{
			{TaxType: "IVA", TaxCode: "310309", Description: "TVA 19%", Percentage: dec("19"), Country: "RO"},
		},
		Invoices: []model.Invoice{
			{ID: "i1", Number: "FT-001", Type: model.InvoiceTypeInvoice, CustomerID: "c1", IssueDate: day(2025, 1, 10),
				Subtotal: dec("100"), VATAmount: dec("19"), Total: dec("119")},
		},
		InvoiceLines: []model.InvoiceLine{
			{ID: "l1", InvoiceID: "i1", Description: "Consultanta", Quantity: dec("1"), UnitPrice: dec("100"), VATRate: dec("19")},
		},
	}
}

func newGenerator(src Source, sink exports.Sink, opts ...Option) *Generator {
	b := ledger.NewBuilder(config.Default(), nil)
	b.Now = func() time.Time { return generatedAt }
	return New(src, sink, b, opts...)
}

func TestGenerate(t *testing.T) {
	sink := &recordingSink{}
	g := newGenerator(&fakeSource{snap: testSnapshot()}, sink)

	res, err := g.Generate(context.Background(), "acme", day(2025, 1, 1), day(2025, 1, 31))
	require.NoError(t, err)

	assert.Equal(t, "exp-1", res.Metadata.ExportID)
	assert.Equal(t, "acme", res.Metadata.TenantID)
	assert.Equal(t, generatedAt, res.Metadata.GeneratedAt)
	assert.Equal(t, 1, res.Metadata.Transactions)
	assert.Equal(t, "119.00", res.Metadata.TotalDebit)
	assert.Equal(t, "119.00", res.Metadata.TotalCredit)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, res.Document, string(rec.FileContent))
	assert.Equal(t, exports.StatusGenerated, rec.Status)
	assert.Equal(t, day(2025, 1, 1), rec.PeriodFrom)
	assert.Equal(t, day(2025, 1, 31), rec.PeriodTo)

	rep := validate.AuditFile(res.Document)
	assert.Zero(t, rep.Failed, "generated document fails its own validation: %+v", rep.Results)
}

func TestGenerate_MissingMasterAccount(t *testing.T) {
	snap := testSnapshot()
	snap.Accounts = snap.Accounts[:1]
	sink := &recordingSink{}

	res, err := newGenerator(&fakeSource{snap: snap}, sink).Generate(context.Background(), "acme", day(2025, 1, 1), day(2025, 1, 31))
	require.ErrorIs(t, err, ledger.ErrMissingMasterAccount)
	assert.Nil(t, res)
	assert.Empty(t, sink.records)

	var mma *ledger.MissingMasterAccountError
	require.ErrorAs(t, err, &mma)
	assert.Equal(t, []string{"707", "4427"}, mma.Codes)
}

func TestGenerate_FetchFailure(t *testing.T) {
	for _, source := range []string{"company", "accounts", "parties", "tax table", "invoices", "invoice lines"} {
		t.Run(source, func(t *testing.T) {
			sink := &recordingSink{}
			g := newGenerator(&fakeSource{snap: testSnapshot(), failOn: source}, sink)

			res, err := g.Generate(context.Background(), "acme", day(2025, 1, 1), day(2025, 1, 31))
			require.ErrorIs(t, err, ErrDataFetchFailed)
			assert.Nil(t, res)
			assert.Empty(t, sink.records)

			var dfe *DataFetchFailedError
			require.ErrorAs(t, err, &dfe)
			assert.Equal(t, source, dfe.Source)
			assert.True(t, dfe.Retryable())
			assert.Contains(t, err.Error(), "connection reset")
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	sink := &recordingSink{}
	g := newGenerator(&fakeSource{snap: testSnapshot(), block: true}, sink, WithTimeout(20*time.Millisecond))

	_, err := g.Generate(context.Background(), "acme", day(2025, 1, 1), day(2025, 1, 31))
	require.ErrorIs(t, err, ErrDataFetchFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, sink.records)
}

func TestGenerate_SinkFailureIsIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sink := &recordingSink{err: errors.New("disk full")}
	g := newGenerator(&fakeSource{snap: testSnapshot()}, sink, WithLogger(zap.New(core)))

	res, err := g.Generate(context.Background(), "acme", day(2025, 1, 1), day(2025, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, res.Metadata.ExportID)
	assert.NotEmpty(t, res.Document)
	assert.Equal(t, 1, logs.FilterMessage("recording export failed").Len())
}

func TestGenerate_NilSink(t *testing.T) {
	res, err := newGenerator(&fakeSource{snap: testSnapshot()}, nil).Generate(context.Background(), "acme", day(2025, 1, 1), day(2025, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, res.Metadata.ExportID)
}

func TestGenerate_InvertedPeriod(t *testing.T) {
	_, err := newGenerator(&fakeSource{snap: testSnapshot()}, nil).Generate(context.Background(), "acme", day(2025, 2, 1), day(2025, 1, 1))
	assert.ErrorContains(t, err, "before start")
}

func TestGenerate_FileSink(t *testing.T) {
	dir := t.TempDir()
	g := newGenerator(&fakeSource{snap: testSnapshot()}, exports.NewFileSink(dir))

	res, err := g.Generate(context.Background(), "acme", day(2025, 1, 1), day(2025, 1, 31))
	require.NoError(t, err)
	require.NotEmpty(t, res.Metadata.ExportID)

	entries, err := exports.ReadLog(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.Metadata.ExportID, entries[0].ID)
	assert.Equal(t, len(res.Document), entries[0].Bytes)
}
