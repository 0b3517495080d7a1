// Package compliance checks a single outgoing invoice, with its issuer and
// recipient, before it is sent to the e-invoicing system. It is independent
// of the audit-file validator and numbers its 25 tests separately.
package compliance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saft/internal/model"
	"github.com/cleared-dev/saft/internal/report"
)

// NumTests is the number of results in every compliance report.
const NumTests = 25

// MaxPaymentTermDays is the longest payment term accepted without a warning.
const MaxPaymentTermDays = 365

var (
	totalsTolerance = decimal.RequireFromString("0.02")
	lineTolerance   = decimal.RequireFromString("0.01")

	taxIDRe    = regexp.MustCompile(`^([A-Z]{2})?[0-9]{6,10}$`)
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

	knownCurrencies = map[string]bool{
		"RON": true, "EUR": true, "USD": true, "GBP": true, "CHF": true,
		"HUF": true, "BGN": true, "PLN": true, "CZK": true, "MDL": true,
	}

	standardRates = []decimal.Decimal{
		decimal.NewFromInt(0),
		decimal.NewFromInt(5),
		decimal.NewFromInt(9),
		decimal.NewFromInt(19),
	}
)

// subject is the input to every check, with totals recomputed once.
type subject struct {
	inv       model.Invoice
	issuer    model.Company
	recipient model.Party
	lines     []model.InvoiceLine
	computed  model.Totals
}

type check struct {
	number int
	name   string
	fn     func(*subject) report.Result
}

var checks = []check{
	{1, "Invoice number", checkNumber},
	{2, "Issue date", checkIssueDate},
	{3, "Currency code", checkCurrencyCode},
	{4, "Issuer name", checkIssuerName},
	{5, "Issuer tax ID", checkIssuerTaxID},
	{6, "Issuer address", checkIssuerAddress},
	{7, "Issuer registration number", checkIssuerRegistration},
	{8, "Recipient name", checkRecipientName},
	{9, "Recipient tax ID", checkRecipientTaxID},
	{10, "Recipient address", checkRecipientAddress},
	{11, "Line items present", checkLinesPresent},
	{12, "Line item completeness", checkLineCompleteness},
	{13, "Line amount precision", checkLineAmounts},
	{14, "Subtotal recomputation", checkSubtotal},
	{15, "VAT recomputation", checkVAT},
	{16, "Total consistency", checkTotal},
	{17, "Issuer tax ID format", checkIssuerTaxIDFormat},
	{18, "Recipient tax ID format", checkRecipientTaxIDFormat},
	{19, "Due date after issue date", checkDueDate},
	{20, "Currency whitelist", checkCurrencyWhitelist},
	{21, "Payment term", checkPaymentTerm},
	{22, "Standard VAT rates", checkVATRates},
	{23, "Amount precision", checkAmountPrecision},
	{24, "Unit price precision", checkUnitPricePrecision},
	{25, "Approval status", checkApproval},
}

// Check runs all 25 tests. It never fails; problems are report entries.
func Check(inv model.Invoice, issuer model.Company, recipient model.Party, lines []model.InvoiceLine) report.Report {
	s := &subject{
		inv:       inv,
		issuer:    issuer,
		recipient: recipient,
		lines:     lines,
		computed:  model.ComputeTotals(lines),
	}
	results := make([]report.Result, 0, len(checks))
	for _, c := range checks {
		res := c.fn(s)
		res.TestNumber = c.number
		res.TestName = c.name
		results = append(results, res)
	}
	return report.New(results)
}

func pass(format string, args ...any) report.Result {
	return report.Result{Status: report.StatusPass, Message: fmt.Sprintf(format, args...)}
}

func fail(details []string, format string, args ...any) report.Result {
	return report.Result{Status: report.StatusFail, Message: fmt.Sprintf(format, args...), Details: details}
}

func warn(details []string, format string, args ...any) report.Result {
	return report.Result{Status: report.StatusWarning, Message: fmt.Sprintf(format, args...), Details: details}
}

func present(value, what string) report.Result {
	if strings.TrimSpace(value) == "" {
		return fail(nil, "%s is missing", what)
	}
	return pass("%s: %s", what, value)
}

func within(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

func hasPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

func checkNumber(s *subject) report.Result {
	return present(s.inv.Number, "invoice number")
}

func checkIssueDate(s *subject) report.Result {
	if s.inv.IssueDate.IsZero() {
		return fail(nil, "issue date is missing")
	}
	return pass("issued %s", s.inv.IssueDate.Format("2006-01-02"))
}

func checkCurrencyCode(s *subject) report.Result {
	if !currencyRe.MatchString(s.inv.Currency) {
		return fail(nil, "currency %q is not a three-letter code", s.inv.Currency)
	}
	return pass("currency %s", s.inv.Currency)
}

func checkIssuerName(s *subject) report.Result {
	return present(s.issuer.Name, "issuer name")
}

func checkIssuerTaxID(s *subject) report.Result {
	return present(s.issuer.TaxRegistrationNumber, "issuer tax ID")
}

func address(street, city, country string) []string {
	var m []string
	for _, f := range []struct{ name, value string }{{"street", street}, {"city", city}, {"country", country}} {
		if strings.TrimSpace(f.value) == "" {
			m = append(m, f.name)
		}
	}
	return m
}

func checkIssuerAddress(s *subject) report.Result {
	if m := address(s.issuer.Street, s.issuer.City, s.issuer.Country); len(m) > 0 {
		return fail(m, "issuer address is missing %s", strings.Join(m, ", "))
	}
	return pass("issuer address complete")
}

func checkIssuerRegistration(s *subject) report.Result {
	return present(s.issuer.TradeRegisterNumber, "issuer trade register number")
}

func checkRecipientName(s *subject) report.Result {
	return present(s.recipient.LegalName, "recipient name")
}

func checkRecipientTaxID(s *subject) report.Result {
	return present(s.recipient.TaxID, "recipient tax ID")
}

func checkRecipientAddress(s *subject) report.Result {
	r := s.recipient
	if m := address(r.Address, r.BillingCity, r.BillingCountry); len(m) > 0 {
		return fail(m, "recipient address is missing %s", strings.Join(m, ", "))
	}
	return pass("recipient address complete")
}

func checkLinesPresent(s *subject) report.Result {
	if len(s.lines) == 0 {
		return fail(nil, "invoice has no line items")
	}
	return pass("%d line items", len(s.lines))
}

func checkLineCompleteness(s *subject) report.Result {
	var details []string
	for i, l := range s.lines {
		var m []string
		if strings.TrimSpace(l.Description) == "" {
			m = append(m, "description")
		}
		if l.Quantity.IsZero() {
			m = append(m, "quantity")
		}
		if l.UnitPrice.IsNegative() {
			m = append(m, "non-negative unit price")
		}
		if l.VATRate.IsNegative() {
			m = append(m, "non-negative VAT rate")
		}
		if len(m) > 0 {
			details = append(details, fmt.Sprintf("line %d: missing %s", i+1, strings.Join(m, ", ")))
		}
	}
	if len(details) > 0 {
		return fail(details, "incomplete line items (%d)", len(details))
	}
	return pass("all line items complete")
}

// checkLineAmounts compares each recorded line amount with quantity × unit
// price truncated to cents. Lines without a recorded amount pass.
func checkLineAmounts(s *subject) report.Result {
	var details []string
	for i, l := range s.lines {
		if l.Amount.IsZero() {
			continue
		}
		if net := model.LineNet(l); !within(l.Amount, net, lineTolerance) {
			details = append(details, fmt.Sprintf("line %d: recorded %s, computed %s", i+1, l.Amount.String(), net.StringFixed(2)))
		}
	}
	if len(details) > 0 {
		return fail(details, "line amounts differ from quantity × unit price (%d)", len(details))
	}
	return pass("line amounts match quantity × unit price")
}

func checkSubtotal(s *subject) report.Result {
	if !within(s.inv.Subtotal, s.computed.Subtotal, totalsTolerance) {
		return fail(nil, "subtotal %s, lines sum to %s", s.inv.Subtotal.StringFixed(2), s.computed.Subtotal.StringFixed(2))
	}
	return pass("subtotal %s matches lines", s.inv.Subtotal.StringFixed(2))
}

func checkVAT(s *subject) report.Result {
	if !within(s.inv.VATAmount, s.computed.VAT, totalsTolerance) {
		return fail(nil, "VAT %s, lines give %s", s.inv.VATAmount.StringFixed(2), s.computed.VAT.StringFixed(2))
	}
	return pass("VAT %s matches lines", s.inv.VATAmount.StringFixed(2))
}

func checkTotal(s *subject) report.Result {
	want := s.inv.Subtotal.Add(s.inv.VATAmount)
	if !within(s.inv.Total, want, totalsTolerance) {
		return fail(nil, "total %s, subtotal + VAT is %s", s.inv.Total.StringFixed(2), want.StringFixed(2))
	}
	return pass("total %s = subtotal + VAT", s.inv.Total.StringFixed(2))
}

func taxIDFormat(who, id string) report.Result {
	if !taxIDRe.MatchString(strings.TrimSpace(id)) {
		return fail(nil, "%s tax ID %q does not match %s", who, id, taxIDRe.String())
	}
	return pass("%s tax ID %s well formed", who, id)
}

func checkIssuerTaxIDFormat(s *subject) report.Result {
	return taxIDFormat("issuer", s.issuer.TaxRegistrationNumber)
}

func checkRecipientTaxIDFormat(s *subject) report.Result {
	return taxIDFormat("recipient", s.recipient.TaxID)
}

func checkDueDate(s *subject) report.Result {
	if s.inv.DueDate.IsZero() || s.inv.IssueDate.IsZero() {
		return pass("no due date to compare")
	}
	if s.inv.DueDate.Before(s.inv.IssueDate) {
		return fail(nil, "due date %s is before issue date %s",
			s.inv.DueDate.Format("2006-01-02"), s.inv.IssueDate.Format("2006-01-02"))
	}
	return pass("due %s", s.inv.DueDate.Format("2006-01-02"))
}

func checkCurrencyWhitelist(s *subject) report.Result {
	if !knownCurrencies[s.inv.Currency] {
		return warn(nil, "currency %q is not commonly accepted", s.inv.Currency)
	}
	return pass("currency %s accepted", s.inv.Currency)
}

func checkPaymentTerm(s *subject) report.Result {
	if s.inv.DueDate.IsZero() || s.inv.IssueDate.IsZero() {
		return pass("no payment term")
	}
	days := int(s.inv.DueDate.Sub(s.inv.IssueDate).Hours() / 24)
	if days > MaxPaymentTermDays {
		return warn(nil, "payment term of %d days exceeds %d", days, MaxPaymentTermDays)
	}
	return pass("payment term %d days", days)
}

func isStandardRate(r decimal.Decimal) bool {
	for _, s := range standardRates {
		if r.Equal(s) {
			return true
		}
	}
	return false
}

func checkVATRates(s *subject) report.Result {
	var details []string
	for i, l := range s.lines {
		if !isStandardRate(l.VATRate) {
			details = append(details, fmt.Sprintf("line %d: %s%%", i+1, l.VATRate.String()))
		}
	}
	if len(details) > 0 {
		return warn(details, "non-standard VAT rates")
	}
	return pass("all VAT rates standard")
}

func checkAmountPrecision(s *subject) report.Result {
	var details []string
	for _, a := range []struct {
		name  string
		value decimal.Decimal
	}{{"subtotal", s.inv.Subtotal}, {"VAT", s.inv.VATAmount}, {"total", s.inv.Total}} {
		if !hasPlaces(a.value, 2) {
			details = append(details, fmt.Sprintf("%s %s", a.name, a.value.String()))
		}
	}
	for i, l := range s.lines {
		if !hasPlaces(l.Amount, 2) {
			details = append(details, fmt.Sprintf("line %d amount %s", i+1, l.Amount.String()))
		}
	}
	if len(details) > 0 {
		return warn(details, "amounts with more than 2 decimals")
	}
	return pass("amounts have at most 2 decimals")
}

func checkUnitPricePrecision(s *subject) report.Result {
	var details []string
	for i, l := range s.lines {
		if !hasPlaces(l.UnitPrice, 4) {
			details = append(details, fmt.Sprintf("line %d unit price %s", i+1, l.UnitPrice.String()))
		}
	}
	if len(details) > 0 {
		return warn(details, "unit prices with more than 4 decimals")
	}
	return pass("unit prices have at most 4 decimals")
}

func checkApproval(s *subject) report.Result {
	switch s.inv.ApprovalStatus {
	case model.ApprovalApproved:
		return pass("approved")
	case model.ApprovalRejected:
		return fail(nil, "invoice was rejected")
	case model.ApprovalPending:
		return warn(nil, "approval pending")
	default:
		return warn(nil, "approval status %q unknown", s.inv.ApprovalStatus)
	}
}
