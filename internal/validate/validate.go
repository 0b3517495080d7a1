// Package validate checks SAF-T audit files. Every run reports all 28
// numbered tests in order; findings are report entries, never errors.
package validate

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/saft/internal/report"
	"github.com/cleared-dev/saft/internal/saft"
)

// NumTests is the number of results in a report for a parseable document.
const NumTests = 28

// Tolerances. Per-transaction and aggregate balance checks (#12, #13, #14,
// #16) allow 0.01; tax recomputation (#24) and the balance formula (#26)
// allow 0.02. The two values are kept as found rather than unified; it is
// not known whether the difference is intentional.
var (
	balanceTolerance = decimal.RequireFromString("0.01")
	taxTolerance     = decimal.RequireFromString("0.02")
	formulaTolerance = decimal.RequireFromString("0.02")
)

// AuditFile validates a document given as text.
func AuditFile(document string) report.Report {
	return Document([]byte(document))
}

// Document validates raw XML. A document that cannot be parsed yields a
// single failed test 0 and nothing else.
func Document(raw []byte) report.Report {
	doc, err := saft.Parse(raw)
	if err != nil {
		return report.New([]report.Result{
			report.Fail(0, "Document parse", err.Error()),
		})
	}
	return run(raw, doc)
}

func run(raw []byte, doc *saft.AuditFile) report.Report {
	st := newState(raw, doc)
	results := make([]report.Result, 0, len(checks))
	for _, c := range checks {
		res := c.fn(st)
		res.TestNumber = c.number
		res.TestName = c.name
		results = append(results, res)
	}
	return report.New(results)
}
