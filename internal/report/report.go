// Package report holds the numbered test results produced by the audit-file
// validator and the invoice compliance checker, and renders them.
package report

// Status is the outcome of a single numbered test.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusWarning Status = "warning"
)

// Result is one numbered test outcome.
type Result struct {
	TestNumber int      `json:"test_number"`
	TestName   string   `json:"test_name"`
	Status     Status   `json:"status"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
}

// Report aggregates results in the order they were produced.
type Report struct {
	TotalTests int      `json:"total_tests"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	Warnings   int      `json:"warnings"`
	Results    []Result `json:"results"`
}

// New counts results by status. The slice is kept as given.
func New(results []Result) Report {
	r := Report{TotalTests: len(results), Results: results}
	for _, res := range results {
		switch res.Status {
		case StatusPass:
			r.Passed++
		case StatusFail:
			r.Failed++
		case StatusWarning:
			r.Warnings++
		}
	}
	return r
}

// HasFailures reports whether any test failed. Callers block submission
// when this is true; warnings alone do not block.
func (r Report) HasFailures() bool {
	return r.Failed > 0
}

// Result returns the result with the given test number.
func (r Report) Result(number int) (Result, bool) {
	for _, res := range r.Results {
		if res.TestNumber == number {
			return res, true
		}
	}
	return Result{}, false
}

// Pass, Fail and Warn build a Result.
func Pass(number int, name, message string) Result {
	return Result{TestNumber: number, TestName: name, Status: StatusPass, Message: message}
}

func Fail(number int, name, message string, details ...string) Result {
	return Result{TestNumber: number, TestName: name, Status: StatusFail, Message: message, Details: details}
}

func Warn(number int, name, message string, details ...string) Result {
	return Result{TestNumber: number, TestName: name, Status: StatusWarning, Message: message, Details: details}
}
