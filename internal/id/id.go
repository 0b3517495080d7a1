package id

import "fmt"

// FormatTransactionID returns a GL transaction ID like "2025-01-001".
// Sequences restart every month.
func FormatTransactionID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatRecordID returns a line record ID like "2025-01-001a" (line 0='a', 1='b', etc.).
func FormatRecordID(transactionID string, line int) string {
	return transactionID + string(rune('a'+line))
}

// FormatProductCode returns a derived product code like "P0007" for
// products that have none of their own.
func FormatProductCode(seq int) string {
	return fmt.Sprintf("P%04d", seq)
}
