package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogHeader is the CSV header for export-log.csv.
const LogHeader = "export_id,tenant_id,period_from,period_to,generated_at,status,file,bytes"

// LogFile is the name of the export log inside the exports directory.
const LogFile = "export-log.csv"

const (
	numFields      = 8
	colID          = 0
	colTenant      = 1
	colPeriodFrom  = 2
	colPeriodTo    = 3
	colGeneratedAt = 4
	colStatus      = 5
	colFile        = 6
	colBytes       = 7
	dateLayout     = "2006-01-02"
)

// Entry is one row of the export log.
type Entry struct {
	ID          string
	TenantID    string
	PeriodFrom  time.Time
	PeriodTo    time.Time
	GeneratedAt time.Time
	Status      Status
	File        string // relative to the exports directory
	Bytes       int
}

// FileSink writes each export to <dir>/<id>.xml and appends a row to
// <dir>/export-log.csv. IDs are random UUIDs.
type FileSink struct {
	dir   string
	newID func() string
	mu    sync.Mutex
}

// NewFileSink returns a FileSink rooted at dir. The directory is created on
// first use.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir, newID: uuid.NewString}
}

// Save implements Sink.
func (s *FileSink) Save(ctx context.Context, rec Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating exports dir: %w", err)
	}

	id := s.newID()
	name := id + ".xml"
	if err := os.WriteFile(filepath.Join(s.dir, name), rec.FileContent, 0o644); err != nil {
		return "", fmt.Errorf("writing export %s: %w", id, err)
	}

	entry := Entry{
		ID:          id,
		TenantID:    rec.TenantID,
		PeriodFrom:  rec.PeriodFrom,
		PeriodTo:    rec.PeriodTo,
		GeneratedAt: rec.GeneratedAt,
		Status:      rec.Status,
		File:        name,
		Bytes:       len(rec.FileContent),
	}
	if err := appendLog(filepath.Join(s.dir, LogFile), entry); err != nil {
		return "", err
	}
	return id, nil
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colTenant] = e.TenantID
	row[colPeriodFrom] = e.PeriodFrom.Format(dateLayout)
	row[colPeriodTo] = e.PeriodTo.Format(dateLayout)
	row[colGeneratedAt] = e.GeneratedAt.Format(time.RFC3339)
	row[colStatus] = string(e.Status)
	row[colFile] = e.File
	row[colBytes] = strconv.Itoa(e.Bytes)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	from, err := time.Parse(dateLayout, record[colPeriodFrom])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing period_from %q: %w", record[colPeriodFrom], err)
	}
	to, err := time.Parse(dateLayout, record[colPeriodTo])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing period_to %q: %w", record[colPeriodTo], err)
	}
	ts, err := time.Parse(time.RFC3339, record[colGeneratedAt])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing generated_at %q: %w", record[colGeneratedAt], err)
	}
	n, err := strconv.Atoi(record[colBytes])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing bytes %q: %w", record[colBytes], err)
	}

	return Entry{
		ID:          record[colID],
		TenantID:    record[colTenant],
		PeriodFrom:  from,
		PeriodTo:    to,
		GeneratedAt: ts,
		Status:      Status(record[colStatus]),
		File:        record[colFile],
		Bytes:       n,
	}, nil
}

func appendLog(path string, e Entry) error {
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening export log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(LogHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing export %s: %w", e.ID, err)
	}
	cw.Flush()
	return cw.Error()
}

// ReadLog returns all entries from <dir>/export-log.csv.
// Returns an empty slice if the file does not exist.
func ReadLog(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, LogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening export log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading export log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
