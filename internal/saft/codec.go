package saft

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of every date leaf.
const DateLayout = "2006-01-02"

// Marshal renders the document with an XML declaration and two-space indent.
// The root element is always emitted in Namespace.
func Marshal(f *AuditFile) ([]byte, error) {
	out := *f
	out.XMLName = xml.Name{Space: Namespace, Local: RootElement}

	body, err := xml.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding audit file: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Parse decodes a document. Any well-formed root is accepted; callers check
// XMLName against RootElement and Namespace.
func Parse(data []byte) (*AuditFile, error) {
	var f AuditFile
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding audit file: %w", err)
	}
	return &f, nil
}

// TopLevelOrder returns the local names of the root's direct children in
// document order.
func TopLevelOrder(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var names []string
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("scanning audit file: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				names = append(names, t.Name.Local)
			}
		case xml.EndElement:
			depth--
		}
	}
}

// Amount renders a monetary value with exactly two fractional digits.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Date renders a date leaf.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}
