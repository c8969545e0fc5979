// Package transfer reads and writes catalog backup files.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Structurer/nav-front-build/internal/domain"
)

// MaxFileBytes bounds an import file.
const MaxFileBytes = domain.MaxDocumentBytes

// FileName is the suggested download name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("nav_data_%s.json", t.Format("2006-01-02"))
}

// Export writes doc as indented JSON, normalized.
func Export(w io.Writer, doc domain.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(domain.Canonical(doc)); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Decode reads an exported file. navList must be an array; an operateLog
// that is not an array is replaced by an empty one. The result is normalized.
func Decode(r io.Reader) (domain.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileBytes+1))
	if err != nil {
		return domain.Empty(), fmt.Errorf("read import: %w", err)
	}
	if len(data) > MaxFileBytes {
		return domain.Empty(), &domain.FormatError{Reason: "file too large"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return domain.Empty(), &domain.FormatError{Reason: "not a JSON object"}
	}
	nav := bytes.TrimSpace(fields["navList"])
	if len(nav) == 0 || nav[0] != '[' {
		return domain.Empty(), &domain.FormatError{Reason: "navList must be an array"}
	}

	doc, err := domain.DecodeDocument(data, "import")
	var shapeErr *domain.ShapeError
	if errors.As(err, &shapeErr) && shapeErr.Field != "operateLog" {
		return domain.Empty(), &domain.FormatError{Reason: shapeErr.Reason}
	}
	return domain.Canonical(doc), nil
}
