package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxIconBytes is the largest decoded image accepted for iconBase64.
const MaxIconBytes = 2 * 1024 * 1024

// MaxDocumentBytes bounds an encoded catalog document wherever one crosses
// a boundary: import files, remote uploads and remote downloads.
const MaxDocumentBytes = 32 << 20

var allowedIconTypes = map[string]bool{
	"image/png":                true,
	"image/jpeg":               true,
	"image/jpg":                true,
	"image/svg+xml":            true,
	"image/webp":               true,
	"image/gif":                true,
	"image/x-icon":             true,
	"image/vnd.microsoft.icon": true,
}

// NewID builds an entry id from the creation time and a random suffix.
// Example: "lx3k9q2a-4f1c0b"
func NewID(now time.Time) string {
	u := uuid.New()
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
	for len(suffix) < 6 {
		suffix = "0" + suffix
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + suffix[:6]
}

// StableID derives a deterministic id from parts, so a reloaded seed keeps
// its ids. Example: StableID("hp-", "https://a.example") = "hp-" + 12 hex chars.
func StableID(prefix string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return prefix + hex.EncodeToString(hash[:])[:12]
}

// AssignStableIDs gives every id-less entry a StableID built from its
// position, name and url. Entries that carry an id keep it.
func AssignStableIDs(doc Document, prefix string) Document {
	out := doc.Clone()
	for i := range out.NavList {
		e := &out.NavList[i]
		if strings.TrimSpace(e.ID) == "" {
			e.ID = StableID(prefix, strconv.Itoa(i), e.Name, e.URL)
		}
	}
	return out
}

// FixURLScheme prefixes https:// unless the url already carries an
// http, https or file scheme.
func FixURLScheme(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	for _, scheme := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(lower, scheme) {
			return u
		}
	}
	return "https://" + u
}

// Validate checks the fields required before an entry may be committed.
func (e IconEntry) Validate() error {
	if e.K < 1 {
		return &ValidationError{Field: "k", Reason: "category must be a positive integer"}
	}
	if strings.TrimSpace(e.URL) == "" {
		return &ValidationError{Field: "url", Reason: "required"}
	}
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(e.Alt) == "" && e.IconBase64 == nil {
		return &ValidationError{Field: "alt", Reason: "alt text or an uploaded image is required"}
	}
	if e.IconBase64 != nil {
		return ValidateIcon(*e.IconBase64)
	}
	return nil
}

// ValidateIcon checks that an inline image is a supported data URL of at most MaxIconBytes.
func ValidateIcon(dataURL string) error {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return &ValidationError{Field: "iconBase64", Reason: "must be a data URL"}
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return &ValidationError{Field: "iconBase64", Reason: "malformed data URL"}
	}
	mime, enc, _ := strings.Cut(meta, ";")
	if !allowedIconTypes[strings.ToLower(mime)] {
		return &ValidationError{Field: "iconBase64", Reason: "unsupported image type " + mime}
	}
	if enc != "base64" {
		return &ValidationError{Field: "iconBase64", Reason: "image must be base64 encoded"}
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxIconBytes+2 {
		return &ValidationError{Field: "iconBase64", Reason: "image exceeds 2 MiB"}
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return &ValidationError{Field: "iconBase64", Reason: "invalid base64 payload"}
	}
	if len(raw) > MaxIconBytes {
		return &ValidationError{Field: "iconBase64", Reason: "image exceeds 2 MiB"}
	}
	return nil
}

// Fallback returns the text drawn on a tile without an image.
func (e IconEntry) Fallback() string {
	if alt := strings.TrimSpace(e.Alt); alt != "" {
		return alt
	}
	for _, r := range strings.TrimSpace(e.Name) {
		return strings.ToUpper(string(r))
	}
	return ""
}

// ReshapeSeed coerces every entry of a seed document to the seven-field
// schema, filling gaps with defaults, and resets the operate log.
func ReshapeSeed(doc Document, now time.Time) Document {
	out := Document{
		NavList:    make([]IconEntry, 0, len(doc.NavList)),
		OperateLog: []json.RawMessage{},
	}
	for _, e := range doc.NavList {
		if e.ID == "" {
			e.ID = NewID(now)
		}
		if e.K < 1 {
			e.K = 1
		}
		if e.BackgroundColor == "" {
			e.BackgroundColor = DefaultBackgroundColor
		}
		e.URL = FixURLScheme(e.URL)
		out.NavList = append(out.NavList, e)
	}
	return out
}
