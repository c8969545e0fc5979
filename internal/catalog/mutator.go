// Package catalog applies structured mutations to a catalog document.
//
// Every operation is copy-on-write: the input document is never modified and
// a failed operation returns the error without a partially mutated result.
// Outputs are not normalized; committing them is the caller's job.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/Structurer/nav-front-build/internal/domain"
)

// Draft is an entry as submitted by the add form, without an id.
type Draft struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	Alt             string  `json:"alt"`
	BackgroundColor string  `json:"backgroundColor"`
	IconBase64      *string `json:"iconBase64"`
}

// Patch lists the fields to change on an existing entry. Nil fields are kept.
type Patch struct {
	K               *int    `json:"k,omitempty"`
	Name            *string `json:"name,omitempty"`
	URL             *string `json:"url,omitempty"`
	Alt             *string `json:"alt,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	IconBase64      *string `json:"iconBase64,omitempty"`
	ClearIcon       bool    `json:"clearIcon,omitempty"`
}

// CategoryOrder is the post-drag content of one category.
// Only the ids of the snapshots are authoritative.
type CategoryOrder struct {
	K       int                `json:"k"`
	Entries []domain.IconEntry `json:"entries"`
}

// Add appends a new entry with a fresh id to category k.
func Add(doc domain.Document, d Draft, k int, now time.Time) (domain.Document, domain.IconEntry, error) {
	entry := domain.IconEntry{
		ID:              domain.NewID(now),
		K:               k,
		Name:            strings.TrimSpace(d.Name),
		URL:             domain.FixURLScheme(d.URL),
		Alt:             strings.TrimSpace(d.Alt),
		BackgroundColor: d.BackgroundColor,
		IconBase64:      nonEmpty(d.IconBase64),
	}
	if err := entry.Validate(); err != nil {
		return doc, domain.IconEntry{}, err
	}

	out := doc.Clone()
	out.NavList = append(out.NavList, entry)
	return out, entry, nil
}

// Edit applies p to the entry identified by id. An entry whose category
// changes moves to the end of the list, i.e. to the end of its new category.
func Edit(doc domain.Document, id string, p Patch) (domain.Document, domain.IconEntry, error) {
	idx := doc.IndexOf(id)
	if idx < 0 {
		return doc, domain.IconEntry{}, &domain.LookupError{ID: id, Index: -1}
	}

	old := doc.NavList[idx]
	updated := old
	if p.K != nil {
		updated.K = *p.K
	}
	if p.Name != nil {
		updated.Name = strings.TrimSpace(*p.Name)
	}
	if p.URL != nil {
		updated.URL = domain.FixURLScheme(*p.URL)
	}
	if p.Alt != nil {
		updated.Alt = strings.TrimSpace(*p.Alt)
	}
	if p.BackgroundColor != nil {
		updated.BackgroundColor = *p.BackgroundColor
	}
	if p.ClearIcon {
		updated.IconBase64 = nil
	} else if p.IconBase64 != nil {
		updated.IconBase64 = nonEmpty(p.IconBase64)
	}
	if err := updated.Validate(); err != nil {
		return doc, domain.IconEntry{}, err
	}

	out := doc.Clone()
	if updated.K != old.K {
		out.NavList = append(out.NavList[:idx], out.NavList[idx+1:]...)
		out.NavList = append(out.NavList, updated)
	} else {
		out.NavList[idx] = updated
	}
	return out, updated, nil
}

// Delete removes the entry matching id, falling back to fallbackIndex
// when no entry carries that id.
func Delete(doc domain.Document, id string, fallbackIndex int) (domain.Document, domain.IconEntry, error) {
	idx := doc.IndexOf(id)
	if idx < 0 {
		if fallbackIndex < 0 || fallbackIndex >= len(doc.NavList) {
			return doc, domain.IconEntry{}, &domain.LookupError{ID: id, Index: fallbackIndex}
		}
		idx = fallbackIndex
	}

	out := doc.Clone()
	removed := out.NavList[idx]
	out.NavList = append(out.NavList[:idx], out.NavList[idx+1:]...)
	return out, removed, nil
}

// Move replaces the content of one or two categories with the submitted
// orders. Entries are resolved by id against doc; the snapshots must cover
// every entry currently in the affected categories exactly once.
func Move(doc domain.Document, orders []CategoryOrder) (domain.Document, error) {
	if len(orders) == 0 || len(orders) > 2 {
		return doc, &domain.ValidationError{Field: "categories", Reason: "a move affects one or two categories"}
	}

	affected := make(map[int]bool, len(orders))
	for _, o := range orders {
		if o.K < 1 {
			return doc, &domain.ValidationError{Field: "k", Reason: "category must be a positive integer"}
		}
		if affected[o.K] {
			return doc, &domain.ValidationError{Field: "categories", Reason: fmt.Sprintf("category %d listed twice", o.K)}
		}
		affected[o.K] = true
	}

	byID := make(map[string]domain.IconEntry, len(doc.NavList))
	pending := make(map[string]bool)
	for _, e := range doc.NavList {
		byID[e.ID] = e
		if affected[e.K] {
			pending[e.ID] = true
		}
	}

	out := domain.Document{
		NavList:    make([]domain.IconEntry, 0, len(doc.NavList)),
		OperateLog: doc.Clone().OperateLog,
	}
	for _, e := range doc.NavList {
		if !affected[e.K] {
			out.NavList = append(out.NavList, e)
		}
	}

	for _, o := range orders {
		for _, snap := range o.Entries {
			current, ok := byID[snap.ID]
			if !ok || !pending[snap.ID] {
				// unknown id, an id outside the affected categories, or a duplicate
				return doc, &domain.LookupError{ID: snap.ID, Index: -1}
			}
			delete(pending, snap.ID)
			current.K = o.K
			out.NavList = append(out.NavList, current)
		}
	}

	if len(pending) > 0 {
		return doc, &domain.ValidationError{
			Field:  "entries",
			Reason: fmt.Sprintf("%d entries of the affected categories are missing from the move", len(pending)),
		}
	}
	return out, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
