package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Structurer/nav-front-build/internal/domain"
)

func TestFileSourceLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		wantEntries int
		wantShape   bool
	}{
		{
			name:        "json",
			file:        "seed.json",
			content:     `{"navList":[{"id":"a","k":1,"name":"Go","url":"https://go.dev","alt":"Go","backgroundColor":"#fff","iconBase64":null}],"operateLog":[]}`,
			wantEntries: 1,
		},
		{
			name: "yaml",
			file: "seed.yaml",
			content: `navList:
  - id: a
    k: 1
    name: Go
    url: https://go.dev
    alt: Go
  - id: b
    k: "2"
    name: Rust
    url: https://rust-lang.org
    alt: Rs
`,
			wantEntries: 2,
		},
		{
			name:      "navList not a list",
			file:      "seed.yaml",
			content:   "navList: nope\n",
			wantShape: true,
		},
		{
			name:    "empty file",
			file:    "seed.yaml",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write seed: %v", err)
			}

			doc, err := FileSource{Path: path}.Load(context.Background())

			var shapeErr *domain.ShapeError
			if tt.wantShape != errors.As(err, &shapeErr) {
				t.Fatalf("Load() err = %v, wantShape %v", err, tt.wantShape)
			}
			if !tt.wantShape && err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(doc.NavList) != tt.wantEntries {
				t.Errorf("Load() entries = %d, want %d", len(doc.NavList), tt.wantEntries)
			}
		})
	}
}

func TestFileSourceYAMLCategoryString(t *testing.T) {
	doc, err := Parse([]byte("navList:\n  - {id: x, k: \"3\", name: X, url: x.example, alt: X}\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.NavList[0].K != 3 {
		t.Errorf("k = %d, want 3", doc.NavList[0].K)
	}
}

func TestFileSourceMissing(t *testing.T) {
	doc, err := FileSource{Path: filepath.Join(t.TempDir(), "absent.json")}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !doc.IsEmpty() {
		t.Error("missing seed should load as empty")
	}

	doc, err = FileSource{}.Load(context.Background())
	if err != nil || !doc.IsEmpty() {
		t.Errorf("empty path: doc=%+v err=%v", doc, err)
	}
}

func TestParseMintsMissingIDs(t *testing.T) {
	data := []byte(`navList:
  - {k: 1, name: Go, url: https://go.dev, alt: Go}
  - {k: 1, name: Rust, url: https://rust-lang.org, alt: Rs}
  - {id: keep, k: 2, name: Zig, url: https://ziglang.org, alt: Z}
`)

	first, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	a, b := first.NavList[0].ID, first.NavList[1].ID
	if !strings.HasPrefix(a, "seed-") || !strings.HasPrefix(b, "seed-") {
		t.Fatalf("minted ids = %q, %q, want seed- prefix", a, b)
	}
	if a == b {
		t.Errorf("distinct entries share id %q", a)
	}
	if first.NavList[2].ID != "keep" {
		t.Errorf("explicit id = %q, want keep", first.NavList[2].ID)
	}
	for i := range first.NavList {
		if first.NavList[i].ID != again.NavList[i].ID {
			t.Errorf("entry %d id changed between parses: %q vs %q", i, first.NavList[i].ID, again.NavList[i].ID)
		}
	}
}
