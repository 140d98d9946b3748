package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/render/styles"
	"github.com/matzehuels/ruleviz/pkg/term"
)

func TestToDOT(t *testing.T) {
	root, err := term.Decode("A2B0C1D0")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	dot := ToDOT(root, Options{})

	for _, want := range []string{
		"digraph G {",
		`n0 [label="A"];`,
		`n3 [label="D"];`,
		"n0 -> n1;",
		"n0 -> n2;",
		"n2 -> n3;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "dashed") {
		t.Error("edges dashed without links")
	}
}

func TestToDOTGroups(t *testing.T) {
	root, err := term.Decode("A2B0C0")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	dot := ToDOT(root, Options{
		Detailed: true,
		Members: []alignment.Member{
			{Unit: 0, Group: 0, Context: true},
			{Unit: 1, Group: 2, Order: 1},
			{Unit: 2, Group: -1, Order: -1},
		},
		Links: []alignment.Spanner{{Parent: 0, Child: 1}, {Parent: 0, Child: 2, Linked: true}},
	})

	tests := []struct {
		name string
		want string
	}{
		{"context color", `fillcolor="` + styles.Simple.Context + `"`},
		{"group color", `fillcolor="` + styles.Simple.Palette[1] + `"`},
		{"detailed label", `label="B\nB0 @2"`},
		{"unlinked edge", "n0 -> n1 [style=dashed];"},
		{"linked edge", "n0 -> n2;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(dot, tt.want) {
				t.Errorf("DOT missing %q\n%s", tt.want, dot)
			}
		})
	}
	if n := strings.Count(dot, "fillcolor="); n != 3 {
		t.Errorf("fillcolor count = %d, want 3 (default + 2 aligned nodes)", n)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.40 200.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.40 200.00" width="100" height="200"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}
