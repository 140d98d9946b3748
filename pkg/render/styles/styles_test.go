package styles

import (
	"testing"

	"github.com/matzehuels/ruleviz/pkg/errors"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "simple"},
		{"simple", "simple"},
		{"Contrast", "contrast"},
	}
	for _, tt := range tests {
		got, err := Lookup(tt.name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tt.name, err)
		}
		if got.Name != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.name, got.Name, tt.want)
		}
	}
	if _, err := Lookup("neon"); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("Lookup(neon) error = %v, want INVALID_STYLE", err)
	}
}

func TestGroupColor(t *testing.T) {
	th := Simple
	if got := th.GroupColor(0, true); got != th.Context {
		t.Errorf("context group = %s, want %s", got, th.Context)
	}
	if got := th.GroupColor(1, false); got != th.Palette[1] {
		t.Errorf("order 1 = %s, want %s", got, th.Palette[1])
	}
	if got := th.GroupColor(len(th.Palette), false); got != th.Palette[0] {
		t.Errorf("palette should wrap, got %s", got)
	}
}

func TestFontSize(t *testing.T) {
	if got := FontSize(100, 100, 1); got != fontSizeMax {
		t.Errorf("roomy box = %v, want max %v", got, fontSizeMax)
	}
	if got := FontSize(1, 1, 10); got != fontSizeMin {
		t.Errorf("tiny box = %v, want min %v", got, fontSizeMin)
	}
}

func TestEscapeXML(t *testing.T) {
	if got := EscapeXML(`a<b&"c"`); got != "a&lt;b&amp;&#34;c&#34;" {
		t.Errorf("EscapeXML = %s", got)
	}
}
