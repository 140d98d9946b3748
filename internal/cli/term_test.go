package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/ruleviz/pkg/term"
)

func TestRunDecode(t *testing.T) {
	tests := []struct {
		name  string
		enc   string
		codec term.Codec
		want  []string
	}{
		{"plain", "A2B0C0", term.DefaultCodec, []string{"A(B,C)", "3 nodes · 2 leaves · height 1"}},
		{"flattened", ".2F0B0", term.DefaultCodec, []string{"F(B)", "F1"}},
		{"literal", ".2F0B0", term.Codec{}, []string{".(F,B)", "3 nodes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := runDecode(&buf, tt.enc, tt.codec, false, false); err != nil {
				t.Fatalf("runDecode(%q): %v", tt.enc, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestRunDecodeSpans(t *testing.T) {
	var buf bytes.Buffer
	if err := runDecode(&buf, "A2B1D0C0", term.DefaultCodec, false, true); err != nil {
		t.Fatal(err)
	}
	for _, span := range []string{"A2B1D0C0", "B1D0", "C0"} {
		if !strings.Contains(buf.String(), span) {
			t.Errorf("span table missing %q:\n%s", span, buf.String())
		}
	}
}

func TestRunDecodeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := runDecode(&buf, "A1B0", term.DefaultCodec, true, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"head": "A1"`) || !strings.Contains(buf.String(), `"head": "B0"`) {
		t.Errorf("unexpected JSON:\n%s", buf.String())
	}
}

func TestRunDecodeMalformed(t *testing.T) {
	for _, enc := range []string{"", "A", "A2B0", "A0B0"} {
		if err := runDecode(&bytes.Buffer{}, enc, term.DefaultCodec, false, false); err == nil {
			t.Errorf("runDecode(%q) should fail", enc)
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		rule    *term.RewriteRule
		want    string
		wantErr bool
	}{
		{"leaf", `{"head":"A0"}`, nil, "A0", false},
		{"tree", `{"head":"A2","children":[{"head":"B0"},{"head":"C0"}]}`, nil, "A2B0C0", false},
		{"flatten", `{"head":".2","children":[{"head":"F0"},{"head":"B0"}]}`, term.DefaultRewrite, "F1B0", false},
		{"arity mismatch", `{"head":"A2","children":[{"head":"B0"}]}`, nil, "", true},
		{"bad json", `{"head":`, nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeJSON([]byte(tt.json), tt.rule)
			if (err != nil) != tt.wantErr {
				t.Fatalf("encodeJSON error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("encodeJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeEncodeCommands(t *testing.T) {
	out, err := execute(t, "A2B0C0\n", "decode", "--json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	enc, err := execute(t, out, "encode")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(enc) != "A2B0C0" {
		t.Errorf("round trip = %q, want A2B0C0", enc)
	}
}

func TestReadArg(t *testing.T) {
	got, err := readArg(strings.NewReader("  A0\n"), nil)
	if err != nil || got != "A0" {
		t.Errorf("readArg(stdin) = %q, %v", got, err)
	}
	got, err = readArg(strings.NewReader("ignored"), []string{"B0"})
	if err != nil || got != "B0" {
		t.Errorf("readArg(arg) = %q, %v", got, err)
	}
}
