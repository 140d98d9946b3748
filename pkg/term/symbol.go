package term

import (
	"strconv"
	"unicode/utf8"
)

// CodeWidth is the number of characters in a tree node code.
const CodeWidth = 2

// Symbol is an atomic unit of a stimulus: a single character for strings,
// or a head+arity code such as "A2" for trees.
type Symbol string

// Head returns the head character of the symbol.
func (s Symbol) Head() byte {
	if s == "" {
		return 0
	}
	return s[0]
}

// Arity returns the number of subterms the symbol consumes.
// Leaves and one-character string symbols have arity 0.
func (s Symbol) Arity() int {
	if len(s) != CodeWidth || s.IsLeaf() {
		return 0
	}
	n, err := strconv.Atoi(string(s[1]))
	if err != nil {
		return 0
	}
	return n
}

// IsLeaf reports whether the symbol is a leaf by the head rule:
// lowercase heads other than '.' never take children.
func (s Symbol) IsLeaf() bool {
	h := s.Head()
	return h >= 'a' && h <= 'z'
}

// Valid reports whether s is a well-formed tree code.
func (s Symbol) Valid() bool {
	return len(s) == CodeWidth && isDigit(s[1])
}

// WithArity returns a code with the same head and the given arity digit.
func (s Symbol) WithArity(n int) Symbol {
	if n < 0 || n > 9 {
		n = 0
	}
	return Symbol([]byte{s.Head(), byte('0' + n)})
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Chars splits a string stimulus into one-character symbols.
func Chars(s string) []Symbol {
	out := make([]Symbol, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, Symbol(string(r)))
	}
	return out
}

// Codes splits a tree encoding into its node codes without decoding structure.
func Codes(enc string) ([]Symbol, error) {
	if len(enc)%CodeWidth != 0 {
		return nil, malformed(len(enc), "odd encoding length %d", len(enc))
	}
	out := make([]Symbol, 0, len(enc)/CodeWidth)
	for i := 0; i < len(enc); i += CodeWidth {
		sym := Symbol(enc[i : i+CodeWidth])
		if !sym.Valid() {
			return nil, malformed(i, "invalid code %q", sym)
		}
		out = append(out, sym)
	}
	return out, nil
}
