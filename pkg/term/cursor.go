package term

import (
	"github.com/matzehuels/ruleviz/pkg/errors"
)

// Cursor is a read position over a tree encoding.
type Cursor struct {
	src string
	pos int
}

// NewCursor returns a cursor at offset 0 of enc.
func NewCursor(enc string) *Cursor {
	return &Cursor{src: enc}
}

// Offset returns the current read offset.
func (c *Cursor) Offset() int { return c.pos }

// Remaining returns the number of unread characters.
func (c *Cursor) Remaining() int { return len(c.src) - c.pos }

// Done reports whether the whole encoding has been consumed.
func (c *Cursor) Done() bool { return c.pos >= len(c.src) }

// Peek returns the code at the cursor without advancing.
func (c *Cursor) Peek() (Symbol, error) {
	if c.Remaining() < CodeWidth {
		return "", malformed(c.pos, "truncated encoding: expected a code, %d characters left", c.Remaining())
	}
	sym := Symbol(c.src[c.pos : c.pos+CodeWidth])
	if !sym.Valid() {
		return "", malformed(c.pos, "invalid arity digit in %q", sym)
	}
	return sym, nil
}

// Next returns the code at the cursor and its offset, then advances past it.
func (c *Cursor) Next() (Symbol, int, error) {
	sym, err := c.Peek()
	if err != nil {
		return "", c.pos, err
	}
	off := c.pos
	c.pos += CodeWidth
	return sym, off, nil
}

// Skip advances past one complete subterm and returns its span.
func (c *Cursor) Skip() (string, error) {
	start := c.pos
	pending := 1
	for pending > 0 {
		sym, _, err := c.Next()
		if err != nil {
			return "", err
		}
		pending += sym.Arity() - 1
	}
	return c.src[start:c.pos], nil
}

// NextTermSpan returns the substring holding the complete subterm that
// starts at offset, and its length in characters.
func NextTermSpan(enc string, offset int) (string, int, error) {
	if offset < 0 || offset > len(enc) {
		return "", 0, malformed(offset, "offset out of range (length %d)", len(enc))
	}
	c := &Cursor{src: enc, pos: offset}
	span, err := c.Skip()
	if err != nil {
		return "", 0, err
	}
	return span, len(span), nil
}

func malformed(offset int, format string, args ...any) error {
	return errors.New(errors.ErrCodeMalformedEncoding, format+" at offset %d", append(args, offset)...)
}
