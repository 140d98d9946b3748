// Package term decodes and encodes the prefix notation used by tree stimuli.
//
// A tree stimulus is written as the concatenation of its node codes in
// pre-order. Every code is two characters: a head character followed by an
// arity digit. "A2B0C0" is the tree A(B, C). A code whose head is a lowercase
// letter is always a leaf, whatever its digit says; every other head consumes
// as many following subterms as its digit.
//
// # Decoding
//
// [Decode] walks the encoding with a [Cursor] and returns the root [Term].
// Each decoded node remembers the character offset of its own code, which
// the alignment analyzer uses to match nodes against alignment intervals.
// [NextTermSpan] measures one complete subterm without building it.
//
// # Crossref flattening
//
// Combinator heads (".2" and ".3" by default) take a reference as their first
// child. A [RewriteRule] folds that reference into the parent: the parent
// adopts the first child's head character and the first child disappears
// from the rendered tree. The rewrite is lossy, so [Encode] of a flattened
// term does not reproduce its source encoding. Use [Codec] with a nil rule
// for exact round trips.
//
// # Strings
//
// String stimuli have one-character symbols and no structure; [Chars] splits
// them into symbols so that both kinds share the [Symbol] type.
package term
