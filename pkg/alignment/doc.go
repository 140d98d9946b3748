// Package alignment analyzes how an output stimulus was assembled from an input.
//
// An [Alignment] is an ordered list of correspondence [Group]s. Each group
// names a literal substring and the intervals where it occurs in the input
// and in the output. Context groups (context == 1) mark background material
// that the rule leaves untouched. Intervals are character offsets into the
// flat encodings; a unit is one character for strings and one two-character
// code for trees (see [Kind]).
//
// The analyzer answers four questions:
//
//   - [FlattenedOutput]: what output does the alignment describe
//   - [GroupMembership]: which group does each node or position belong to
//   - [Spanners]: which tree edges stay inside one group
//   - [Provenance]: where did each output unit come from, if anywhere
//
// [Validate] checks that output intervals tile the output exactly once;
// [Check] also compares the intervals against concrete encodings. All
// failures carry the INVALID_ALIGNMENT code.
package alignment
