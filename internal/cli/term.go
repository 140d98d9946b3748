package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/pkg/layout"
	"github.com/matzehuels/ruleviz/pkg/term"
)

// decodeCommand creates the decode command for inspecting tree encodings.
func (c *CLI) decodeCommand() *cobra.Command {
	var (
		literal bool
		asJSON  bool
		spans   bool
	)

	cmd := &cobra.Command{
		Use:   "decode [encoding]",
		Short: "Decode a prefix tree encoding",
		Long: `Decode a prefix tree encoding into a tree.

Every node is a two-character code: a head character and an arity digit.
Crossref combinators (.2, .3) are folded into their parent unless --literal
or codec.literal in the config is set. With no argument the encoding is read
from stdin.`,
		Example: `  ruleviz decode a2b0c0
  ruleviz decode --spans .2a1b0
  echo a1b0 | ruleviz decode --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := readArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			codec := c.Config.TermCodec()
			if literal {
				codec = term.Codec{}
			}
			return runDecode(cmd.OutOrStdout(), enc, codec, asJSON, spans)
		},
	}

	cmd.Flags().BoolVar(&literal, "literal", false, "decode without folding crossref combinators")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	cmd.Flags().BoolVar(&spans, "spans", false, "print the encoding span of every subterm")

	return cmd
}

func runDecode(w io.Writer, enc string, codec term.Codec, asJSON, spans bool) error {
	t, err := codec.Decode(enc)
	if err != nil {
		return err
	}
	if asJSON {
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(t)
	}

	fmt.Fprintln(w, StyleTitle.Render(t.String()))
	t.Walk(func(n *term.Term, depth int) bool {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), StyleHighlight.Render(string(n.Head)))
		return true
	})
	fmt.Fprintf(w, "%s\n", StyleDim.Render(fmt.Sprintf("%d nodes · %d leaves · height %d",
		t.Size(), layout.LeafCount(t), layout.Height(t))))

	if !spans {
		return nil
	}
	lit, err := term.Codec{}.Decode(enc)
	if err != nil {
		return err
	}
	var rows [][]string
	for _, n := range lit.PreOrder() {
		span, width, err := term.NextTermSpan(enc, n.Offset)
		if err != nil {
			return err
		}
		rows = append(rows, []string{strconv.Itoa(n.Offset), string(n.Head), span, strconv.Itoa(width)})
	}
	fmt.Fprintln(w, renderTable([]string{"Offset", "Code", "Span", "Width"}, rows, nil))
	return nil
}

// encodeCommand creates the encode command, the inverse of decode.
func (c *CLI) encodeCommand() *cobra.Command {
	var flatten bool

	cmd := &cobra.Command{
		Use:   "encode [tree.json]",
		Short: "Encode a JSON tree in prefix notation",
		Long: `Encode a JSON tree ({"head": "a2", "children": [...]}) in prefix notation.

With --flatten the configured crossref rewrite is applied before encoding.
With no argument the tree is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			var rule *term.RewriteRule
			if flatten {
				rule = c.Config.TermCodec().Rewrite
			}
			enc, err := encodeJSON(data, rule)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flatten, "flatten", false, "fold crossref combinators before encoding")

	return cmd
}

func encodeJSON(data []byte, rule *term.RewriteRule) (string, error) {
	var t term.Term
	if err := json.Unmarshal(data, &t); err != nil {
		return "", fmt.Errorf("parse tree: %w", err)
	}
	root := &t
	if rule != nil {
		root = term.Flatten(root, rule)
	}
	enc := term.Encode(root)
	// Zero-arity rewrites are display only and never re-decode.
	if rule == nil || !rule.ZeroArity {
		if _, err := (term.Codec{}).Decode(enc); err != nil {
			return "", err
		}
	}
	return enc, nil
}

// readArg returns the single argument or, without one, trimmed stdin.
func readArg(r io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
