package term_test

import (
	"fmt"

	"github.com/matzehuels/ruleviz/pkg/term"
)

func ExampleDecode() {
	t, err := term.Decode("A2B1D0C0")
	if err != nil {
		panic(err)
	}
	fmt.Println(t)
	fmt.Println(term.Encode(t))
	// Output:
	// A(B(D),C)
	// A2B1D0C0
}

func ExampleNextTermSpan() {
	span, n, _ := term.NextTermSpan("A2B1D0C0", 2)
	fmt.Println(span, n)
	// Output: B1D0 4
}

func ExampleFlatten() {
	raw, _ := term.Codec{}.Decode(".2F0B0")
	fmt.Println(raw.Head, len(raw.Children))
	flat := term.Flatten(raw, term.DefaultRewrite)
	fmt.Println(flat, term.Encode(flat))
	// Output:
	// .2 2
	// F(B) F1B0
}
