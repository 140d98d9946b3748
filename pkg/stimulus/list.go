package stimulus

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	commaSep = regexp.MustCompile(` *, *`)
	spaceSep = regexp.MustCompile(` +`)
)

// ParseList reads a typed list answer such as "[1, 2, 3]", "1,2,3" or
// "1 2 3". Brackets are optional. It returns false if the text is not a
// list, has more than maxLen elements, or holds an element outside
// [0, maxElt].
func ParseList(s string, maxLen, maxElt int) ([]int, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.Trim(s, " ") == "" {
		return []int{}, true
	}

	var fields []string
	if strings.Contains(s, ",") {
		fields = commaSep.Split(s, -1)
	} else {
		fields = spaceSep.Split(s, -1)
	}
	if len(fields) > maxLen {
		return nil, false
	}
	xs := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > maxElt {
			return nil, false
		}
		xs[i] = n
	}
	return xs, true
}

// PrettyList formats xs as "[1,2,3]".
func PrettyList(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
