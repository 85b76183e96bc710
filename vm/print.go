package vm

import "strings"

// countBraces counts top-level balanced "{...}" groups in text as one
// placeholder each; braces nested inside a group don't add extra
// placeholders. This mirrors the scanner's own brace-balancing rule so the
// two stay in sync: whatever the scanner captured as one Printable token
// becomes exactly one placeholder here.
func countBraces(text string) int {
	count := 0
	depth := 0
	for _, r := range text {
		switch r {
		case '{':
			if depth == 0 {
				count++
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return count
}

// replaceLastBraces substitutes the rightmost remaining "{}" placeholder
// pair in text with value, and returns the result. It operates on the
// literal two-character substring "{}" left behind by the scanner for each
// interpolation (scanString appends '{' then, on the next loop iteration,
// the still-unconsumed '}').
func replaceLastBraces(text, value string) string {
	idx := strings.LastIndex(text, "{}")
	if idx < 0 {
		return text
	}
	return text[:idx] + value + text[idx+2:]
}

// print pops the top string value, then one value per interpolation
// placeholder, and substitutes them rightmost placeholder first. The
// compiler pushes interpolations in reverse source order, so the first
// value popped belongs to the leftmost placeholder and the last one popped
// to the rightmost. Appends a newline to stdout.
func (i *Instance) print() error {
	v, ok := i.leaf.pop()
	if !ok {
		return i.errorf("cannot pop an empty stack")
	}
	if v.Kind != KindString {
		return i.errorf("print requires a string value")
	}
	text := v.Text
	n := countBraces(text)
	args := make([]string, n)
	for k := 0; k < n; k++ {
		arg, ok := i.leaf.pop()
		if !ok {
			return i.errorf("cannot pop an empty stack")
		}
		args[k] = arg.String()
	}
	for k := n - 1; k >= 0; k-- {
		text = replaceLastBraces(text, args[k])
	}
	i.stdout.Write([]byte(text))
	i.stdout.Write([]byte{'\n'})
	return nil
}
