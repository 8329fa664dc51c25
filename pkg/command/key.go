package command

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxDescription caps span descriptions so oversized keys or values do not
// inflate trace payloads.
const maxDescription = 1024

// SafeKey derives the display-safe cache key for a command.
//
// Unknown commands, an empty name, and missing arguments all yield "".
// Multi-key commands produce their decoded keys joined with ", " in call
// order, duplicates preserved. Byte keys are decoded best-effort. Keys are
// user-controlled, so this never fails.
func SafeKey(name string, args []interface{}, kwargs map[string]interface{}) string {
	if name == "" {
		return ""
	}
	d, ok := commandTable[strings.ToUpper(name)]
	if !ok {
		return ""
	}

	n := d.keyArgs
	if n == allKeys || n > len(args) {
		n = len(args)
	}
	if n <= 0 {
		return ""
	}

	keys := make([]string, 0, n)
	for _, arg := range args[:n] {
		keys = append(keys, decodeText(arg))
	}
	return strings.Join(keys, ", ")
}

// Description renders the store-span description: the uppercased command
// name followed by the derived key in single quotes, e.g. GET 'mykey'.
// Commands outside the table fall back to quoting their raw arguments.
func (c Command) Description() string {
	upper := strings.ToUpper(c.Name)
	if key := SafeKey(c.Name, c.Args, c.Kwargs); key != "" {
		return truncate(upper + " '" + key + "'")
	}
	if len(c.Args) == 0 {
		return upper
	}

	var b strings.Builder
	b.WriteString(upper)
	for _, arg := range c.Args {
		b.WriteString(" '")
		b.WriteString(decodeText(arg))
		b.WriteString("'")
	}
	return truncate(b.String())
}

// decodeText converts a key or argument to display text. Byte slices are
// decoded permissively: invalid UTF-8 sequences are replaced, never raised.
func decodeText(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return strings.ToValidUTF8(string(s), string(utf8.RuneError))
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func truncate(s string) string {
	if len(s) <= maxDescription {
		return s
	}
	return strings.ToValidUTF8(s[:maxDescription], "") + "..."
}
