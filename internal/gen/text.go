package gen

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PrefixLines puts prefix in front of every line of text. A trailing
// newline does not start a new line.
func PrefixLines(text, prefix string) string {
	body, trailing := strings.CutSuffix(text, "\n")
	out := prefix + strings.ReplaceAll(body, "\n", "\n"+prefix)
	if trailing {
		out += "\n"
	}
	return out
}

var quoter = strings.NewReplacer(`\`, `\\`, "\n", "\\\n", "$", `\$`, "'", `\'`)

// Quote renders s as a single-quoted string literal.
func Quote(s string) string {
	return "'" + quoter.Replace(s) + "'"
}

// MultilineQuote renders s as one quoted literal per line joined with
// newline concatenations.
func MultilineQuote(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = Quote(l)
	}
	return strings.Join(lines, " + '\\n' + \n")
}

var (
	numberPattern = regexp.MustCompile(`^\s*-?\d+(\.\d+)?\s*$`)
	wordPattern   = regexp.MustCompile(`^\w+$`)
)

// IsNumber reports whether s is a plain decimal literal.
func IsNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// isWord reports whether s is a bare identifier or digit run, safe to
// evaluate more than once.
func isWord(s string) bool {
	return wordPattern.MatchString(s)
}

// ParseNumber converts field text the way the editor's number fields are
// read: blank is zero, Infinity is accepted, hex/octal/binary prefixes
// work, anything else that is not a decimal is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if strings.ContainsFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && !strings.ContainsRune("+-.eE", r)
	}) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// FormatNumber spells f the way the target language's number printer does:
// shortest round-trip digits, exponent form outside [1e-6, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// indentPairs rewrites each leading pair of spaces as one indent unit.
func indentPairs(code, indent string) string {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		n := len(l) - len(strings.TrimLeft(l, " "))
		if n < 2 {
			continue
		}
		lines[i] = strings.Repeat(indent, n/2) + l[n-n%2:]
	}
	return strings.Join(lines, "\n")
}
