// internal/catalog/coerce.go
package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// Catalogue CSV imports leave numeric columns as free text ("£28,500 per
// year", "36 points"). These helpers pull usable values out.

var (
	firstInt  = regexp.MustCompile(`-?\d+`)
	moneyRun  = regexp.MustCompile(`(\d[\d,]{3,})`)
	signalSep = regexp.MustCompile(`[;\n.]+`)
)

// CleanStr trims a possibly-missing text field.
func CleanStr(s string) string {
	return strings.TrimSpace(s)
}

// ToInt extracts the first integer in a text field, 0/false when absent.
func ToInt(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	m := firstInt.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ToMoney extracts a currency amount of at least four digits, tolerating
// thousands separators.
func ToMoney(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	m := moneyRun.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

// SplitSignals splits a delimited expected-signals field into de-duplicated
// phrases, preserving first-seen order.
func SplitSignals(text string) []string {
	t := CleanStr(text)
	if t == "" {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	for _, part := range signalSep.Split(t, -1) {
		p := strings.Trim(part, " -•\t")
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
