package exporter

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCount groups thousands with a space, e.g. 12 345
func FormatCount(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}

// FormatPercent formats a percentage with one decimal
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatGrade formats a grade average with two decimals
func FormatGrade(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatCell renders an optional matrix cell; empty cells stay blank
func FormatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
