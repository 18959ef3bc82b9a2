package keyspace

import (
	"math/big"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCount renders n with English thousands separators.
func FormatCount(n *big.Int) string {
	if n == nil {
		return "0"
	}
	if n.IsInt64() {
		return message.NewPrinter(language.English).Sprintf("%d", n.Int64())
	}
	return groupDigits(n.String())
}

func groupDigits(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
