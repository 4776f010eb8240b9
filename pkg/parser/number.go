package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// parseNumberLiteral converts the raw lexeme text produced by pkg/lexer into
// a float64, honouring the base prefixes and fractional/exponent rules of
// §4.B. Non-decimal bases parse as unsigned 64-bit integers and are then
// converted to float64 (exact for any integer representable in 53 bits;
// larger values lose precision the same way any binary64 would).
func parseNumberLiteral(lit string) (float64, error) {
	lower := strings.ToLower(lit)
	switch {
	case strings.HasPrefix(lower, "0b"):
		n, err := strconv.ParseUint(lit[2:], 2, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	case strings.HasPrefix(lower, "0o"):
		n, err := strconv.ParseUint(lit[2:], 8, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	case strings.HasPrefix(lower, "0x"):
		n, err := strconv.ParseUint(lit[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	default:
		n, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return 0, fmt.Errorf("%w", err)
		}
		return n, nil
	}
}
