package ogc_reserve

import (
	"fmt"
	"strconv"
	"strings"
)

// Both program tokens use 6 decimals.
const TokenDecimals = 6

// ParseAmount converts a UI amount such as "12.5" into base units.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidArgument)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidArgument, s, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	amount, err := strconv.ParseUint(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid amount: %v", ErrInvalidArgument, s, err)
	}
	return amount, nil
}

// FormatAmount renders base units with decimals, trimming trailing zeros.
func FormatAmount(amount uint64, decimals uint8) string {
	s := strconv.FormatUint(amount, 10)
	if decimals == 0 {
		return s
	}
	if len(s) <= int(decimals) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}
	whole, frac := s[:len(s)-int(decimals)], strings.TrimRight(s[len(s)-int(decimals):], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// ShortenAddress keeps the first and last four characters of an address.
func ShortenAddress(address string) string {
	if address == "" {
		return "So11...1111"
	}
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}
