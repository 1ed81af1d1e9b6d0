// Package validation holds input format rules shared by the service layer.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Ticker symbols are exchange-style: uppercase letters and digits, with a
// single dot or hyphen separating share-class suffixes (BRK.B, RDS-A).
var tickerRegex = regexp.MustCompile(`^[A-Z0-9]{1,10}([.-][A-Z0-9]{1,4})?$`)

// ValidateTicker validates a normalized (uppercased, trimmed) ticker symbol.
func ValidateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if strings.ContainsAny(ticker, " \t") {
		return fmt.Errorf("ticker cannot contain whitespace")
	}
	if !tickerRegex.MatchString(ticker) {
		return fmt.Errorf("ticker must be 1-10 uppercase letters or digits, optionally with a .X or -X class suffix")
	}
	return nil
}
