package helpers

import (
	"regexp"
	"strconv"
	"strings"

	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"
)

var (
	numberPattern  = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)
	percentPattern = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`)
)

// CleanPrice strips currency symbols and thousands separators from a price
// string and parses it as a number. "Free" and other non-numeric text fail
// with a parsing error rather than a zero price.
func CleanPrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.NewParsing("", "empty price string", nil)
	}

	match := numberPattern.FindString(raw)
	if match == "" {
		return 0, apperr.NewParsing("", "unparseable price: "+raw, nil)
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, apperr.NewParsing("", "unparseable price: "+raw, err)
	}
	return price, nil
}

// CleanRating extracts a 0-100 seller rating from strings like
// "99.4% positive feedback" or "sellername (52,786) 99.4%". The number
// attached to a percent sign wins; other numbers in the string, like a
// feedback count, are ignored.
func CleanRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.NewParsing("", "empty rating string", nil)
	}

	var match string
	if groups := percentPattern.FindStringSubmatch(raw); groups != nil {
		match = groups[1]
	} else {
		match = numberPattern.FindString(raw)
	}
	if match == "" {
		return 0, apperr.NewParsing("", "unparseable rating: "+raw, nil)
	}

	rating, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, apperr.NewParsing("", "unparseable rating: "+raw, err)
	}
	if rating < 0 || rating > 100 {
		return 0, apperr.NewParsing("", "rating out of range: "+raw, nil)
	}
	return rating, nil
}
