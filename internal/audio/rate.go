package audio

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minRate = 0.25
	maxRate = 4.0
)

// ParseRate converts a rate adjustment to a speaking-rate multiplier.
// Percent offsets ("-20%", "+10%") and plain multipliers ("0.8") are
// accepted; an empty string means the provider default of 1.0.
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1.0, nil
	}

	var rate float64
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimPrefix(pct, "+"), 64)
		if err != nil {
			return 0, fmt.Errorf("parse rate %q: %w", s, err)
		}
		rate = 1 + v/100
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse rate %q: %w", s, err)
		}
		rate = v
	}

	if rate < minRate || rate > maxRate {
		return 0, fmt.Errorf("rate %q out of range [%.2f, %.2f]", s, minRate, maxRate)
	}
	return rate, nil
}
