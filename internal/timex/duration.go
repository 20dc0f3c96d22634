// Package timex contains time helpers used by configuration loading.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

var errEmptyDuration = errors.New("empty duration")

// ParseDuration extends time.ParseDuration with the "d" (day) and "w" (week)
// units, so values such as "7d", "1d12h" and "2w" are accepted next to the
// usual "15m" or "1h30m".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyDuration
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	orig := s
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	var total time.Duration
	for s != "" {
		i := 0
		for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("timex: invalid duration %q", orig)
		}
		num := s[:i]
		s = s[i:]

		j := 0
		for j < len(s) && (s[j] == '.' || s[j] < '0' || s[j] > '9') {
			j++
		}
		unit := s[:j]
		s = s[j:]

		var part time.Duration
		switch unit {
		case "d", "w":
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, fmt.Errorf("timex: invalid duration %q", orig)
			}
			scale := Day
			if unit == "w" {
				scale = Week
			}
			part = time.Duration(f * float64(scale))
		default:
			d, err := time.ParseDuration(num + unit)
			if err != nil {
				return 0, fmt.Errorf("timex: invalid duration %q", orig)
			}
			part = d
		}
		total += part
	}

	if neg {
		total = -total
	}
	return total, nil
}

// Duration wraps time.Duration for configuration files and flags. It decodes
// from a JSON string ("15m", "7d") or a JSON number of nanoseconds, and
// implements flag.Value.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("timex: invalid duration value %s", string(b))
	}
}

// Set implements flag.Value.
func (d *Duration) Set(s string) error {
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
