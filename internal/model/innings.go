package model

import (
	"strconv"
	"strings"
)

// Innings counts outs recorded. Box scores write innings in thirds notation
// ("6.2" = six innings and two outs), so sums and rates go through outs.
type Innings int

// InningsFromOuts wraps a raw out count.
func InningsFromOuts(outs int) Innings {
	return Innings(outs)
}

// ParseInnings reads thirds notation. The digit after the dot is taken
// literally as extra outs, not as a decimal fraction, so it must be 0, 1 or 2
// (trailing zeros allowed: "6.20"). Anything else is zero outs.
func ParseInnings(s string) Innings {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(whole, "-")
	w := 0
	if whole != "" && whole != "-" {
		n, err := strconv.Atoi(whole)
		if err != nil {
			return 0
		}
		w = n
	}
	rem := 0
	if frac != "" {
		d := frac[0]
		if d < '0' || d > '2' || strings.Trim(frac[1:], "0") != "" {
			return 0
		}
		rem = int(d - '0')
	}
	if neg {
		return Innings(w*3 - rem)
	}
	return Innings(w*3 + rem)
}

// Outs returns the raw out count.
func (i Innings) Outs() int { return int(i) }

// Whole returns completed innings.
func (i Innings) Whole() int { return int(i) / 3 }

// Remainder returns the outs beyond Whole (0, 1 or 2).
func (i Innings) Remainder() int { return int(i) % 3 }

// Float returns true innings (outs/3) for rate arithmetic.
func (i Innings) Float() float64 { return float64(i) / 3 }

// String renders thirds notation, e.g. 10 outs -> "3.1".
func (i Innings) String() string {
	if i < 0 {
		return "-" + (-i).String()
	}
	return strconv.Itoa(i.Whole()) + "." + strconv.Itoa(i.Remainder())
}

// MarshalJSON writes thirds notation as a string, the way the backend sends it.
func (i Innings) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(i.String())), nil
}

// UnmarshalJSON accepts thirds notation as a string or a bare number.
func (i *Innings) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*i = 0
		return nil
	}
	*i = ParseInnings(s)
	return nil
}
