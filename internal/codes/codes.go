// Package codes generates sequential human-readable asset codes such as
// TV001, TV002.
package codes

import (
	"fmt"
	"regexp"
	"strconv"
)

// Default scheme.
const (
	DefaultPrefix = "TV"
	DefaultWidth  = 3
)

// Scheme is a fixed prefix followed by a zero-padded sequence number.
type Scheme struct {
	Prefix string
	Width  int
}

// Default returns the TV + three digit scheme.
func Default() Scheme {
	return Scheme{Prefix: DefaultPrefix, Width: DefaultWidth}
}

// Format renders n in the scheme. Numbers wider than the padding keep all
// their digits.
func (s Scheme) Format(n int64) string {
	width := s.Width
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s%0*d", s.Prefix, width, n)
}

// Parse extracts the sequence number from a code in the scheme.
func (s Scheme) Parse(code string) (int64, bool) {
	m := s.pattern().FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Max returns the largest sequence number among existing codes that match the
// scheme, or 0 when none match.
func (s Scheme) Max(existing []string) int64 {
	re := s.pattern()
	var highest int64
	for _, code := range existing {
		m := re.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}

// Next returns the code following the highest of existing codes and floor.
// Codes that do not match the scheme are ignored; with nothing to go on the
// sequence starts at 1.
func (s Scheme) Next(existing []string, floor int64) (string, int64) {
	n := s.Max(existing)
	if floor > n {
		n = floor
	}
	n++
	return s.Format(n), n
}

func (s Scheme) pattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(s.Prefix) + `(\d+)$`)
}
