package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature identifies who made a commit or tag and when, in the
// "Name <email> unix ±hhmm" form used by author, committer and tagger.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// String formats the signature as a header value.
func (s Signature) String() string {
	when := s.When
	if when.IsZero() {
		when = time.Unix(0, 0).UTC()
	}
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, when.Unix(), FormatTimezoneOffset(when))
}

// ParseSignature parses a header value produced by Signature.String.
func ParseSignature(v string) (Signature, error) {
	lt := strings.LastIndexByte(v, '<')
	gt := strings.LastIndexByte(v, '>')
	if lt < 0 || gt < lt {
		return Signature{}, fmt.Errorf("%w: signature %q", ErrMalformedHeader, v)
	}
	sig := Signature{
		Name:  strings.TrimSpace(v[:lt]),
		Email: v[lt+1 : gt],
	}

	fields := strings.Fields(v[gt+1:])
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("%w: signature %q: missing timestamp", ErrMalformedHeader, v)
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: signature %q: bad timestamp: %v", ErrMalformedHeader, v, err)
	}
	loc, err := parseTimezoneOffset(fields[1])
	if err != nil {
		return Signature{}, fmt.Errorf("%w: signature %q: %v", ErrMalformedHeader, v, err)
	}
	sig.When = time.Unix(secs, 0).In(loc)
	return sig, nil
}

// FormatTimezoneOffset renders t's zone as ±hhmm.
func FormatTimezoneOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	return fmt.Sprintf("%s%02d%02d", sign, hours, minutes)
}

func parseTimezoneOffset(s string) (*time.Location, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return nil, fmt.Errorf("bad timezone %q", s)
	}
	hh, err1 := strconv.Atoi(s[1:3])
	mm, err2 := strconv.Atoi(s[3:5])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("bad timezone %q", s)
	}
	offset := hh*3600 + mm*60
	if s[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(s, offset), nil
}
