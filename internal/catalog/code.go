package catalog

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Attendance lists stand codes per convention day. A nil day means no
// attendance that day.
type Attendance struct {
	Day1 []string `json:"day1,omitempty"`
	Day2 []string `json:"day2,omitempty"`
}

// Days returns the attendance lists in day order.
func (a Attendance) Days() [2][]string {
	return [2][]string{a.Day1, a.Day2}
}

// add appends code to day i (0 for day one) unless already present.
func (a *Attendance) add(i int, code string) {
	list := &a.Day1
	if i == 1 {
		list = &a.Day2
	}
	if !slices.Contains(*list, code) {
		*list = append(*list, code)
	}
}

// restrictTo narrows a both-days attendance to the webcatalog day value.
func (a Attendance) restrictTo(day string) Attendance {
	switch strings.ToUpper(strings.TrimSpace(day)) {
	case DaySat:
		return Attendance{Day1: a.Day1}
	case DaySun:
		return Attendance{Day2: a.Day2}
	}
	return a
}

// StandType discriminates regular circle stands from circlepro booths.
type StandType string

const (
	StandCircle    StandType = "circle"
	StandCirclePro StandType = "circlepro"
)

// StandCode identifies one stand, e.g. B-5a or AB-12.
type StandCode struct {
	Block  string // one letter for circles, two for circlepro
	Number int
	Sub    string // "a", "b" or empty
}

// Type reports whether the stand is a circle or a circlepro stand.
func (s StandCode) Type() StandType {
	if len(s.Block) == 1 {
		return StandCircle
	}
	return StandCirclePro
}

// String returns the canonical code with an unpadded number.
func (s StandCode) String() string {
	return fmt.Sprintf("%s-%d%s", s.Block, s.Number, s.Sub)
}

// DisplayName returns the code with the number padded to two digits.
func (s StandCode) DisplayName() string {
	return fmt.Sprintf("%s-%02d%s", s.Block, s.Number, s.Sub)
}

var (
	// standPartRe matches one booking: block, number and optional sub-codes.
	standPartRe = regexp.MustCompile(`^([A-Za-z]{1,2})-(\d{1,2})([abAB]{0,2})$`)
	// daySuffixRe matches a trailing "(SAT)" or "(SUN)".
	daySuffixRe = regexp.MustCompile(`(?i)\s*\(\s*(sat|sun)\s*\)\s*$`)
)

func hasDaySuffix(code string) bool {
	return daySuffixRe.MatchString(code)
}

// ParseCircleCode splits a webcatalog circle code such as
// "B-56ab/B-57 (SAT)" into per-day stand codes. Circle stands expand their
// a/b sub-codes into separate stands; circlepro stands ignore them. Without
// a day suffix the circle attends both days.
func ParseCircleCode(code string) (Attendance, error) {
	s := strings.TrimSpace(code)
	day := ""
	if m := daySuffixRe.FindStringSubmatch(s); m != nil {
		day = strings.ToUpper(m[1])
		s = strings.TrimSpace(s[:len(s)-len(m[0])])
	}
	if s == "" {
		return Attendance{}, fmt.Errorf("%w: %q", ErrInvalidCircleCode, code)
	}

	var stands []string
	for _, part := range strings.Split(s, "/") {
		parsed, err := parseStandPart(strings.TrimSpace(part))
		if err != nil {
			return Attendance{}, fmt.Errorf("%w: %q", err, code)
		}
		for _, sc := range parsed {
			if !slices.Contains(stands, sc.String()) {
				stands = append(stands, sc.String())
			}
		}
	}

	var att Attendance
	if day != DaySun {
		att.Day1 = stands
	}
	if day != DaySat {
		att.Day2 = slices.Clone(stands)
	}
	return att, nil
}

func parseStandPart(part string) ([]StandCode, error) {
	m := standPartRe.FindStringSubmatch(part)
	if m == nil {
		return nil, ErrInvalidCircleCode
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, ErrInvalidCircleCode
	}
	block := normalizeBlock(m[1])
	base := StandCode{Block: block, Number: n}

	if base.Type() == StandCirclePro {
		return []StandCode{base}, nil
	}

	subs := strings.ToLower(m[3])
	if subs == "" {
		return []StandCode{base}, nil
	}
	var out []StandCode
	for _, sub := range []string{"a", "b"} {
		if strings.Contains(subs, sub) {
			out = append(out, StandCode{Block: block, Number: n, Sub: sub})
		}
	}
	return out, nil
}

// ParseStandCode parses a canonical code produced by ParseCircleCode.
func ParseStandCode(code string) (StandCode, error) {
	codes, err := parseStandPart(code)
	if err != nil || len(codes) != 1 {
		return StandCode{}, fmt.Errorf("%w: %q", ErrInvalidCircleCode, code)
	}
	return codes[0], nil
}

// normalizeBlock uppercases the first block letter and lowercases the second.
func normalizeBlock(b string) string {
	if len(b) == 1 {
		return strings.ToUpper(b)
	}
	return strings.ToUpper(b[:1]) + strings.ToLower(b[1:])
}
