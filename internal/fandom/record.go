// Package fandom resolves free-text fandom mentions into a deduplicated,
// hierarchically linked set of fandom records.
package fandom

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Record is the canonical representation of one fandom.
// JSON field names follow the seed and output files.
type Record struct {
	ID           string   `json:"uuid"`
	Code         string   `json:"code"`
	DisplayName  string   `json:"displayName"`
	Abbreviation []string `json:"abbreviation,omitempty"`
	Namealikes   []string `json:"namealikes,omitempty"`
	CommonTypo   []string `json:"commonTypo,omitempty"`
	RegexStr     string   `json:"regexStr,omitempty"` // matches lowercase input
	SellerIDs    []string `json:"circleSellerUUIDs"`
	SubsetIDs    []string `json:"subsetUUIDs,omitempty"`
	SupersetIDs  []string `json:"supersetUUIDs,omitempty"`
	Curated      bool     `json:"curated,omitempty"`

	lowerName string
	regex     *regexp2.Regexp
	fullRegex *regexp2.Regexp
}

// Group identifies one of the alternate-name lists searched after
// display-name matching fails.
type Group int

const (
	GroupAbbreviation Group = iota
	GroupNamealikes
	GroupCommonTypo
)

// findingGroups is the order in which alternate names are searched.
var findingGroups = []Group{GroupAbbreviation, GroupNamealikes, GroupCommonTypo}

func (g Group) String() string {
	switch g {
	case GroupAbbreviation:
		return "abbreviation"
	case GroupNamealikes:
		return "namealike"
	case GroupCommonTypo:
		return "typo"
	default:
		return "unknown"
	}
}

// Alternates returns the record's alternate names for the given group.
func (r *Record) Alternates(g Group) []string {
	switch g {
	case GroupAbbreviation:
		return r.Abbreviation
	case GroupNamealikes:
		return r.Namealikes
	case GroupCommonTypo:
		return r.CommonTypo
	}
	return nil
}

// LowerName returns the lowercased display name used for matching.
func (r *Record) LowerName() string {
	if r.lowerName == "" {
		r.lowerName = strings.ToLower(r.DisplayName)
	}
	return r.lowerName
}

// HasRegex reports whether the record carries a compiled recognition regex.
func (r *Record) HasRegex() bool {
	return r.regex != nil
}

// HasSeller reports whether sellerID already mentioned this fandom.
func (r *Record) HasSeller(sellerID string) bool {
	return slices.Contains(r.SellerIDs, sellerID)
}

// addSeller appends sellerID unless it is empty or already present.
func (r *Record) addSeller(sellerID string) bool {
	if sellerID == "" || r.HasSeller(sellerID) {
		return false
	}
	r.SellerIDs = append(r.SellerIDs, sellerID)
	return true
}

// addTypo appends a typo variant unless it is the display name or already
// known. Reports whether the list grew.
func (r *Record) addTypo(s string) bool {
	if s == r.LowerName() || slices.Contains(r.CommonTypo, s) {
		return false
	}
	r.CommonTypo = append(r.CommonTypo, s)
	return true
}

// Clone returns a deep copy of the record's exported fields.
func (r *Record) Clone() Record {
	c := *r
	c.Abbreviation = slices.Clone(r.Abbreviation)
	c.Namealikes = slices.Clone(r.Namealikes)
	c.CommonTypo = slices.Clone(r.CommonTypo)
	c.SellerIDs = slices.Clone(r.SellerIDs)
	if c.SellerIDs == nil {
		c.SellerIDs = []string{}
	}
	c.SubsetIDs = slices.Clone(r.SubsetIDs)
	c.SupersetIDs = slices.Clone(r.SupersetIDs)
	return c
}

// conformCodeRe matches anything that may not appear in a code.
var conformCodeRe = regexp.MustCompile(`[^A-Za-z0-9_+-]`)

// CodeFromName derives a record code: lowercased, with every character
// outside [A-Za-z0-9_+-] replaced by an underscore.
func CodeFromName(name string) string {
	return conformCodeRe.ReplaceAllString(strings.ToLower(name), "_")
}

// DisplayNameFromName capitalizes the first letter of every space-separated
// word and leaves the rest of each word untouched.
func DisplayNameFromName(name string) string {
	words := strings.Split(name, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
