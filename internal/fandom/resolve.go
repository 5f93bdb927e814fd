package fandom

import (
	"strings"
	"unicode/utf8"

	"github.com/cfim/fandomap/internal/fuzzy"
)

// Stage identifies which lookup stage resolved a candidate.
type Stage int

const (
	StageNone Stage = iota
	StageExact
	StageFuzzy
	StageAbbreviation
	StageNamealike
	StageTypo
	StageRegex
)

func (s Stage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StageFuzzy:
		return "fuzzy"
	case StageAbbreviation:
		return "abbreviation"
	case StageNamealike:
		return "namealike"
	case StageTypo:
		return "typo"
	case StageRegex:
		return "regex"
	default:
		return "miss"
	}
}

func stageForGroup(g Group) Stage {
	switch g {
	case GroupAbbreviation:
		return StageAbbreviation
	case GroupNamealikes:
		return StageNamealike
	default:
		return StageTypo
	}
}

// Match is a successful resolution.
type Match struct {
	Record       *Record
	Index        int
	Stage        Stage
	TypoCaptured bool // candidate was appended to Record.CommonTypo
}

// Find resolves a lowercased candidate against the registry. Stages run in
// order and the first hit wins:
//
//  1. display name, fuzzy when enabled and the candidate is long enough,
//     exact otherwise
//  2. abbreviations, then namealikes, then common typos
//  3. recognition regexes
//
// Fuzzy and regex hits whose candidate differs from the display name record
// the candidate as a common typo of the matched record. A miss returns
// false and is not an error.
func (r *Registry) Find(candidate string, cfg Config) (Match, bool) {
	return r.find(candidate, cfg, true)
}

// Lookup resolves like Find without recording typos.
func (r *Registry) Lookup(candidate string, cfg Config) (Match, bool) {
	return r.find(candidate, cfg, false)
}

func (r *Registry) find(candidate string, cfg Config, capture bool) (Match, bool) {
	fuzzyEligible := cfg.LevenshteinSearch && utf8.RuneCountInString(candidate) >= cfg.LevenshteinMinChar

	if fuzzyEligible {
		for i, rec := range r.records {
			if fuzzy.Within(rec.LowerName(), candidate, cfg.LevenshteinMaxDiff) {
				stage := StageFuzzy
				if rec.LowerName() == candidate {
					stage = StageExact
				}
				return r.hit(i, stage, candidate, capture), true
			}
		}
	} else {
		for i, rec := range r.records {
			if rec.LowerName() == candidate {
				return Match{Record: rec, Index: i, Stage: StageExact}, true
			}
		}
	}

	groupFuzzy := fuzzyEligible && cfg.LevenshteinSearchOnFindingGroups
	for _, g := range findingGroups {
		for i, rec := range r.records {
			for _, alt := range rec.Alternates(g) {
				if matchAlternate(alt, candidate, groupFuzzy, cfg.LevenshteinMaxDiff) {
					return Match{Record: rec, Index: i, Stage: stageForGroup(g)}, true
				}
			}
		}
	}

	for i, rec := range r.records {
		if rec.regex == nil {
			continue
		}
		re := rec.regex
		if cfg.RegexMatchFull {
			re = rec.fullRegex
		}
		if ok, err := re.MatchString(candidate); err == nil && ok {
			return r.hit(i, StageRegex, candidate, capture), true
		}
	}

	return Match{Index: -1}, false
}

// hit builds a fuzzy or regex match and records the candidate as a typo.
func (r *Registry) hit(i int, stage Stage, candidate string, capture bool) Match {
	rec := r.records[i]
	m := Match{Record: rec, Index: i, Stage: stage}
	if capture {
		m.TypoCaptured = rec.addTypo(candidate)
	}
	return m
}

func matchAlternate(alt, candidate string, useFuzzy bool, maxDiff int) bool {
	alt = strings.ToLower(alt)
	if useFuzzy {
		return fuzzy.Within(alt, candidate, maxDiff)
	}
	return alt == candidate
}
