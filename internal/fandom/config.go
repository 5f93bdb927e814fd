package fandom

// Config controls how candidates are resolved against the registry.
type Config struct {
	// LevenshteinSearch enables fuzzy display-name matching.
	LevenshteinSearch bool
	// LevenshteinMinChar is the minimum candidate length (in characters)
	// for fuzzy matching. Shorter candidates only match exactly.
	LevenshteinMinChar int
	// LevenshteinMaxDiff is the maximum accepted edit distance.
	LevenshteinMaxDiff int
	// LevenshteinSearchOnFindingGroups applies fuzzy matching to
	// abbreviations, namealikes and typos as well.
	LevenshteinSearchOnFindingGroups bool
	// RegexMatchFull anchors recognition regexes to the whole candidate.
	RegexMatchFull bool
	// MaxDepth bounds parenthesis nesting during decomposition.
	MaxDepth int
}

// DefaultMaxDepth is used when Config.MaxDepth is not positive.
const DefaultMaxDepth = 16

// DefaultConfig returns the settings tuned for the webcatalog data.
func DefaultConfig() Config {
	return Config{
		LevenshteinSearch:                true,
		LevenshteinMinChar:               12,
		LevenshteinMaxDiff:               2,
		LevenshteinSearchOnFindingGroups: true,
		RegexMatchFull:                   false,
		MaxDepth:                         DefaultMaxDepth,
	}
}

func (c Config) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}
