package fandom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFixture(t *testing.T) *Registry {
	t.Helper()
	return newTestRegistry(t,
		Record{ID: "hsr", DisplayName: "Honkai Star Rail", Abbreviation: []string{"HSR"}},
		Record{ID: "gi", DisplayName: "Genshin Impact", Abbreviation: []string{"gi"}, Namealikes: []string{"genshin"}},
		Record{ID: "ba", DisplayName: "Blue Archive", RegexStr: `blue\s*arch`, CommonTypo: []string{"blue achive"}},
		Record{ID: "ayako", DisplayName: "Ayako"},
		Record{ID: "touhou", DisplayName: "Touhou Project", Namealikes: []string{"toho project series"}},
		Record{ID: "ds", DisplayName: "Dark Souls", RegexStr: `dark\s*souls(?!\s*like)`},
	)
}

func TestRegistry_Find(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantID    string
		wantStage Stage
	}{
		{"exact display name", "honkai star rail", "hsr", StageExact},
		{"short exact display name", "ayako", "ayako", StageExact},
		{"fuzzy display name", "honkai star rale", "hsr", StageFuzzy},
		{"abbreviation compared case-insensitively", "hsr", "hsr", StageAbbreviation},
		{"namealike", "genshin", "gi", StageNamealike},
		{"common typo", "blue achive", "ba", StageTypo},
		{"fuzzy namealike", "toho project serie", "touhou", StageNamealike},
		{"regex substring", "bluearchive lover", "ba", StageRegex},
		{"regex with lookahead", "darksouls 3", "ds", StageRegex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := resolverFixture(t)

			m, ok := reg.Find(tt.candidate, DefaultConfig())
			require.True(t, ok)
			assert.Equal(t, tt.wantID, m.Record.ID)
			assert.Equal(t, tt.wantStage, m.Stage)
			assert.Equal(t, reg.IndexOf(tt.wantID), m.Index)
		})
	}
}

func TestRegistry_FindMiss(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		mutate    func(*Config)
	}{
		{"unknown", "something else entirely", nil},
		{"short candidate one edit away", "ayaka", nil},
		{"negative lookahead", "darksouls like", nil},
		{"fuzzy disabled", "honkai star rale", func(c *Config) { c.LevenshteinSearch = false }},
		{"group fuzzy disabled", "toho project serie", func(c *Config) { c.LevenshteinSearchOnFindingGroups = false }},
		{"regex anchored", "bluearchive lover", func(c *Config) { c.RegexMatchFull = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := resolverFixture(t)
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			m, ok := reg.Find(tt.candidate, cfg)
			assert.False(t, ok)
			assert.Nil(t, m.Record)
			assert.Equal(t, -1, m.Index)
		})
	}
}

func TestRegistry_FindRegexFullMatch(t *testing.T) {
	reg := resolverFixture(t)
	cfg := DefaultConfig()
	cfg.RegexMatchFull = true

	m, ok := reg.Find("bluearch", cfg)
	require.True(t, ok)
	assert.Equal(t, "ba", m.Record.ID)
	assert.Equal(t, StageRegex, m.Stage)
}

func TestRegistry_FindIdempotent(t *testing.T) {
	reg := resolverFixture(t)
	before := reg.Len()

	first, ok := reg.Find("honkai star rail", DefaultConfig())
	require.True(t, ok)
	second, ok := reg.Find("honkai star rail", DefaultConfig())
	require.True(t, ok)

	assert.Same(t, first.Record, second.Record)
	assert.Equal(t, before, reg.Len())
	assert.Empty(t, first.Record.CommonTypo)
}

func TestRegistry_FindCapturesTypoOnce(t *testing.T) {
	reg := newTestRegistry(t, Record{ID: "hsr", DisplayName: "Honkai Star Rail"})
	cfg := DefaultConfig()
	cfg.LevenshteinMaxDiff = 2

	first, ok := reg.Find("honkai star rale", cfg)
	require.True(t, ok)
	assert.True(t, first.TypoCaptured)

	second, ok := reg.Find("honkai star rale", cfg)
	require.True(t, ok)
	assert.False(t, second.TypoCaptured)

	rec := mustGet(t, reg, "hsr")
	assert.Equal(t, []string{"honkai star rale"}, rec.CommonTypo)
	assert.Equal(t, "Honkai Star Rail", rec.DisplayName)
	assert.Equal(t, "honkai_star_rail", rec.Code)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_FindCapturesRegexTypo(t *testing.T) {
	reg := resolverFixture(t)

	m, ok := reg.Find("bluearchive lover", DefaultConfig())
	require.True(t, ok)
	assert.True(t, m.TypoCaptured)
	assert.Contains(t, m.Record.CommonTypo, "bluearchive lover")
}

func TestRegistry_GroupHitsDoNotCaptureTypos(t *testing.T) {
	reg := resolverFixture(t)

	m, ok := reg.Find("toho project serie", DefaultConfig())
	require.True(t, ok)
	assert.False(t, m.TypoCaptured)
	assert.Empty(t, m.Record.CommonTypo)
}

func TestRegistry_LookupHasNoSideEffects(t *testing.T) {
	reg := resolverFixture(t)

	m, ok := reg.Lookup("honkai star rale", DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, StageFuzzy, m.Stage)
	assert.False(t, m.TypoCaptured)
	assert.Empty(t, mustGet(t, reg, "hsr").CommonTypo)
}

func TestRegistry_FindFirstRecordWins(t *testing.T) {
	reg := newTestRegistry(t,
		Record{ID: "first", DisplayName: "Project Sekai Colorful"},
		Record{ID: "second", DisplayName: "Project Sekai Colorfull"},
	)

	m, ok := reg.Find("project sekai colorfull", DefaultConfig())
	require.True(t, ok)
	assert.Equal(t, "first", m.Record.ID)
	assert.Equal(t, StageFuzzy, m.Stage)
}
