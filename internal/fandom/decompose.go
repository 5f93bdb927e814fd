package fandom

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cfim/fandomap/internal/logging"
	"github.com/cfim/fandomap/internal/metrics"
)

// Stats summarizes the work done by one or more Process calls.
type Stats struct {
	Resolved      int `json:"resolved"`
	Registered    int `json:"registered"`
	TyposCaptured int `json:"typos_captured"`
	EdgesAdded    int `json:"edges_added"`
	GroupsSkipped int `json:"groups_skipped"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Resolved += other.Resolved
	s.Registered += other.Registered
	s.TyposCaptured += other.TyposCaptured
	s.EdgesAdded += other.EdgesAdded
	s.GroupsSkipped += other.GroupsSkipped
}

// Decomposer turns raw fandom strings into resolved or newly registered
// records, linking parenthesized groups under their preceding token.
type Decomposer struct {
	reg    *Registry
	cfg    Config
	logger *slog.Logger
}

// NewDecomposer creates a decomposer over reg. A nil logger uses the
// package-wide logger.
func NewDecomposer(reg *Registry, cfg Config, logger *slog.Logger) *Decomposer {
	if logger == nil {
		logger = logging.Get()
	}
	return &Decomposer{reg: reg, cfg: cfg, logger: logger}
}

// Process decomposes a lowercased fandom string mentioned by sellerID.
// Top-level tokens are resolved or registered beneath parent (which may be
// nil); each parenthesized group is then processed recursively beneath its
// preceding token. Nesting deeper than Config.MaxDepth fails with
// ErrMaxDepth; records touched before the failure keep their changes.
func (d *Decomposer) Process(s, sellerID string, parent *Record) (Stats, error) {
	var stats Stats
	err := d.process(s, sellerID, parent, 0, &stats)
	return stats, err
}

func (d *Decomposer) process(s, sellerID string, parent *Record, depth int, stats *Stats) error {
	if depth > d.cfg.maxDepth() {
		return &Error{Op: "decompose", Name: s, Err: fmt.Errorf("%w: limit %d", ErrMaxDepth, d.cfg.maxDepth())}
	}

	// Phase A: tokens outside any group.
	for _, tok := range SplitTopLevel(StripParentheticals(s)) {
		d.handleToken(tok, sellerID, parent, stats)
	}

	// Phase B: each group, beneath its preceding token.
	for _, g := range ExtractGroups(s) {
		if g.Parent == "" {
			stats.GroupsSkipped++
			metrics.GroupsSkipped.Inc()
			d.logger.Warn("skipping group without parent token", "content", g.Content, "seller", sellerID)
			continue
		}

		groupParent := d.handleToken(g.Parent, sellerID, parent, stats)
		if groupParent == nil {
			continue
		}
		if err := d.process(CollapseOrphanCommas(g.Content), sellerID, groupParent, depth+1, stats); err != nil {
			return err
		}
	}

	return nil
}

// handleToken resolves tok, registering it when resolution fails, and
// links the result beneath parent.
func (d *Decomposer) handleToken(tok, sellerID string, parent *Record, stats *Stats) *Record {
	candidate := strings.ToLower(trimToken(tok))
	if candidate == "" {
		return nil
	}

	if m, ok := d.reg.Find(candidate, d.cfg); ok {
		metrics.Resolutions.WithLabelValues(m.Stage.String()).Inc()
		stats.Resolved++
		if m.TypoCaptured {
			stats.TyposCaptured++
			metrics.TyposCaptured.Inc()
			d.logger.Debug("captured typo", "typo", candidate, "fandom", m.Record.DisplayName, "stage", m.Stage.String())
		}

		m.Record.addSeller(sellerID)
		if d.reg.Link(parent, m.Record) {
			stats.EdgesAdded++
		}

		return m.Record
	}

	metrics.Resolutions.WithLabelValues(StageNone.String()).Inc()
	rec := d.reg.Register(candidate, parent, sellerID)
	if rec == nil {
		return nil
	}
	stats.Registered++
	metrics.Registrations.WithLabelValues(metrics.OriginDiscovered).Inc()
	if len(rec.SupersetIDs) > 0 {
		stats.EdgesAdded++
	}
	d.logger.Debug("registered fandom", "fandom", rec.DisplayName, "id", rec.ID, "seller", sellerID)

	return rec
}
