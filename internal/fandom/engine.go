package fandom

import (
	"log/slog"
	"sync"
)

// Engine serializes access to a Registry so that resolution, registration
// and edge wiring may be driven from several goroutines. Resolve-then-
// register is a read-modify-write sequence, so every operation holds the
// lock for its full duration.
type Engine struct {
	mu  sync.Mutex
	reg *Registry
	cfg Config
	dec *Decomposer
}

// NewEngine creates an engine over reg.
func NewEngine(reg *Registry, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		reg: reg,
		cfg: cfg,
		dec: NewDecomposer(reg, cfg, logger),
	}
}

// Config returns the resolver configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Process decomposes one top-level fandom string for sellerID.
func (e *Engine) Process(s, sellerID string) (Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dec.Process(s, sellerID, nil)
}

// Find resolves candidate, recording typos on fuzzy and regex hits.
// The returned record is a copy.
func (e *Engine) Find(candidate string) (Record, Stage, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.reg.Find(candidate, e.cfg)
	if !ok {
		return Record{}, StageNone, false
	}
	return m.Record.Clone(), m.Stage, true
}

// Lookup resolves candidate without side effects. The returned record is a
// copy.
func (e *Engine) Lookup(candidate string) (Record, Stage, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.reg.Lookup(candidate, e.cfg)
	if !ok {
		return Record{}, StageNone, false
	}
	return m.Record.Clone(), m.Stage, true
}

// Register creates a record for name beneath the record with parentID, or
// at top level when parentID is empty. It returns a copy of the new record.
func (e *Engine) Register(name, parentID, sellerID string) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var parent *Record
	if parentID != "" {
		p, ok := e.reg.Get(parentID)
		if !ok {
			return Record{}, &Error{Op: "register fandom", Name: parentID, Err: ErrNotFound}
		}
		parent = p
	}

	rec := e.reg.Register(name, parent, sellerID)
	if rec == nil {
		return Record{}, &Error{Op: "register fandom", Name: name, Err: ErrEmptyName}
	}
	return rec.Clone(), nil
}

// Get returns a copy of the record with the given id.
func (e *Engine) Get(id string) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.reg.Get(id)
	if !ok {
		return Record{}, &Error{Op: "get fandom", Name: id, Err: ErrNotFound}
	}
	return rec.Clone(), nil
}

// Records returns copies of all records in registration order.
func (e *Engine) Records() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Snapshot()
}

// DisplayNames returns the lowercased display names in registration order.
func (e *Engine) DisplayNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.DisplayNames()
}

// Len returns the number of records.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Len()
}

// Validate checks the registry invariants.
func (e *Engine) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reg.Validate()
}
