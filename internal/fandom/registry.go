package fandom

import (
	"fmt"
	"slices"
)

// Registry is the in-memory index of every known fandom record.
// Records live in a single ordered list; lookups scan it in order, so
// earlier records win ties. A Registry is not safe for concurrent use;
// wrap it in an Engine when sharing between goroutines.
type Registry struct {
	records []*Record
	index   map[string]int // record id -> position in records
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// At returns the record at position i.
func (r *Registry) At(i int) *Record {
	return r.records[i]
}

// Get returns the record with the given id.
func (r *Registry) Get(id string) (*Record, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.records[i], true
}

// IndexOf returns the position of the record with the given id, or -1.
func (r *Registry) IndexOf(id string) int {
	if i, ok := r.index[id]; ok {
		return i
	}
	return -1
}

// Records returns the records in registration order. The slice is shared;
// callers must not modify it.
func (r *Registry) Records() []*Record {
	return r.records
}

// Snapshot returns deep copies of all records in registration order.
func (r *Registry) Snapshot() []Record {
	out := make([]Record, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}

// DisplayNames returns the lowercased display names in registration order.
func (r *Registry) DisplayNames() []string {
	names := make([]string, len(r.records))
	for i, rec := range r.records {
		names[i] = rec.LowerName()
	}
	return names
}

// add appends a record. The id must not already be present.
func (r *Registry) add(rec *Record) error {
	if _, exists := r.index[rec.ID]; exists {
		return &Error{Op: "add fandom", Name: rec.ID, Err: ErrDuplicateID}
	}
	if rec.SellerIDs == nil {
		rec.SellerIDs = []string{}
	}
	r.index[rec.ID] = len(r.records)
	r.records = append(r.records, rec)
	return nil
}

// contains reports whether rec is the registry's own record for its id.
func (r *Registry) contains(rec *Record) bool {
	if rec == nil {
		return false
	}
	i, ok := r.index[rec.ID]
	return ok && r.records[i] == rec
}

// Link records parent as a superset of child, on both sides. It is a no-op
// for self-links, records outside the registry, and edges that already
// exist. Reports whether a new edge was added.
func (r *Registry) Link(parent, child *Record) bool {
	if parent == nil || child == nil || parent.ID == child.ID {
		return false
	}
	if !r.contains(parent) || !r.contains(child) {
		return false
	}

	added := false
	if !slices.Contains(child.SupersetIDs, parent.ID) {
		child.SupersetIDs = append(child.SupersetIDs, parent.ID)
		added = true
	}
	if !slices.Contains(parent.SubsetIDs, child.ID) {
		parent.SubsetIDs = append(parent.SubsetIDs, child.ID)
		added = true
	}
	return added
}

// Validate checks the registry invariants: unique ids, a consistent index,
// no self-loops, and every superset/subset edge present on both ends.
// A failure indicates a programming defect, not bad input.
func (r *Registry) Validate() error {
	if len(r.index) != len(r.records) {
		return fmt.Errorf("%w: index has %d entries for %d records", ErrInvariant, len(r.index), len(r.records))
	}

	for i, rec := range r.records {
		if rec.ID == "" {
			return fmt.Errorf("%w: record %d has no id", ErrInvariant, i)
		}
		if j, ok := r.index[rec.ID]; !ok || j != i {
			return fmt.Errorf("%w: record %s is not indexed at %d", ErrInvariant, rec.ID, i)
		}

		for _, pid := range rec.SupersetIDs {
			if pid == rec.ID {
				return fmt.Errorf("%w: %s is its own superset", ErrInvariant, rec.ID)
			}
			parent, ok := r.Get(pid)
			if !ok {
				return fmt.Errorf("%w: %s references unknown superset %s", ErrInvariant, rec.ID, pid)
			}
			if !slices.Contains(parent.SubsetIDs, rec.ID) {
				return fmt.Errorf("%w: %s lists superset %s without the inverse edge", ErrInvariant, rec.ID, pid)
			}
		}

		for _, cid := range rec.SubsetIDs {
			if cid == rec.ID {
				return fmt.Errorf("%w: %s is its own subset", ErrInvariant, rec.ID)
			}
			child, ok := r.Get(cid)
			if !ok {
				return fmt.Errorf("%w: %s references unknown subset %s", ErrInvariant, rec.ID, cid)
			}
			if !slices.Contains(child.SupersetIDs, rec.ID) {
				return fmt.Errorf("%w: %s lists subset %s without the inverse edge", ErrInvariant, rec.ID, cid)
			}
		}
	}

	return nil
}
