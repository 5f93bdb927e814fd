package fandom

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"

	"github.com/cfim/fandomap/internal/metrics"
)

// regexTimeout bounds a single recognition regex evaluation.
const regexTimeout = time.Second

// LoadSeedFile loads curated seed records from a JSON file.
func LoadSeedFile(path string) (*Registry, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, &Error{Op: "load seed", Name: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	return LoadSeed(f)
}

// LoadSeed reads a JSON array of records and builds a registry from them.
// Every seed record is marked curated. Invalid JSON, an invalid regexStr,
// duplicate ids or edges to unknown records fail the whole load.
func LoadSeed(r io.Reader) (*Registry, error) {
	recs, err := decodeRecords(r)
	if err != nil {
		return nil, &Error{Op: "load seed", Err: err}
	}
	reg, err := NewRegistryFromRecords(recs, true)
	if err != nil {
		return nil, err
	}
	metrics.Registrations.WithLabelValues(metrics.OriginSeed).Add(float64(reg.Len()))
	return reg, nil
}

// LoadRecords reads a previously written fandoms.json, keeping each
// record's curated flag as stored.
func LoadRecords(r io.Reader) (*Registry, error) {
	recs, err := decodeRecords(r)
	if err != nil {
		return nil, &Error{Op: "load records", Err: err}
	}
	return NewRegistryFromRecords(recs, false)
}

// LoadRecordsFile reads a fandoms.json from path.
func LoadRecordsFile(path string) (*Registry, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, &Error{Op: "load records", Name: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	return LoadRecords(f)
}

func decodeRecords(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return recs, nil
}

// NewRegistryFromRecords builds a registry from records. Missing ids are
// generated and missing codes derived from the display name. Regexes are
// compiled once here. Superset and subset lists are deduplicated and their
// inverse edges filled in. When markCurated is set every record is flagged
// curated.
func NewRegistryFromRecords(recs []Record, markCurated bool) (*Registry, error) {
	reg := NewRegistry()

	for i := range recs {
		rec := recs[i]
		if strings.TrimSpace(rec.DisplayName) == "" {
			return nil, &Error{Op: "load seed", Name: fmt.Sprintf("#%d", i), Err: fmt.Errorf("%w: missing displayName", ErrInvalidSeed)}
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.Code == "" {
			rec.Code = CodeFromName(rec.DisplayName)
		}
		if markCurated {
			rec.Curated = true
		}
		rec.lowerName = ""
		rec.SellerIDs = compact(rec.SellerIDs)
		rec.SupersetIDs = compact(rec.SupersetIDs)
		rec.SubsetIDs = compact(rec.SubsetIDs)

		if rec.RegexStr != "" {
			if err := rec.compileRegex(); err != nil {
				return nil, &Error{Op: "load seed", Name: rec.DisplayName, Err: err}
			}
		}

		if err := reg.add(&rec); err != nil {
			return nil, err
		}
	}

	// Resolve edges once every id is known.
	for _, rec := range reg.records {
		supersets, subsets := rec.SupersetIDs, rec.SubsetIDs
		rec.SupersetIDs, rec.SubsetIDs = nil, nil

		for _, id := range supersets {
			parent, err := reg.edgeTarget(rec, id)
			if err != nil {
				return nil, err
			}
			reg.Link(parent, rec)
		}
		for _, id := range subsets {
			child, err := reg.edgeTarget(rec, id)
			if err != nil {
				return nil, err
			}
			reg.Link(rec, child)
		}
	}

	return reg, nil
}

func (r *Registry) edgeTarget(from *Record, id string) (*Record, error) {
	if id == from.ID {
		return nil, &Error{Op: "load seed", Name: from.DisplayName, Err: fmt.Errorf("%w: self reference", ErrInvalidSeed)}
	}
	target, ok := r.Get(id)
	if !ok {
		return nil, &Error{Op: "load seed", Name: from.DisplayName, Err: fmt.Errorf("%w: %s", ErrUnknownReference, id)}
	}
	return target, nil
}

// compileRegex compiles RegexStr with JavaScript semantics, both as given
// and anchored to the full input.
func (r *Record) compileRegex() error {
	re, err := regexp2.Compile(r.RegexStr, regexp2.ECMAScript)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRegex, err)
	}
	full, err := regexp2.Compile("^(?:"+r.RegexStr+")$", regexp2.ECMAScript)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRegex, err)
	}
	re.MatchTimeout = regexTimeout
	full.MatchTimeout = regexTimeout
	r.regex, r.fullRegex = re, full
	return nil
}

// compact removes empty strings and duplicates, keeping first occurrences.
func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
