package fandom

import (
	"github.com/google/uuid"
)

// Register creates a record for name, which is trimmed of whitespace and
// commas first. The code and display name derive from the trimmed name.
// When sellerID is non-empty it seeds the seller list. When parent is a
// record of this registry the new record is linked beneath it.
//
// A name made only of commas and whitespace registers nothing and returns
// nil.
func (r *Registry) Register(name string, parent *Record, sellerID string) *Record {
	if onlyCommas(name) {
		return nil
	}
	name = trimToken(name)

	rec := &Record{
		ID:          uuid.NewString(),
		Code:        CodeFromName(name),
		DisplayName: DisplayNameFromName(name),
		SellerIDs:   []string{},
	}
	rec.addSeller(sellerID)

	for r.add(rec) != nil {
		rec.ID = uuid.NewString()
	}
	r.Link(parent, rec)

	return rec
}
