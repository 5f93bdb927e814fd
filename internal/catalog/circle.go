// Package catalog turns a convention webcatalog export into the circle,
// fandom and stand state consumed by the interactive map.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrInvalidCircle     = errors.New("invalid circle")
	ErrInvalidCircleCode = errors.New("invalid circle code")
)

// Webcatalog day values.
const (
	DayBoth = "Both Days"
	DaySat  = "SAT"
	DaySun  = "SUN"
)

// noneMarker is what the webcatalog stores in empty fandom fields.
const noneMarker = "-"

// Circle is one vendor entry as exported by the webcatalog.
type Circle struct {
	ID                    string   `json:"id"`
	UserID                string   `json:"user_id"`
	CircleCode            string   `json:"circle_code"`
	Name                  string   `json:"name"`
	CircleCut             *string  `json:"circle_cut"`
	SellsCommision        bool     `json:"SellsCommision"`
	SellsComic            bool     `json:"SellsComic"`
	SellsArtbook          bool     `json:"SellsArtbook"`
	SellsPhotobookGeneral bool     `json:"SellsPhotobookGeneral"`
	SellsNovel            bool     `json:"SellsNovel"`
	SellsGame             bool     `json:"SellsGame"`
	SellsMusic            bool     `json:"SellsMusic"`
	SellsGoods            bool     `json:"SellsGoods"`
	Facebook              *string  `json:"circle_facebook"`
	Instagram             *string  `json:"circle_instagram"`
	Twitter               *string  `json:"circle_twitter"`
	OtherSocials          *string  `json:"circle_other_socials"`
	MarketplaceLink       *string  `json:"marketplace_link"`
	Fandom                string   `json:"fandom"`
	OtherFandom           string   `json:"other_fandom"`
	Rating                string   `json:"rating"` // PG, GA or M
	SampleworksImages     []string `json:"sampleworks_images"`
	Day                   string   `json:"day"`
	SellsHandmadeCrafts   bool     `json:"SellsHandmadeCrafts"`
	SellsMagazine         bool     `json:"SellsMagazine"`
	SellsPhotobookCosplay bool     `json:"SellsPhotobookCosplay"`
}

// FandomFields returns the circle's fandom and other_fandom values with
// "-" placeholders blanked.
func (c Circle) FandomFields() [2]string {
	return [2]string{fandomField(c.Fandom), fandomField(c.OtherFandom)}
}

func fandomField(s string) string {
	if strings.TrimSpace(s) == noneMarker {
		return ""
	}
	return s
}

// CircleState is the map's view of one circle.
type CircleState struct {
	ID                   int        `json:"id"`
	UUID                 string     `json:"uuid"`
	DisplayName          string     `json:"displayName"`
	StandAttendanceCodes Attendance `json:"standAttendanceCodes"`
	Fandoms              [2]string  `json:"fandoms"`
	FandomUUIDs          []string   `json:"fandomUUIDs"`
}

// NewCircleState converts a webcatalog entry. The circle code decides
// attendance; when it names no day, the entry's day field may narrow it.
func NewCircleState(c Circle) (CircleState, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return CircleState{}, fmt.Errorf("%w: circle %q has no user_id", ErrInvalidCircle, c.Name)
	}

	id, err := strconv.Atoi(strings.TrimSpace(c.ID))
	if err != nil {
		return CircleState{}, fmt.Errorf("%w: circle %q has id %q", ErrInvalidCircle, c.Name, c.ID)
	}

	att, err := ParseCircleCode(c.CircleCode)
	if err != nil {
		return CircleState{}, fmt.Errorf("circle %q: %w", c.Name, err)
	}
	if !hasDaySuffix(c.CircleCode) {
		att = att.restrictTo(c.Day)
	}

	return CircleState{
		ID:                   id,
		UUID:                 c.UserID,
		DisplayName:          c.Name,
		StandAttendanceCodes: att,
		Fandoms:              [2]string{c.Fandom, c.OtherFandom},
		FandomUUIDs:          []string{},
	}, nil
}

// LoadFile reads a webcatalog JSON export.
func LoadFile(path string) ([]Circle, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load decodes a JSON array of webcatalog circles.
func Load(r io.Reader) ([]Circle, error) {
	var circles []Circle
	if err := json.NewDecoder(r).Decode(&circles); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return circles, nil
}
