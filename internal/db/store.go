package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cfim/fandomap/internal/catalog"
	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/tracing"
)

// Alias kinds stored in fandom_aliases.
const (
	aliasAbbreviation = "abbreviation"
	aliasNamealike    = "namealike"
	aliasTypo         = "typo"
)

// Counts summarizes the stored snapshot.
type Counts struct {
	Fandoms int `json:"fandoms"`
	Circles int `json:"circles"`
	Stands  int `json:"stands"`
}

// Save replaces the stored snapshot with res in a single transaction.
func (db *DB) Save(ctx context.Context, res *catalog.Result) (err error) {
	ctx, span := tracing.StartSpan(ctx, "db.Save",
		tracing.WithAttributes(
			attribute.Int("fandoms", len(res.Fandoms)),
			attribute.Int("circles", len(res.Circles)),
			attribute.Int("stands", len(res.Stands)),
		),
	)
	defer span.End()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			tracing.RecordError(span, err)
		}
	}()

	for _, table := range []string{
		"stand_attendance", "stands", "circle_fandoms", "circles",
		"fandom_sellers", "fandom_edges", "fandom_aliases", "fandoms",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { // #nosec G202
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := saveFandoms(ctx, tx, res.Fandoms); err != nil {
		return err
	}
	if err := saveCircles(ctx, tx, res.Circles); err != nil {
		return err
	}
	if err := saveStands(ctx, tx, res.Stands); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	tracing.SetSpanOK(span)
	return nil
}

func saveFandoms(ctx context.Context, tx *sql.Tx, recs []fandom.Record) error {
	insFandom, err := tx.PrepareContext(ctx, `
		INSERT INTO fandoms (id, position, code, display_name, regex, curated)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insFandom.Close() }()

	for i, rec := range recs {
		var regex any
		if rec.RegexStr != "" {
			regex = rec.RegexStr
		}
		if _, err := insFandom.ExecContext(ctx, rec.ID, i, rec.Code, rec.DisplayName, regex, rec.Curated); err != nil {
			return fmt.Errorf("failed to insert fandom %s: %w", rec.DisplayName, err)
		}
	}

	insAlias, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO fandom_aliases (fandom_id, kind, alias, position) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insAlias.Close() }()

	insEdge, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO fandom_edges (parent_id, child_id, position) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insEdge.Close() }()

	insSeller, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO fandom_sellers (fandom_id, seller_id, position) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insSeller.Close() }()

	for _, rec := range recs {
		aliases := []struct {
			kind   string
			values []string
		}{
			{aliasAbbreviation, rec.Abbreviation},
			{aliasNamealike, rec.Namealikes},
			{aliasTypo, rec.CommonTypo},
		}
		for _, a := range aliases {
			for pos, v := range a.values {
				if _, err := insAlias.ExecContext(ctx, rec.ID, a.kind, v, pos); err != nil {
					return fmt.Errorf("failed to insert alias %q: %w", v, err)
				}
			}
		}

		for pos, child := range rec.SubsetIDs {
			if _, err := insEdge.ExecContext(ctx, rec.ID, child, pos); err != nil {
				return fmt.Errorf("failed to insert edge %s -> %s: %w", rec.ID, child, err)
			}
		}

		for pos, seller := range rec.SellerIDs {
			if _, err := insSeller.ExecContext(ctx, rec.ID, seller, pos); err != nil {
				return fmt.Errorf("failed to insert seller %s: %w", seller, err)
			}
		}
	}

	return nil
}

func saveCircles(ctx context.Context, tx *sql.Tx, circles []catalog.CircleState) error {
	insCircle, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO circles (uuid, id, position, display_name, fandom, other_fandom)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insCircle.Close() }()

	insLink, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO circle_fandoms (circle_uuid, fandom_id, position) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insLink.Close() }()

	for i, c := range circles {
		if _, err := insCircle.ExecContext(ctx, c.UUID, c.ID, i, c.DisplayName, c.Fandoms[0], c.Fandoms[1]); err != nil {
			return fmt.Errorf("failed to insert circle %s: %w", c.DisplayName, err)
		}
		for pos, fid := range c.FandomUUIDs {
			if _, err := insLink.ExecContext(ctx, c.UUID, fid, pos); err != nil {
				return fmt.Errorf("failed to link circle %s: %w", c.DisplayName, err)
			}
		}
	}

	return nil
}

func saveStands(ctx context.Context, tx *sql.Tx, stands []catalog.StandState) error {
	insStand, err := tx.PrepareContext(ctx, `
		INSERT INTO stands (code, position, display_name, stand_type) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insStand.Close() }()

	insAttendance, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO stand_attendance (stand_code, day, circle_uuid, position) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = insAttendance.Close() }()

	for i, s := range stands {
		if _, err := insStand.ExecContext(ctx, s.Code, i, s.DisplayName, string(s.StandType)); err != nil {
			return fmt.Errorf("failed to insert stand %s: %w", s.Code, err)
		}
		for d, uuids := range s.CircleAttendanceUUIDs.Days() {
			for pos, uuid := range uuids {
				if _, err := insAttendance.ExecContext(ctx, s.Code, d+1, uuid, pos); err != nil {
					return fmt.Errorf("failed to insert attendance for %s: %w", s.Code, err)
				}
			}
		}
	}

	return nil
}

// LoadFandoms reads the stored fandom records in their original order,
// with aliases, sellers and both sides of every edge restored.
func (db *DB) LoadFandoms(ctx context.Context) ([]fandom.Record, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, code, display_name, COALESCE(regex, ''), curated
		FROM fandoms ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fandoms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []fandom.Record
	index := make(map[string]int)
	for rows.Next() {
		var rec fandom.Record
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.DisplayName, &rec.RegexStr, &rec.Curated); err != nil {
			return nil, err
		}
		rec.SellerIDs = []string{}
		index[rec.ID] = len(recs)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.loadAliases(ctx, recs, index); err != nil {
		return nil, err
	}
	if err := db.loadEdges(ctx, recs, index); err != nil {
		return nil, err
	}
	if err := db.loadSellers(ctx, recs, index); err != nil {
		return nil, err
	}

	return recs, nil
}

func (db *DB) loadAliases(ctx context.Context, recs []fandom.Record, index map[string]int) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT fandom_id, kind, alias FROM fandom_aliases ORDER BY fandom_id, kind, position
	`)
	if err != nil {
		return fmt.Errorf("failed to query aliases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, kind, alias string
		if err := rows.Scan(&id, &kind, &alias); err != nil {
			return err
		}
		rec := &recs[index[id]]
		switch kind {
		case aliasAbbreviation:
			rec.Abbreviation = append(rec.Abbreviation, alias)
		case aliasNamealike:
			rec.Namealikes = append(rec.Namealikes, alias)
		case aliasTypo:
			rec.CommonTypo = append(rec.CommonTypo, alias)
		}
	}
	return rows.Err()
}

func (db *DB) loadEdges(ctx context.Context, recs []fandom.Record, index map[string]int) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT e.parent_id, e.child_id
		FROM fandom_edges e
		JOIN fandoms p ON p.id = e.parent_id
		ORDER BY p.position, e.position
	`)
	if err != nil {
		return fmt.Errorf("failed to query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var parent, child string
		if err := rows.Scan(&parent, &child); err != nil {
			return err
		}
		recs[index[parent]].SubsetIDs = append(recs[index[parent]].SubsetIDs, child)
		recs[index[child]].SupersetIDs = append(recs[index[child]].SupersetIDs, parent)
	}
	return rows.Err()
}

func (db *DB) loadSellers(ctx context.Context, recs []fandom.Record, index map[string]int) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT fandom_id, seller_id FROM fandom_sellers ORDER BY fandom_id, position
	`)
	if err != nil {
		return fmt.Errorf("failed to query sellers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, seller string
		if err := rows.Scan(&id, &seller); err != nil {
			return err
		}
		recs[index[id]].SellerIDs = append(recs[index[id]].SellerIDs, seller)
	}
	return rows.Err()
}

// CircleFandoms returns the fandom ids linked to a circle, in order.
func (db *DB) CircleFandoms(ctx context.Context, circleUUID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT fandom_id FROM circle_fandoms WHERE circle_uuid = ? ORDER BY position
	`, circleUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query circle fandoms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Counts returns the number of stored fandoms, circles and stands.
func (db *DB) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM fandoms),
			(SELECT COUNT(*) FROM circles),
			(SELECT COUNT(*) FROM stands)
	`).Scan(&c.Fandoms, &c.Circles, &c.Stands)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}
