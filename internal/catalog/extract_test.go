package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/logging"
)

func testEngine(t *testing.T) *fandom.Engine {
	t.Helper()
	reg, err := fandom.NewRegistryFromRecords([]fandom.Record{
		{ID: "hsr", DisplayName: "Honkai Star Rail"},
		{ID: "gi", DisplayName: "Genshin Impact"},
	}, true)
	require.NoError(t, err)
	return fandom.NewEngine(reg, fandom.DefaultConfig(), quietLogger())
}

func quietLogger() *slog.Logger {
	return logging.New(logging.Config{Level: "error"}, io.Discard)
}

func testCircles() []Circle {
	return []Circle{
		{ID: "1", UserID: "u1", Name: "One", CircleCode: "B-1ab", Fandom: "Idol (JKT48, 22/7)", OtherFandom: "-"},
		{ID: "2", UserID: "u2", Name: "Two", CircleCode: "AB-2 (SAT)", Fandom: "Honkai Star Rale", OtherFandom: "Genshin Impact"},
		{ID: "3", UserID: "u3", Name: "Three", CircleCode: "B-1a (SUN)", Fandom: "idol", OtherFandom: "-"},
	}
}

func fandomID(t *testing.T, res *Result, name string) string {
	t.Helper()
	for _, rec := range res.Fandoms {
		if rec.DisplayName == name {
			return rec.ID
		}
	}
	require.Failf(t, "fandom not found", "no fandom named %q", name)
	return ""
}

func TestExtract(t *testing.T) {
	var calls []Phase
	opts := Options{
		Logger: quietLogger(),
		OnProgress: func(phase Phase, done, total int) {
			calls = append(calls, phase)
			assert.LessOrEqual(t, done, total)
		},
	}

	res, err := Extract(context.Background(), testCircles(), testEngine(t), opts)
	require.NoError(t, err)

	// Fandoms: the seed first, discoveries after in catalog order.
	names := make([]string, len(res.Fandoms))
	for i, rec := range res.Fandoms {
		names[i] = rec.DisplayName
	}
	assert.Equal(t, []string{"Honkai Star Rail", "Genshin Impact", "Idol", "Jkt48", "22/7"}, names)
	assert.Equal(t, []string{"honkai star rale"}, res.Fandoms[0].CommonTypo)
	assert.Equal(t, 3, res.Stats.Registered)
	assert.Equal(t, 1, res.Stats.TyposCaptured)

	// Circles link back to the fandoms they sell.
	idol, jkt, nanabun := fandomID(t, res, "Idol"), fandomID(t, res, "Jkt48"), fandomID(t, res, "22/7")
	require.Len(t, res.Circles, 3)
	assert.Equal(t, []string{idol, jkt, nanabun}, res.Circles[0].FandomUUIDs)
	assert.Equal(t, []string{"hsr", "gi"}, res.Circles[1].FandomUUIDs)
	assert.Equal(t, []string{idol}, res.Circles[2].FandomUUIDs)

	// Stands in order of first appearance.
	require.Len(t, res.Stands, 3)
	assert.Equal(t, StandState{
		Code:                  "B-1a",
		DisplayName:           "B-01a",
		StandType:             StandCircle,
		CircleAttendanceUUIDs: Attendance{Day1: []string{"u1"}, Day2: []string{"u1", "u3"}},
	}, res.Stands[0])
	assert.Equal(t, "B-1b", res.Stands[1].Code)
	assert.Equal(t, StandState{
		Code:                  "Ab-2",
		DisplayName:           "Ab-02",
		StandType:             StandCirclePro,
		CircleAttendanceUUIDs: Attendance{Day1: []string{"u2"}},
	}, res.Stands[2])

	assert.Equal(t, 3, countPhase(calls, PhaseCircles))
	assert.Equal(t, 3, countPhase(calls, PhaseFandoms))
	assert.Equal(t, 1, countPhase(calls, PhaseCrosslink))
	assert.Equal(t, 1, countPhase(calls, PhaseStands))
}

func countPhase(calls []Phase, p Phase) int {
	n := 0
	for _, c := range calls {
		if c == p {
			n++
		}
	}
	return n
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		circles []Circle
		wantErr error
	}{
		{"bad circle code", []Circle{{ID: "1", UserID: "u1", CircleCode: "nope"}}, ErrInvalidCircleCode},
		{"missing user id", []Circle{{ID: "1", CircleCode: "B-1"}}, ErrInvalidCircle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Extract(context.Background(), tt.circles, testEngine(t), Options{Logger: quietLogger()})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, testCircles(), testEngine(t), Options{Logger: quietLogger()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_MaxDepthFails(t *testing.T) {
	reg := fandom.NewRegistry()
	cfg := fandom.DefaultConfig()
	cfg.MaxDepth = 1
	engine := fandom.NewEngine(reg, cfg, quietLogger())

	circles := []Circle{{ID: "1", UserID: "u1", Name: "Deep", CircleCode: "B-1", Fandom: "a (b (c (d)))"}}
	_, err := Extract(context.Background(), circles, engine, Options{Logger: quietLogger()})
	assert.ErrorIs(t, err, fandom.ErrMaxDepth)
}

func TestExtract_Empty(t *testing.T) {
	res, err := Extract(context.Background(), nil, testEngine(t), Options{Logger: quietLogger()})
	require.NoError(t, err)

	assert.Empty(t, res.Circles)
	assert.Empty(t, res.Stands)
	assert.Len(t, res.Fandoms, 2)
}

func TestCrosslink_IgnoresUnknownSellers(t *testing.T) {
	circles := []CircleState{{UUID: "u1", FandomUUIDs: []string{}}}
	records := []fandom.Record{
		{ID: "f1", SellerIDs: []string{"u1", "stranger"}},
		{ID: "f2", SellerIDs: []string{"u1"}},
	}

	crosslink(circles, records, quietLogger())
	assert.Equal(t, []string{"f1", "f2"}, circles[0].FandomUUIDs)
}
