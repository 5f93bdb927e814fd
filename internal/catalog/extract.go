package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/logging"
	"github.com/cfim/fandomap/internal/metrics"
	"github.com/cfim/fandomap/internal/tracing"
)

// Phase names one step of an extraction run.
type Phase string

const (
	PhaseCircles   Phase = "circles"
	PhaseFandoms   Phase = "fandoms"
	PhaseCrosslink Phase = "crosslink"
	PhaseStands    Phase = "stands"
)

// Options configures an extraction run.
type Options struct {
	// OnProgress, when set, is called after each circle of the circles and
	// fandoms phases and once when every other phase finishes.
	OnProgress func(phase Phase, done, total int)
	Logger     *slog.Logger
}

// Result holds everything an extraction produces.
type Result struct {
	Circles []CircleState   `json:"circles"`
	Fandoms []fandom.Record `json:"fandoms"`
	Stands  []StandState    `json:"stands"`
	Stats   fandom.Stats    `json:"stats"`
}

// Extract converts circles, decomposes their fandom fields through engine,
// links circles to the fandoms they sell and derives stands. Circles are
// processed sequentially in catalog order so that results are
// deterministic for a given seed.
func Extract(ctx context.Context, circles []Circle, engine *fandom.Engine, opts Options) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Extract",
		tracing.WithAttributes(attribute.Int("catalog.circles", len(circles))),
	)
	defer span.End()

	logger := opts.Logger
	if logger == nil {
		logger = logging.Get()
	}
	progress := opts.OnProgress
	if progress == nil {
		progress = func(Phase, int, int) {}
	}

	// Circles
	start := time.Now()
	states := make([]CircleState, 0, len(circles))
	for i, c := range circles {
		st, err := NewCircleState(c)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}
		states = append(states, st)
		progress(PhaseCircles, i+1, len(circles))
	}
	metrics.RecordPhaseDuration(string(PhaseCircles), start)

	// Fandoms
	stats, err := extractFandoms(ctx, circles, engine, progress)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if err := engine.Validate(); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// Crosslink
	start = time.Now()
	records := engine.Records()
	crosslink(states, records, logger)
	metrics.RecordPhaseDuration(string(PhaseCrosslink), start)
	progress(PhaseCrosslink, len(records), len(records))

	// Stands
	start = time.Now()
	stands, err := BuildStands(states)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	metrics.RecordPhaseDuration(string(PhaseStands), start)
	progress(PhaseStands, len(stands), len(stands))

	metrics.UpdateTotals(len(records), len(states), len(stands))
	tracing.AddSpanAttributes(span,
		attribute.Int("result.fandoms", len(records)),
		attribute.Int("result.stands", len(stands)),
		attribute.Int("result.registered", stats.Registered),
	)
	tracing.SetSpanOK(span)

	logger.Info("extraction complete",
		"circles", len(states),
		"fandoms", len(records),
		"stands", len(stands),
		"registered", stats.Registered,
		"typos", stats.TyposCaptured,
		"groups_skipped", stats.GroupsSkipped,
	)

	return &Result{
		Circles: states,
		Fandoms: records,
		Stands:  stands,
		Stats:   stats,
	}, nil
}

// extractFandoms runs both fandom fields of every circle through the engine.
func extractFandoms(ctx context.Context, circles []Circle, engine *fandom.Engine, progress func(Phase, int, int)) (fandom.Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.ExtractFandoms")
	defer span.End()
	defer metrics.RecordPhaseDuration(string(PhaseFandoms), time.Now())

	var total fandom.Stats
	for i, c := range circles {
		if err := ctx.Err(); err != nil {
			tracing.RecordError(span, err)
			return total, err
		}
		for _, field := range c.FandomFields() {
			if field == "" {
				continue
			}
			stats, err := engine.Process(strings.ToLower(Normalize(field)), c.UserID)
			total.Add(stats)
			if err != nil {
				err = fmt.Errorf("circle %q: %w", c.Name, err)
				tracing.RecordError(span, err)
				return total, err
			}
		}
		progress(PhaseFandoms, i+1, len(circles))
	}

	tracing.AddSpanAttributes(span,
		attribute.Int("fandoms.resolved", total.Resolved),
		attribute.Int("fandoms.registered", total.Registered),
	)
	return total, nil
}

// crosslink fills each circle's fandomUUIDs from the fandoms' seller lists.
// Seller ids that match no circle, such as those carried in a seed from an
// earlier catalog, are ignored.
func crosslink(circles []CircleState, records []fandom.Record, logger *slog.Logger) {
	index := make(map[string]int, len(circles))
	for i, c := range circles {
		if _, dup := index[c.UUID]; dup {
			logger.Warn("duplicate circle user_id", "uuid", c.UUID, "circle", c.DisplayName)
			continue
		}
		index[c.UUID] = i
	}

	for _, rec := range records {
		for _, seller := range rec.SellerIDs {
			i, ok := index[seller]
			if !ok {
				continue
			}
			if !slices.Contains(circles[i].FandomUUIDs, rec.ID) {
				circles[i].FandomUUIDs = append(circles[i].FandomUUIDs, rec.ID)
			}
		}
	}
}
