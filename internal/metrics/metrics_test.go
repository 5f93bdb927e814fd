package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPhaseDuration(t *testing.T) {
	start := time.Now().Add(-100 * time.Millisecond)

	assert.NotPanics(t, func() {
		RecordPhaseDuration("fandoms", start)
	})
}

func TestResolutions_Counter(t *testing.T) {
	before := testutil.ToFloat64(Resolutions.WithLabelValues("fuzzy"))

	Resolutions.WithLabelValues("fuzzy").Inc()
	Resolutions.WithLabelValues("miss").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(Resolutions.WithLabelValues("fuzzy")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(Resolutions.WithLabelValues("miss")), float64(1))
}

func TestRegistrations_Counter(t *testing.T) {
	before := testutil.ToFloat64(Registrations.WithLabelValues(OriginSeed))
	Registrations.WithLabelValues(OriginSeed).Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(Registrations.WithLabelValues(OriginSeed)))
}

func TestUpdateTotals(t *testing.T) {
	UpdateTotals(120, 40, 35)

	assert.Equal(t, float64(120), testutil.ToFloat64(FandomsTotal))
	assert.Equal(t, float64(40), testutil.ToFloat64(CirclesTotal))
	assert.Equal(t, float64(35), testutil.ToFloat64(StandsTotal))
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfim.prom")
	UpdateTotals(1, 2, 3)
	TyposCaptured.Inc()

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cfim_fandoms_total 1")
	assert.Contains(t, string(data), "cfim_fandom_typos_captured_total")
}
