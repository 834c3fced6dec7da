package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveFormulation("animal", "success")
	r.ObserveFormulation("animal", "success")
	r.ObserveFormulation("targets", "infeasible")
	r.AddIgnoredOverrides(2)
	r.AddIgnoredOverrides(0)
	r.ObserveSolve("optimal", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.formulations.WithLabelValues("animal", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.formulations.WithLabelValues("targets", "infeasible")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ignoredOverrides))
	assert.Equal(t, 1, testutil.CollectAndCount(r.solveDuration))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveFormulation("animal", "success")
		r.ObserveSolve("optimal", time.Millisecond)
		r.AddIgnoredOverrides(1)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveFormulation("animal", "invalid_input")

	path := filepath.Join(t.TempDir(), "ration.prom")
	require.NoError(t, WriteTextfile(path, reg))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content),
		`ration_formulations_total{outcome="invalid_input",path="animal"} 1`))
}

func TestWriteTextfileBadPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "ration.prom"), reg)
	require.Error(t, err)
}
