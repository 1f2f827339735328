package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordTriage(domain.AnalysisResult{})
	m.RecordTriageFailure("EmptyInputError")
	m.RecordNotification("critical", nil)
	m.SetCorpusSize(3)
	m.RecordCorpusReload(nil)
}

func TestMetrics_Records(t *testing.T) {
	m := NewMetrics()
	m.RecordTriage(domain.AnalysisResult{Priority: domain.PriorityHigh, Team: domain.TeamBilling, Confidence: 0.8})
	m.RecordTriage(domain.AnalysisResult{Priority: domain.PriorityHigh, Team: domain.TeamTechnical, Confidence: 0.1})
	m.RecordTriageFailure("VectorizationError")
	m.SetCorpusSize(42)
	m.RecordCorpusReload(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.priorityTotal.WithLabelValues("High")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.triageTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.triageTotal.WithLabelValues("VectorizationError")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.corpusTickets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.corpusReloads.WithLabelValues("failed")))

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "triage_pipeline_confidence_score")
}
