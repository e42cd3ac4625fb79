package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGeneration_CountsPerOutcome(t *testing.T) {
	for _, outcome := range []string{"success", "refused", "provider_error", "decode_error"} {
		counter := GenerationAttemptsTotal.WithLabelValues(outcome)
		before := testutil.ToFloat64(counter)
		RecordGeneration(outcome, 1.5)
		assert.Equal(t, before+1, testutil.ToFloat64(counter), "outcome %s", outcome)
	}
}

func TestRecordRound(t *testing.T) {
	counter := RoundsTotal.WithLabelValues("ok")
	before := testutil.ToFloat64(counter)
	RecordRound("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordAnswer(t *testing.T) {
	counter := AnswersTotal.WithLabelValues("correct")
	before := testutil.ToFloat64(counter)
	RecordAnswer("correct")
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
