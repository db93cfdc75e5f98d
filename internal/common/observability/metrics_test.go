package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestObservability_Records(t *testing.T) {
	obs := New("screening-workers-test", zaptest.NewLogger(t))
	defer obs.Shutdown()

	ctx := context.Background()
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "score-application", "handled")
		obs.RecordJobDuration(ctx, "score-application", 15*time.Millisecond, "handled")
		obs.RecordBatch(ctx, 10, 2)
	})
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "score-application", "handled")
		obs.RecordJobDuration(ctx, "score-application", time.Millisecond, "handled")
		obs.RecordBatch(ctx, 1, 0)
		obs.Shutdown()
	})
}
