package obs

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveActionOutcomes(t *testing.T) {
	ObserveAction("modules", "create", nil)
	ObserveAction("modules", "create", nil)
	ObserveAction("modules", "create", errors.New("boom"))

	if got := testutil.ToFloat64(storeActionsTotal.WithLabelValues("modules", "create", "ok")); got != 2 {
		t.Fatalf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(storeActionsTotal.WithLabelValues("modules", "create", "error")); got != 1 {
		t.Fatalf("error count = %v, want 1", got)
	}
}
