package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordLink("shared product group", nil)
	m.RecordLink("shared product group", nil)
	m.RecordLink("shared product group", errors.New("boom"))
	if got := testutil.ToFloat64(m.LinksTotal.WithLabelValues("shared product group", "success")); got != 2 {
		t.Errorf("successful links = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LinksTotal.WithLabelValues("shared product group", "error")); got != 1 {
		t.Errorf("failed links = %v, want 1", got)
	}

	m.RecordGroupApply(nil)
	if got := testutil.ToFloat64(m.GroupAppliesTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("group applies = %v, want 1", got)
	}

	m.RecordModelBuild(10*time.Millisecond, errors.New("x"))
	if got := testutil.ToFloat64(m.ModelBuildsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed builds = %v, want 1", got)
	}

	m.RecordStoreOperation("create_group", nil)
	if got := testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("create_group", "success")); got != 1 {
		t.Errorf("store ops = %v, want 1", got)
	}

	m.SetGroupsStored(3)
	if got := testutil.ToFloat64(m.GroupsStored); got != 3 {
		t.Errorf("groups stored = %v, want 3", got)
	}

	m.RecordHTTPRequest("GET", "/groups/{name}", 404, time.Millisecond)
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/groups/{name}", "4xx")); got != 1 {
		t.Errorf("http 4xx = %v, want 1", got)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances on separate registries must not collide.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
