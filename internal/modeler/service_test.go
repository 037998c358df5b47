package modeler

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/starford/modeler/internal/annotation"
	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/metrics"
	"github.com/starford/modeler/internal/testutil"
)

func testService(t *testing.T) (*Service, *metrics.Metrics, string) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(testutil.TestStore(t), m, testutil.Logger(), "en_US")
	ref, err := svc.StoreConnection(context.Background(), testutil.OrdersDB(t))
	if err != nil {
		t.Fatalf("StoreConnection: %v", err)
	}
	return svc, m, ref
}

func sharedGroup(t *testing.T, ref string) *annotation.Group {
	t.Helper()
	g, err := annotation.ParseGroupYAML([]byte(fmt.Sprintf(testutil.SharedProductGroupYAML, ref)))
	if err != nil {
		t.Fatalf("ParseGroupYAML: %v", err)
	}
	return g
}

func TestBuildModel_AutoModelAndLink(t *testing.T) {
	svc, m, ref := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateGroup(ctx, sharedGroup(t, ref)); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	res, err := svc.BuildModel(ctx, BuildRequest{
		Name:          "someModel",
		ConnectionRef: ref,
		Table:         "orderfact",
		AutoModel:     true,
		Links: []Link{
			{Name: "Product Dim", SharedDimension: "shared product group", Column: "PRODUCT_ID"},
		},
	})
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}

	if len(res.Cube.Usages) != 3 {
		t.Fatalf("usages = %d, want 3", len(res.Cube.Usages))
	}
	u := res.Cube.Usages[2]
	if u.Name != "Product Dim" {
		t.Errorf("usage name = %q", u.Name)
	}
	h := u.Dimension.Hierarchies[0]
	if got := h.Table.Name.Get("en_us"); got != "PRODUCT" {
		t.Errorf("table name = %q", got)
	}
	if h.Levels[0].Name != "Product" || h.Levels[1].Name != "Description" {
		t.Errorf("levels = %s, %s", h.Levels[0].Name, h.Levels[1].Name)
	}
	if got := h.Levels[0].Column.Name.Get("en_US"); got != "PRODUCT NAME" {
		t.Errorf("level column = %q", got)
	}
	if len(res.Cube.Measures) != 2 {
		t.Errorf("measures = %d, want 2", len(res.Cube.Measures))
	}
	if len(res.Reporting.Tables) != 1 || res.Reporting.Tables[0].PhysicalTable != "orderfact" {
		t.Errorf("reporting tables = %+v", res.Reporting.Tables)
	}

	if got := promtest.ToFloat64(m.LinksTotal.WithLabelValues("shared product group", "success")); got != 1 {
		t.Errorf("link metric = %v", got)
	}
	if got := promtest.ToFloat64(m.ModelBuildsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("build metric = %v", got)
	}
	if got := promtest.ToFloat64(m.GroupsStored); got != 1 {
		t.Errorf("groups stored = %v", got)
	}
}

func TestBuildModel_InlineAndStoredGroups(t *testing.T) {
	svc, _, ref := testService(t)
	ctx := context.Background()

	stored := &annotation.Group{Name: "order dims"}
	stored.Add("ORDERNUMBER", &annotation.CreateAttribute{Name: "Order", Dimension: "Orders"})
	if _, err := svc.CreateGroup(ctx, stored); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	inline := &annotation.Group{}
	inline.Add("QUANTITYORDERED", &annotation.CreateMeasure{Name: "Quantity", AggregateType: "SUM"})

	res, err := svc.BuildModel(ctx, BuildRequest{
		Name:          "orders",
		ConnectionRef: ref,
		Table:         "orderfact",
		Groups:        []string{"order dims"},
		Group:         inline,
	})
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	if len(res.Cube.Usages) != 1 || res.Cube.Usages[0].Name != "Orders" {
		t.Errorf("usages = %+v", res.Cube.Usages)
	}
	if res.Cube.Measure("Quantity") == nil {
		t.Error("inline measure missing")
	}
}

func TestBuildModel_Errors(t *testing.T) {
	svc, m, ref := testService(t)
	ctx := context.Background()

	_, err := svc.BuildModel(ctx, BuildRequest{Name: "x", ConnectionRef: ref})
	if !apperr.Is(err, apperr.ErrInvalid) {
		t.Errorf("missing table: err = %v", err)
	}

	_, err = svc.BuildModel(ctx, BuildRequest{Name: "x", ConnectionRef: "nope", Table: "orderfact"})
	if !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown connection: err = %v", err)
	}

	_, err = svc.BuildModel(ctx, BuildRequest{
		Name: "x", ConnectionRef: ref, Table: "orderfact",
		Links: []Link{{Name: "P", SharedDimension: "missing", Column: "PRODUCT_ID"}},
	})
	if !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown shared group: err = %v", err)
	}
	if got := promtest.ToFloat64(m.LinksTotal.WithLabelValues("missing", "error")); got != 1 {
		t.Errorf("failed link metric = %v", got)
	}
}

func TestGroupLifecycle(t *testing.T) {
	svc, _, ref := testService(t)
	ctx := context.Background()

	if _, err := svc.GetGroup(ctx, "shared product group"); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("get before create: err = %v", err)
	}
	if _, err := svc.CreateGroup(ctx, sharedGroup(t, ref)); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := svc.CreateGroup(ctx, sharedGroup(t, ref)); !apperr.Is(err, apperr.ErrNameConflict) {
		t.Errorf("second create: err = %v", err)
	}

	d, err := svc.GetGroup(ctx, "shared product group")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if len(d.Summaries) != 3 || d.Summaries[2] != "id is the key of dimension Shared Product dim" {
		t.Errorf("summaries = %v", d.Summaries)
	}

	items, err := svc.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(items) != 1 || !items[0].SharedDimension || items[0].Annotations != 3 {
		t.Errorf("items = %+v", items)
	}

	if err := svc.DeleteGroup(ctx, "shared product group"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if err := svc.DeleteGroup(ctx, "shared product group"); !apperr.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}

func TestSyncGroup(t *testing.T) {
	svc, _, ref := testService(t)
	ctx := context.Background()

	changed, err := svc.SyncGroup(ctx, sharedGroup(t, ref))
	if err != nil || !changed {
		t.Fatalf("first sync: changed=%v err=%v", changed, err)
	}
	changed, err = svc.SyncGroup(ctx, sharedGroup(t, ref))
	if err != nil || changed {
		t.Errorf("identical sync: changed=%v err=%v", changed, err)
	}
	g := sharedGroup(t, ref)
	g.Description = "edited"
	changed, err = svc.SyncGroup(ctx, g)
	if err != nil || !changed {
		t.Errorf("edited sync: changed=%v err=%v", changed, err)
	}
}
