package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/model"
)

func productTable() *model.LogicalTable {
	return BindTable("product", []string{"PRODUCT_DESCRIPTION", "PRODUCT_NAME", "PRODUCT_ID"}, "en_US")
}

func levelNames(h *model.Hierarchy) []string {
	var out []string
	for _, l := range h.Levels {
		out = append(out, l.Name)
	}
	return out
}

func TestBeautify(t *testing.T) {
	assert.Equal(t, "PRODUCT NAME", Beautify("product_name"))
	assert.Equal(t, "PRODUCT", Beautify("product"))
	assert.Equal(t, "A B", Beautify("_a_b_"))
}

func TestBindTable(t *testing.T) {
	tbl := BindTable("product", []string{"PRODUCT_NAME", "PRODUCT_NAME", "", "PRODUCT_ID"}, "en_US")
	assert.Equal(t, "PRODUCT", tbl.Name.Get("en_us"))
	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, "PRODUCT NAME", tbl.Columns[0].Name.Get("en_US"))
	assert.Equal(t, "product_name", tbl.Columns[0].PhysicalName)
}

func TestChain_RootFirst(t *testing.T) {
	attrs := map[string]Attribute{
		"Year":    {Name: "Year"},
		"Quarter": {Name: "Quarter", Parent: "Year"},
		"Month":   {Name: "Month", Parent: "Quarter"},
	}
	chain, err := Chain(attrs, "Month")
	require.NoError(t, err)
	var names []string
	for _, a := range chain {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Year", "Quarter", "Month"}, names)
}

func TestChain_UnresolvedParent(t *testing.T) {
	attrs := map[string]Attribute{"Description": {Name: "Description", Parent: "Product"}}
	_, err := Chain(attrs, "Description")
	assert.True(t, apperr.Is(err, apperr.ErrUnresolvedParent), "err = %v", err)
}

func TestChain_Cycle(t *testing.T) {
	attrs := map[string]Attribute{
		"A": {Name: "A", Parent: "B"},
		"B": {Name: "B", Parent: "A"},
	}
	_, err := Chain(attrs, "A")
	assert.True(t, apperr.Is(err, apperr.ErrUnresolvedParent), "err = %v", err)
}

func TestDimensionBuilder_ParentAddedAfterChild(t *testing.T) {
	tbl := productTable()
	b := NewDimensionBuilder("Shared Product dim", tbl)
	require.NoError(t, b.AddAttribute(Attribute{Name: "Description", Parent: "Product", Column: tbl.FindColumn("PRODUCT_DESCRIPTION")}))
	require.NoError(t, b.AddAttribute(Attribute{Name: "Product", Column: tbl.FindColumn("PRODUCT_NAME")}))
	require.NoError(t, b.SetKey(tbl.FindColumn("PRODUCT_ID")))

	dim, err := b.Build()
	require.NoError(t, err)
	require.Len(t, dim.Hierarchies, 1)
	h := dim.Hierarchies[0]
	assert.Equal(t, "Shared Product dim", h.Name)
	assert.Equal(t, []string{"Product", "Description"}, levelNames(h))
	assert.Equal(t, "PRODUCT NAME", h.Levels[0].Column.Name.Get("en_US"))
	assert.Equal(t, "PRODUCT DESCRIPTION", h.Levels[1].Column.Name.Get("en_US"))
	assert.Same(t, tbl, h.Table)
	assert.Equal(t, "PRODUCT_ID", dim.Key.ID)
}

func TestDimensionBuilder_Branches(t *testing.T) {
	b := NewDimensionBuilder("Geo", nil)
	require.NoError(t, b.AddAttribute(Attribute{Name: "Country"}))
	require.NoError(t, b.AddAttribute(Attribute{Name: "State", Parent: "Country"}))
	require.NoError(t, b.AddAttribute(Attribute{Name: "Region", Parent: "Country", Hierarchy: "Sales Regions"}))

	dim, err := b.Build()
	require.NoError(t, err)
	require.Len(t, dim.Hierarchies, 2)
	assert.Equal(t, "Geo", dim.Hierarchies[0].Name)
	assert.Equal(t, []string{"Country", "State"}, levelNames(dim.Hierarchies[0]))
	assert.Equal(t, "Sales Regions", dim.Hierarchies[1].Name)
	assert.Equal(t, []string{"Country", "Region"}, levelNames(dim.Hierarchies[1]))
	assert.NotSame(t, dim.Hierarchies[0].Levels[0], dim.Hierarchies[1].Levels[0])
}

func TestDimensionBuilder_MissingParentFailsBuild(t *testing.T) {
	b := NewDimensionBuilder("d", nil)
	require.NoError(t, b.AddAttribute(Attribute{Name: "Description", Parent: "Product"}))
	_, err := b.Build()
	assert.True(t, apperr.Is(err, apperr.ErrUnresolvedParent))
}

func TestDimensionBuilder_DuplicatesRejected(t *testing.T) {
	tbl := productTable()
	b := NewDimensionBuilder("d", tbl)
	require.NoError(t, b.AddAttribute(Attribute{Name: "Product"}))
	assert.True(t, apperr.Is(b.AddAttribute(Attribute{Name: "Product"}), apperr.ErrNameConflict))
	assert.True(t, apperr.Is(b.AddAttribute(Attribute{}), apperr.ErrInvalid))

	require.NoError(t, b.SetKey(tbl.FindColumn("PRODUCT_ID")))
	require.NoError(t, b.SetKey(tbl.FindColumn("product_id")), "same column twice is fine")
	assert.True(t, apperr.Is(b.SetKey(tbl.FindColumn("PRODUCT_NAME")), apperr.ErrNameConflict))
}

func TestDimensionBuilder_BuildsFreshDimensions(t *testing.T) {
	b := NewDimensionBuilder("d", nil)
	require.NoError(t, b.AddAttribute(Attribute{Name: "Product"}))
	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)
	first.Hierarchies[0].Levels[0].Name = "changed"
	assert.Equal(t, "Product", second.Hierarchies[0].Levels[0].Name)
}

func TestPlaceAttribute(t *testing.T) {
	dim := &model.Dimension{Name: "Time"}
	require.NoError(t, PlaceAttribute(dim, nil, Attribute{Name: "Year"}))
	require.NoError(t, PlaceAttribute(dim, nil, Attribute{Name: "Month", Parent: "Year"}))
	require.Len(t, dim.Hierarchies, 1)
	assert.Equal(t, []string{"Year", "Month"}, levelNames(dim.Hierarchies[0]))

	// Parent exists but is not the leaf: branch a new hierarchy.
	require.NoError(t, PlaceAttribute(dim, nil, Attribute{Name: "Week", Parent: "Year"}))
	require.Len(t, dim.Hierarchies, 2)
	assert.Equal(t, "Week", dim.Hierarchies[1].Name)
	assert.Equal(t, []string{"Year", "Week"}, levelNames(dim.Hierarchies[1]))

	err := PlaceAttribute(dim, nil, Attribute{Name: "Day", Parent: "Hour"})
	assert.True(t, apperr.Is(err, apperr.ErrUnresolvedParent))
	err = PlaceAttribute(dim, nil, Attribute{Name: "Month", Parent: "Year"})
	assert.True(t, apperr.Is(err, apperr.ErrNameConflict))
}

func TestPlaceAttribute_SecondRootGetsOwnHierarchy(t *testing.T) {
	dim := &model.Dimension{Name: "Customer"}
	require.NoError(t, PlaceAttribute(dim, nil, Attribute{Name: "Name"}))
	require.NoError(t, PlaceAttribute(dim, nil, Attribute{Name: "Segment"}))
	require.Len(t, dim.Hierarchies, 2)
	assert.Equal(t, "Customer", dim.Hierarchies[0].Name)
	assert.Equal(t, "Segment", dim.Hierarchies[1].Name)
}

func TestBuildUsage(t *testing.T) {
	dim := &model.Dimension{Name: "Shared Product dim"}
	fk := &model.Column{ID: "PRODUCT_ID"}
	u := BuildUsage("Product Dim", dim, fk)
	assert.Equal(t, "Product Dim", u.Name)
	assert.Same(t, dim, u.Dimension)
	assert.Same(t, fk, u.ForeignKey)
}

func TestAutoModelFlat(t *testing.T) {
	fact := &model.LogicalTable{
		ID:            "ORDERFACT",
		PhysicalTable: "orderfact",
		Columns: []*model.Column{
			{ID: "ORDERNUMBER", PhysicalName: "ordernumber", Name: model.NewLocalizedString("en_US", "ORDERNUMBER"), DataType: model.DataTypeNumeric},
			{ID: "PRODUCT_ID", PhysicalName: "product_id", Name: model.NewLocalizedString("en_US", "PRODUCT ID"), DataType: model.DataTypeNumeric},
			{ID: "QUANTITYORDERED", PhysicalName: "quantityordered", Name: model.NewLocalizedString("en_US", "QUANTITYORDERED"), DataType: model.DataTypeNumeric},
			{ID: "STATUS", PhysicalName: "status", DataType: model.DataTypeString},
		},
	}
	ws := model.NewWorkspace("someModel", "en_US", fact)
	require.NoError(t, AutoModelFlat(ws))

	cube := ws.Cube()
	require.Len(t, cube.Usages, 3)
	assert.Equal(t, "ORDERNUMBER", cube.Usages[0].Name)
	assert.Equal(t, "PRODUCT ID", cube.Usages[1].Name)
	assert.Equal(t, "STATUS", cube.Usages[2].Name)
	// An order number groups and sums; a product id only groups.
	require.Len(t, cube.Measures, 2)
	assert.Equal(t, "ORDERNUMBER", cube.Measures[0].Name)
	assert.Equal(t, "QUANTITYORDERED", cube.Measures[1].Name)
	assert.Equal(t, model.AggregationSum, cube.Measures[1].Aggregator)

	// Running it again adds nothing.
	require.NoError(t, AutoModelFlat(ws))
	assert.Len(t, cube.Usages, 3)
	assert.Len(t, cube.Measures, 2)
}
