package schema

import (
	"fmt"
	"strings"

	"github.com/starford/modeler/internal/model"
)

// keySuffixes mark numeric columns that only identify, never measure.
var keySuffixes = []string{"id", "key"}

// numberSuffix marks numeric columns that are both a grouping and a count,
// such as an order number. They get a dimension and a SUM measure.
const numberSuffix = "number"

// AutoModelFlat seeds ws from its fact table. Numeric columns become SUM
// measures unless they are keys; keys, "*number" columns and every
// non-numeric column become single-level dimensions.
func AutoModelFlat(ws *model.Workspace) error {
	fact := ws.FactTable()
	cube := ws.Cube()
	for _, c := range fact.Columns {
		display := c.Name.Get(ws.Locale())
		if display == "" {
			display = Beautify(c.PhysicalName)
		}
		numeric := c.DataType == model.DataTypeNumeric
		if numeric && !isKey(c.PhysicalName) && cube.Measure(display) == nil {
			cube.Measures = append(cube.Measures, &model.Measure{
				Name:       display,
				Column:     c,
				Aggregator: model.AggregationSum,
			})
		}
		if numeric && !isKey(c.PhysicalName) && !strings.HasSuffix(strings.ToLower(c.PhysicalName), numberSuffix) {
			continue
		}
		dim := ws.EnsureDimension(display)
		if len(dim.Hierarchies) > 0 {
			continue
		}
		if err := PlaceAttribute(dim, fact, Attribute{Name: display, Column: c}); err != nil {
			return fmt.Errorf("schema: auto model %s: %w", c.PhysicalName, err)
		}
	}
	return nil
}

func isKey(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range keySuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}
