package schema

import (
	"strings"

	"github.com/starford/modeler/internal/model"
)

// BuildUsage binds dim into a cube under name through the fact column fk.
func BuildUsage(name string, dim *model.Dimension, fk *model.Column) *model.DimensionUsage {
	return &model.DimensionUsage{
		Name:       name,
		Dimension:  dim,
		ForeignKey: fk,
	}
}

// BindTable synthesises the logical table a shared dimension is built over:
// the provider's physical table with one column per distinct annotated
// column id, in first-seen order. No live table scan is involved.
func BindTable(table string, columns []string, locale string) *model.LogicalTable {
	t := &model.LogicalTable{
		ID:            strings.ToUpper(table),
		PhysicalTable: table,
		Name:          model.NewLocalizedString(locale, Beautify(table)),
	}
	for _, c := range columns {
		if c == "" || t.FindColumn(c) != nil {
			continue
		}
		t.Columns = append(t.Columns, &model.Column{
			ID:           c,
			PhysicalName: strings.ToLower(c),
			Name:         model.NewLocalizedString(locale, Beautify(c)),
			DataType:     model.DataTypeUnknown,
		})
	}
	return t
}
