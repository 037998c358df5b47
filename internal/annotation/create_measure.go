package annotation

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/model"
)

// CreateMeasure aggregates its column into a cube measure.
type CreateMeasure struct {
	Name          string `json:"name" yaml:"name"`
	AggregateType string `json:"aggregate_type" yaml:"aggregate_type"`
	FormatString  string `json:"format_string,omitempty" yaml:"format_string,omitempty"`
}

func (m *CreateMeasure) Kind() Kind { return KindCreateMeasure }

func (m *CreateMeasure) Properties() []Property {
	return []Property{
		{Name: "Measure Name", Value: m.Name},
		{Name: "Aggregation Type", Value: m.AggregateType},
		{Name: "Format String", Value: m.FormatString},
	}
}

func (m *CreateMeasure) Summary() string {
	return fmt.Sprintf("Measure %s aggregated by %s", m.Name, m.AggregateType)
}

func (m *CreateMeasure) Validate() error {
	aggs := make([]any, len(model.Aggregations))
	for i, a := range model.Aggregations {
		aggs[i] = a
	}
	return validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.AggregateType, validation.Required, validation.In(aggs...)),
	)
}

func (m *CreateMeasure) Apply(ws *model.Workspace, column string, _ metastore.Store) error {
	col, err := ws.Column(column)
	if err != nil {
		return err
	}
	cube := ws.Cube()
	if cube.Measure(m.Name) != nil {
		return apperr.ErrNameConflict.New("measure", m.Name)
	}
	agg := m.AggregateType
	if agg == "" {
		agg = model.AggregationSum
	}
	cube.Measures = append(cube.Measures, &model.Measure{
		Name:         m.Name,
		Column:       col,
		Aggregator:   agg,
		FormatString: m.FormatString,
	})
	return nil
}
