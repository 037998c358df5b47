package annotation

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/model"
	"github.com/starford/modeler/internal/schema"
)

// CreateAttribute turns its column into a hierarchy level of Dimension. With
// ParentAttribute set the level nests directly beneath the parent's level.
type CreateAttribute struct {
	Name            string `json:"name" yaml:"name"`
	Dimension       string `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Hierarchy       string `json:"hierarchy,omitempty" yaml:"hierarchy,omitempty"`
	ParentAttribute string `json:"parent_attribute,omitempty" yaml:"parent_attribute,omitempty"`
	OrdinalField    string `json:"ordinal_field,omitempty" yaml:"ordinal_field,omitempty"`
	CaptionField    string `json:"caption_field,omitempty" yaml:"caption_field,omitempty"`
	Unique          bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
}

var _ contributor = (*CreateAttribute)(nil)

func (a *CreateAttribute) Kind() Kind { return KindCreateAttribute }

func (a *CreateAttribute) Properties() []Property {
	return []Property{
		{Name: "Attribute Name", Value: a.Name},
		{Name: "Dimension", Value: a.Dimension},
		{Name: "Hierarchy", Value: a.Hierarchy},
		{Name: "Parent Attribute", Value: a.ParentAttribute},
		{Name: "Ordinal Field", Value: a.OrdinalField},
		{Name: "Caption Field", Value: a.CaptionField},
		{Name: "Unique", Value: a.Unique},
	}
}

func (a *CreateAttribute) Summary() string {
	s := fmt.Sprintf("%s is an attribute of dimension %s", a.Name, a.localDimension())
	if a.ParentAttribute != "" {
		s += fmt.Sprintf(" (child of %s)", a.ParentAttribute)
	}
	return s
}

func (a *CreateAttribute) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.ParentAttribute, validation.NotIn(a.Name).Error("must differ from the attribute name")),
	)
}

// Apply adds the attribute's level to the local dimension, creating and
// attaching the dimension on first use.
func (a *CreateAttribute) Apply(ws *model.Workspace, column string, _ metastore.Store) error {
	attr, err := a.resolve(ws.FactTable(), column)
	if err != nil {
		return err
	}

	dim := ws.Dimension(a.localDimension())
	if dim == nil {
		if a.ParentAttribute != "" {
			return apperr.ErrUnresolvedParent.New(a.Name, a.ParentAttribute)
		}
		dim = &model.Dimension{Name: a.localDimension()}
		if err := schema.PlaceAttribute(dim, ws.FactTable(), attr); err != nil {
			return err
		}
		ws.Cube().AddUsage(&model.DimensionUsage{Name: dim.Name, Dimension: dim})
		return nil
	}
	return schema.PlaceAttribute(dim, ws.FactTable(), attr)
}

func (a *CreateAttribute) dimension() string { return a.Dimension }

// localDimension is the dimension the attribute lands in when applied to a
// workspace: an attribute without one forms its own dimension.
func (a *CreateAttribute) localDimension() string {
	if a.Dimension == "" {
		return a.Name
	}
	return a.Dimension
}

func (a *CreateAttribute) contribute(b *schema.DimensionBuilder, column string) error {
	attr, err := a.resolve(b.Table(), column)
	if err != nil {
		return err
	}
	return b.AddAttribute(attr)
}

// resolve binds the attribute's column references against table.
func (a *CreateAttribute) resolve(table *model.LogicalTable, column string) (schema.Attribute, error) {
	attr := schema.Attribute{
		Name:      a.Name,
		Parent:    a.ParentAttribute,
		Hierarchy: a.Hierarchy,
		Unique:    a.Unique,
	}
	var err error
	if attr.Column, err = lookup(table, column); err != nil {
		return attr, err
	}
	if a.OrdinalField != "" {
		if attr.Ordinal, err = lookup(table, a.OrdinalField); err != nil {
			return attr, err
		}
	}
	if a.CaptionField != "" {
		if attr.Caption, err = lookup(table, a.CaptionField); err != nil {
			return attr, err
		}
	}
	return attr, nil
}

func lookup(table *model.LogicalTable, column string) (*model.Column, error) {
	if c := table.FindColumn(column); c != nil {
		return c, nil
	}
	return nil, apperr.ErrMissingColumn.New(column, table.PhysicalTable)
}
