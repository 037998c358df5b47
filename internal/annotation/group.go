package annotation

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/model"
	"github.com/starford/modeler/internal/schema"
)

// DataProvider binds a group to a physical table reachable through a stored
// connection. ConnectionRef is the string returned by Manager.StoreConnection.
type DataProvider struct {
	Name          string `json:"name" yaml:"name"`
	TableName     string `json:"table_name" yaml:"table_name"`
	ConnectionRef string `json:"connection_ref" yaml:"connection_ref"`
}

func (p DataProvider) complete() bool {
	return p.TableName != "" && p.ConnectionRef != ""
}

// Annotation binds one annotation to a source column. Ordinal is the
// insertion position within its group.
type Annotation struct {
	Column  string
	Ordinal int
	Type    Type
}

func (a Annotation) Validate() error {
	if a.Type == nil {
		return errors.New("annotation type is required")
	}
	if a.Column == "" {
		return errors.New("column is required")
	}
	return a.Type.Validate()
}

// Group is an ordered set of annotations. A shared group describes one
// dimension that other models attach through LinkDimension.
type Group struct {
	Name            string         `json:"name" yaml:"name"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
	SharedDimension bool           `json:"shared_dimension" yaml:"shared_dimension"`
	Annotations     []Annotation   `json:"annotations" yaml:"annotations"`
	DataProviders   []DataProvider `json:"data_providers,omitempty" yaml:"data_providers,omitempty"`
}

// Add appends an annotation for column. Annotations replay in the order
// they were added.
func (g *Group) Add(column string, t Type) {
	g.Annotations = append(g.Annotations, Annotation{
		Column:  column,
		Ordinal: len(g.Annotations),
		Type:    t,
	})
}

// Validate checks the group structure. Shared groups additionally need a
// complete data provider, exactly one dimension key, only attribute and key
// annotations, and a single dimension name across them.
func (g *Group) Validate() error {
	err := validation.ValidateStruct(g,
		validation.Field(&g.Name, validation.Required),
		validation.Field(&g.Annotations),
	)
	if err != nil || !g.SharedDimension {
		return err
	}

	hasProvider := false
	for _, p := range g.DataProviders {
		if p.complete() {
			hasProvider = true
			break
		}
	}
	if !hasProvider {
		return errors.New("shared dimension needs a data provider with table and connection")
	}

	keys := 0
	dim := ""
	for _, a := range g.Annotations {
		c, ok := a.Type.(contributor)
		if !ok {
			return fmt.Errorf("%s annotation on %s cannot be part of a shared dimension", a.Type.Kind(), a.Column)
		}
		if c.Kind() == KindCreateDimensionKey {
			keys++
		}
		if d := c.dimension(); d != "" {
			if dim != "" && d != dim {
				return fmt.Errorf("shared dimension mixes dimensions %q and %q", dim, d)
			}
			dim = d
		}
	}
	if keys != 1 {
		return fmt.Errorf("shared dimension needs exactly one dimension key, has %d", keys)
	}
	return nil
}

// Summaries returns the summary of every annotation in order.
func (g *Group) Summaries() []string {
	out := make([]string, 0, len(g.Annotations))
	for _, a := range g.Annotations {
		out = append(out, a.Type.Summary())
	}
	return out
}

// Apply replays the annotations against ws in insertion order and stops at
// the first failure. Changes made by earlier annotations are kept.
func (g *Group) Apply(ws *model.Workspace, store metastore.Store) error {
	for _, a := range g.Annotations {
		if err := a.Type.Apply(ws, a.Column, store); err != nil {
			return g.applyError(a, err)
		}
	}
	return nil
}

// BuildDimension replays a shared group into a fresh dimension bound to
// table. Every call yields new hierarchies and levels.
func (g *Group) BuildDimension(table, locale string) (*model.Dimension, error) {
	cols := make([]string, 0, len(g.Annotations))
	for _, a := range g.Annotations {
		cols = append(cols, a.Column)
		if ca, ok := a.Type.(*CreateAttribute); ok {
			cols = append(cols, ca.OrdinalField, ca.CaptionField)
		}
	}
	b := schema.NewDimensionBuilder(g.dimensionName(), schema.BindTable(table, cols, locale))
	for _, a := range g.Annotations {
		c, ok := a.Type.(contributor)
		if !ok {
			return nil, g.applyError(a, apperr.ErrInvalid.New("shared dimension "+g.Name, string(a.Type.Kind())+" is not allowed"))
		}
		if err := c.contribute(b, a.Column); err != nil {
			return nil, g.applyError(a, err)
		}
	}
	dim, err := b.Build()
	if err != nil {
		return nil, &ApplyError{Group: g.Name, Err: err}
	}
	return dim, nil
}

// dimensionName is the first dimension named by a contributing annotation,
// else the group name.
func (g *Group) dimensionName() string {
	for _, a := range g.Annotations {
		if c, ok := a.Type.(contributor); ok && c.dimension() != "" {
			return c.dimension()
		}
	}
	return g.Name
}

func (g *Group) applyError(a Annotation, err error) *ApplyError {
	// Annotations that already report themselves are re-homed under g.
	if ae, ok := err.(*ApplyError); ok && ae.Kind == a.Type.Kind() && ae.Column == a.Column {
		err = ae.Err
	}
	return &ApplyError{
		Group:      g.Name,
		Annotation: name(a.Type),
		Kind:       a.Type.Kind(),
		Column:     a.Column,
		Err:        err,
	}
}

// ApplyError reports which annotation of which group failed.
type ApplyError struct {
	Group      string
	Annotation string
	Kind       Kind
	Column     string
	Err        error
}

func (e *ApplyError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("annotation group %q: %v", e.Group, e.Err)
	}
	return fmt.Sprintf("annotation group %q: %s %q on column %q: %v", e.Group, e.Kind, e.Annotation, e.Column, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
