package annotation

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/model"
	"github.com/starford/modeler/internal/schema"
)

// LinkDimension attaches a shared dimension, stored as an annotation group,
// to the cube under Name using the annotated column as join key. The same
// shared group may be linked any number of times under different names.
type LinkDimension struct {
	Name            string `json:"name" yaml:"name"`
	SharedDimension string `json:"shared_dimension" yaml:"shared_dimension"`
}

func (l *LinkDimension) Kind() Kind { return KindLinkDimension }

func (l *LinkDimension) Properties() []Property {
	return []Property{
		{Name: "Dimension Name", Value: l.Name},
		{Name: "Shared Dimension", Value: l.SharedDimension},
	}
}

func (l *LinkDimension) Summary() string {
	return fmt.Sprintf("Dimension %s is linked to shared dimension %s", l.Name, l.SharedDimension)
}

func (l *LinkDimension) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Name, validation.Required),
		validation.Field(&l.SharedDimension, validation.Required),
	)
}

// Apply rebuilds the shared dimension from its stored records and appends a
// usage for it. The usage append is the only mutation and happens last.
// Failures come back as an *ApplyError naming the link, its join column and
// the shared group.
func (l *LinkDimension) Apply(ws *model.Workspace, column string, store metastore.Store) error {
	if err := l.link(ws, column, store); err != nil {
		return &ApplyError{
			Group:      l.SharedDimension,
			Annotation: l.Name,
			Kind:       KindLinkDimension,
			Column:     column,
			Err:        err,
		}
	}
	return nil
}

func (l *LinkDimension) link(ws *model.Workspace, column string, store metastore.Store) error {
	if store == nil {
		return apperr.ErrInvalid.New("link", "no metadata store")
	}
	var m Manager
	g, err := m.LoadGroup(l.SharedDimension, store)
	if err != nil {
		return err
	}
	if !g.SharedDimension {
		return apperr.ErrInvalid.New("link", fmt.Sprintf("group %q is not a shared dimension", g.Name))
	}
	dp, err := m.ResolveProvider(g, store)
	if err != nil {
		return err
	}
	dim, err := g.BuildDimension(dp.TableName, ws.Locale())
	if err != nil {
		return err
	}
	fk, err := ws.Column(column)
	if err != nil {
		return err
	}
	ws.Cube().AddUsage(schema.BuildUsage(l.Name, dim, fk))
	return nil
}
