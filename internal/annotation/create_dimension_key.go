package annotation

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/model"
	"github.com/starford/modeler/internal/schema"
)

// CreateDimensionKey designates its column as the key of Dimension.
type CreateDimensionKey struct {
	Name      string `json:"name" yaml:"name"`
	Dimension string `json:"dimension,omitempty" yaml:"dimension,omitempty"`
}

var _ contributor = (*CreateDimensionKey)(nil)

func (k *CreateDimensionKey) Kind() Kind { return KindCreateDimensionKey }

func (k *CreateDimensionKey) Properties() []Property {
	return []Property{
		{Name: "Key Name", Value: k.Name},
		{Name: "Dimension", Value: k.Dimension},
	}
}

func (k *CreateDimensionKey) Summary() string {
	return fmt.Sprintf("%s is the key of dimension %s", k.Name, k.Dimension)
}

func (k *CreateDimensionKey) Validate() error {
	return validation.ValidateStruct(k,
		validation.Field(&k.Name, validation.Required),
	)
}

// Apply sets the key of the local dimension. A dimension that already has a
// different key is left alone and ErrNameConflict is returned.
func (k *CreateDimensionKey) Apply(ws *model.Workspace, column string, _ metastore.Store) error {
	col, err := ws.Column(column)
	if err != nil {
		return err
	}
	if k.Dimension == "" {
		return apperr.ErrInvalid.New("dimension key "+k.Name, "dimension is required")
	}
	dim := ws.Dimension(k.Dimension)
	if dim != nil && dim.Key != nil && dim.Key != col {
		return apperr.ErrNameConflict.New("dimension key for", k.Dimension)
	}
	ws.EnsureDimension(k.Dimension).Key = col
	return nil
}

func (k *CreateDimensionKey) dimension() string { return k.Dimension }

func (k *CreateDimensionKey) contribute(b *schema.DimensionBuilder, column string) error {
	col, err := lookup(b.Table(), column)
	if err != nil {
		return err
	}
	return b.SetKey(col)
}
