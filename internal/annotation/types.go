// Package annotation holds the declarative annotations an analyst attaches
// to fact-table columns, the groups that carry them, and the Manager that
// persists groups and connection references in the metadata store.
package annotation

import (
	"fmt"

	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/model"
	"github.com/starford/modeler/internal/schema"
)

// Kind tags an annotation variant.
type Kind string

// Annotation kinds.
const (
	KindCreateAttribute    Kind = "CREATE_ATTRIBUTE"
	KindCreateDimensionKey Kind = "CREATE_DIMENSION_KEY"
	KindLinkDimension      Kind = "LINK_DIMENSION"
	KindCreateMeasure      Kind = "CREATE_MEASURE"
)

// Property is one editable field of an annotation as shown to editors.
type Property struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Type is the capability set shared by every annotation variant.
type Type interface {
	Kind() Kind
	// Properties lists the editable fields. Names and order are fixed per kind.
	Properties() []Property
	// Summary describes the annotation from its current field values.
	Summary() string
	Validate() error
	// Apply mutates ws for the annotation bound to column. On error ws is left
	// as it was before the call.
	Apply(ws *model.Workspace, column string, store metastore.Store) error
}

// contributor is implemented by the variants a shared group may carry. They
// replay into an isolated dimension builder instead of a workspace.
type contributor interface {
	Type
	dimension() string
	contribute(b *schema.DimensionBuilder, column string) error
}

// New returns a zero annotation of the given kind.
func New(kind Kind) (Type, error) {
	switch kind {
	case KindCreateAttribute:
		return &CreateAttribute{}, nil
	case KindCreateDimensionKey:
		return &CreateDimensionKey{}, nil
	case KindLinkDimension:
		return &LinkDimension{}, nil
	case KindCreateMeasure:
		return &CreateMeasure{}, nil
	default:
		return nil, fmt.Errorf("annotation: unknown kind %q", kind)
	}
}

// Kinds lists every annotation kind.
func Kinds() []Kind {
	return []Kind{
		KindCreateAttribute,
		KindCreateDimensionKey,
		KindLinkDimension,
		KindCreateMeasure,
	}
}

// name returns the user-facing name of t, used in error reports.
func name(t Type) string {
	switch v := t.(type) {
	case *CreateAttribute:
		return v.Name
	case *CreateDimensionKey:
		return v.Name
	case *LinkDimension:
		return v.Name
	case *CreateMeasure:
		return v.Name
	default:
		return ""
	}
}
