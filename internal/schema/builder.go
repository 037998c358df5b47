package schema

import (
	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/model"
)

// DimensionBuilder is an isolated construction context for one dimension.
// Attributes may arrive in any order; parent chains are resolved by Build
// through a name -> attribute lookup table filled as attributes are added.
type DimensionBuilder struct {
	name   string
	table  *model.LogicalTable
	key    *model.Column
	order  []string
	byName map[string]Attribute
}

// NewDimensionBuilder returns a builder for a dimension called name whose
// hierarchies are bound to table.
func NewDimensionBuilder(name string, table *model.LogicalTable) *DimensionBuilder {
	return &DimensionBuilder{
		name:   name,
		table:  table,
		byName: make(map[string]Attribute),
	}
}

// Name returns the dimension name.
func (b *DimensionBuilder) Name() string { return b.name }

// Table returns the table the dimension is bound to.
func (b *DimensionBuilder) Table() *model.LogicalTable { return b.table }

// AddAttribute registers a. Attribute names are unique within a dimension.
func (b *DimensionBuilder) AddAttribute(a Attribute) error {
	if a.Name == "" {
		return apperr.ErrInvalid.New("attribute", "name is required")
	}
	if _, dup := b.byName[a.Name]; dup {
		return apperr.ErrNameConflict.New("attribute", a.Name)
	}
	b.byName[a.Name] = a
	b.order = append(b.order, a.Name)
	return nil
}

// SetKey designates the dimension key. A dimension has exactly one key.
func (b *DimensionBuilder) SetKey(col *model.Column) error {
	if b.key != nil && b.key != col {
		return apperr.ErrNameConflict.New("dimension key for", b.name)
	}
	b.key = col
	return nil
}

// Build resolves every attribute's parent chain and returns a new
// dimension. Each leaf attribute yields one hierarchy whose levels run from
// the root of its chain down to the leaf.
func (b *DimensionBuilder) Build() (*model.Dimension, error) {
	isParent := make(map[string]bool, len(b.order))
	for _, name := range b.order {
		if p := b.byName[name].Parent; p != "" {
			isParent[p] = true
		}
	}

	dim := &model.Dimension{Name: b.name, Key: b.key}
	for _, name := range b.order {
		chain, err := Chain(b.byName, name)
		if err != nil {
			return nil, err
		}
		if isParent[name] {
			continue
		}
		h := &model.Hierarchy{
			Name:  hierarchyName(chain, b.name, len(dim.Hierarchies)),
			Table: b.table,
		}
		for _, a := range chain {
			h.Levels = append(h.Levels, BuildLevel(a))
		}
		dim.Hierarchies = append(dim.Hierarchies, h)
	}
	return dim, nil
}

// hierarchyName prefers an explicit hierarchy name on the chain (leaf
// first), then the dimension name for the first hierarchy, then the leaf.
func hierarchyName(chain []Attribute, dimension string, index int) string {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Hierarchy != "" {
			return chain[i].Hierarchy
		}
	}
	if index == 0 {
		return dimension
	}
	return chain[len(chain)-1].Name
}
