package schema

import (
	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/model"
)

// PlaceAttribute adds a's level to an existing dimension. Unlike
// DimensionBuilder, the parent level must already be present: a parentless
// attribute starts a new hierarchy, a child is appended beneath its parent.
// When the parent is not the last level of its hierarchy, a new hierarchy
// is branched off holding copies of the levels down to the parent.
func PlaceAttribute(dim *model.Dimension, table *model.LogicalTable, a Attribute) error {
	for _, h := range dim.Hierarchies {
		if h.FindLevel(a.Name) >= 0 {
			return apperr.ErrNameConflict.New("attribute", a.Name)
		}
	}

	if a.Parent == "" {
		name := a.Hierarchy
		if name == "" {
			name = dim.Name
		}
		if findHierarchy(dim, name) != nil {
			name = a.Name
		}
		dim.Hierarchies = append(dim.Hierarchies, &model.Hierarchy{
			Name:   name,
			Table:  table,
			Levels: []*model.Level{BuildLevel(a)},
		})
		return nil
	}

	for _, h := range dim.Hierarchies {
		i := h.FindLevel(a.Parent)
		if i < 0 {
			continue
		}
		if i == len(h.Levels)-1 {
			h.Levels = append(h.Levels, BuildLevel(a))
			return nil
		}
		branch := &model.Hierarchy{Name: a.Name, Table: h.Table}
		if a.Hierarchy != "" {
			branch.Name = a.Hierarchy
		}
		for _, l := range h.Levels[:i+1] {
			cp := *l
			branch.Levels = append(branch.Levels, &cp)
		}
		branch.Levels = append(branch.Levels, BuildLevel(a))
		dim.Hierarchies = append(dim.Hierarchies, branch)
		return nil
	}
	return apperr.ErrUnresolvedParent.New(a.Name, a.Parent)
}

func findHierarchy(dim *model.Dimension, name string) *model.Hierarchy {
	for _, h := range dim.Hierarchies {
		if h.Name == name {
			return h
		}
	}
	return nil
}
