package model

import (
	"github.com/starford/modeler/internal/apperr"
)

// Workspace is the model under construction: a fact table, one logical
// model per perspective and the analysis cube every annotation mutates.
type Workspace struct {
	name      string
	locale    string
	factTable *LogicalTable
	models    map[Perspective]*LogicalModel
}

// NewWorkspace creates a workspace over fact. Both perspectives get the fact
// table; the analysis model gets an empty cube named after the workspace.
func NewWorkspace(name, locale string, fact *LogicalTable) *Workspace {
	if locale == "" {
		locale = DefaultLocale
	}
	reporting := &LogicalModel{
		ID:          name + "_reporting",
		Name:        NewLocalizedString(locale, name),
		Perspective: PerspectiveReporting,
		Tables:      []*LogicalTable{fact},
	}
	analysis := &LogicalModel{
		ID:          name + "_analysis",
		Name:        NewLocalizedString(locale, name),
		Perspective: PerspectiveAnalysis,
		Tables:      []*LogicalTable{fact},
		Cubes:       []*Cube{{Name: name, FactTable: fact}},
	}
	return &Workspace{
		name:      name,
		locale:    locale,
		factTable: fact,
		models: map[Perspective]*LogicalModel{
			PerspectiveReporting: reporting,
			PerspectiveAnalysis:  analysis,
		},
	}
}

// Name returns the workspace (model) name.
func (w *Workspace) Name() string { return w.name }

// Locale returns the locale used to resolve display names.
func (w *Workspace) Locale() string { return w.locale }

// FactTable returns the bound fact table.
func (w *Workspace) FactTable() *LogicalTable { return w.factTable }

// LogicalModel returns the logical model for perspective p.
func (w *Workspace) LogicalModel(p Perspective) *LogicalModel {
	return w.models[p]
}

// Cube returns the analysis cube.
func (w *Workspace) Cube() *Cube {
	return w.models[PerspectiveAnalysis].Cubes[0]
}

// Column looks name up in the fact table.
func (w *Workspace) Column(name string) (*Column, error) {
	if c := w.factTable.FindColumn(name); c != nil {
		return c, nil
	}
	return nil, apperr.ErrMissingColumn.New(name, w.factTable.PhysicalTable)
}

// Dimension returns the local dimension called name, or nil.
func (w *Workspace) Dimension(name string) *Dimension {
	if u := w.Cube().Usage(name); u != nil {
		return u.Dimension
	}
	return nil
}

// EnsureDimension returns the local dimension called name, attaching a new
// empty one to the cube when it does not exist yet.
func (w *Workspace) EnsureDimension(name string) *Dimension {
	if d := w.Dimension(name); d != nil {
		return d
	}
	d := &Dimension{Name: name}
	w.Cube().AddUsage(&DimensionUsage{Name: name, Dimension: d})
	return d
}
