// Package schema assembles hierarchy levels, dimensions and dimension usages
// from attribute chains. It has no persistence side effects.
package schema

import (
	"strings"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/model"
)

// Attribute is the resolved form of a Create Attribute annotation: names
// plus the columns they were bound to.
type Attribute struct {
	Name      string
	Parent    string
	Hierarchy string
	Column    *model.Column
	Ordinal   *model.Column
	Caption   *model.Column
	Unique    bool
}

// BuildLevel builds the hierarchy level for a.
func BuildLevel(a Attribute) *model.Level {
	return &model.Level{
		Name:    a.Name,
		Column:  a.Column,
		Ordinal: a.Ordinal,
		Caption: a.Caption,
		Unique:  a.Unique,
	}
}

// Chain walks from the attribute called name up through its parents and
// returns the chain root first. A parent missing from attrs, or a cycle,
// yields ErrUnresolvedParent.
func Chain(attrs map[string]Attribute, name string) ([]Attribute, error) {
	cur, ok := attrs[name]
	if !ok {
		return nil, apperr.ErrNotFound.New("attribute", name)
	}
	var chain []Attribute
	for {
		chain = append(chain, cur)
		if cur.Parent == "" {
			break
		}
		if len(chain) > len(attrs) {
			return nil, apperr.ErrUnresolvedParent.New(name, cur.Parent)
		}
		parent, ok := attrs[cur.Parent]
		if !ok {
			return nil, apperr.ErrUnresolvedParent.New(cur.Name, cur.Parent)
		}
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Beautify turns a physical identifier into a display name:
// "product_name" becomes "PRODUCT NAME".
func Beautify(name string) string {
	return strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(name, "_", " ")))
}
