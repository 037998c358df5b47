// Package model defines the logical and OLAP model types the annotation
// engine builds up.
package model

import "strings"

// DefaultLocale is used when a localized string has no entry for the
// requested locale.
const DefaultLocale = "en_US"

// LocalizedString maps a locale to display text.
type LocalizedString map[string]string

// NewLocalizedString returns a LocalizedString holding text under locale.
func NewLocalizedString(locale, text string) LocalizedString {
	return LocalizedString{locale: text}
}

// Get returns the text for locale. Locales compare case-insensitively
// ("en_us" matches "en_US"); missing locales fall back to DefaultLocale and
// then to any available value.
func (s LocalizedString) Get(locale string) string {
	for k, v := range s {
		if strings.EqualFold(k, locale) {
			return v
		}
	}
	for k, v := range s {
		if strings.EqualFold(k, DefaultLocale) {
			return v
		}
	}
	for _, v := range s {
		return v
	}
	return ""
}

// DataType is the logical type of a column.
type DataType string

// Data types.
const (
	DataTypeString  DataType = "string"
	DataTypeNumeric DataType = "numeric"
	DataTypeDate    DataType = "date"
	DataTypeBoolean DataType = "boolean"
	DataTypeUnknown DataType = "unknown"
)

// Aggregation types understood by measures.
const (
	AggregationSum           = "SUM"
	AggregationCount         = "COUNT"
	AggregationCountDistinct = "COUNT_DISTINCT"
	AggregationAverage       = "AVERAGE"
	AggregationMinimum       = "MINIMUM"
	AggregationMaximum       = "MAXIMUM"
)

// Aggregations lists every supported aggregation type.
var Aggregations = []string{
	AggregationSum,
	AggregationCount,
	AggregationCountDistinct,
	AggregationAverage,
	AggregationMinimum,
	AggregationMaximum,
}

// Column is a logical column bound to a physical one.
type Column struct {
	ID           string          `json:"id" yaml:"id"`
	PhysicalName string          `json:"physical_name" yaml:"physical_name"`
	Name         LocalizedString `json:"name" yaml:"name"`
	DataType     DataType        `json:"data_type" yaml:"data_type"`
}

// LogicalTable is a logical view over one physical table.
type LogicalTable struct {
	ID            string          `json:"id" yaml:"id"`
	PhysicalTable string          `json:"physical_table" yaml:"physical_table"`
	Name          LocalizedString `json:"name" yaml:"name"`
	Columns       []*Column       `json:"columns" yaml:"columns"`
}

// FindColumn looks a column up by id or physical name, case-insensitively.
func (t *LogicalTable) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.ID, name) || strings.EqualFold(c.PhysicalName, name) {
			return c
		}
	}
	return nil
}

// Level is one rung of a hierarchy's drill path.
type Level struct {
	Name    string  `json:"name" yaml:"name"`
	Column  *Column `json:"column" yaml:"column"`
	Ordinal *Column `json:"ordinal,omitempty" yaml:"ordinal,omitempty"`
	Caption *Column `json:"caption,omitempty" yaml:"caption,omitempty"`
	Unique  bool    `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// Hierarchy is an ordered list of levels, root first, over one table.
type Hierarchy struct {
	Name   string        `json:"name" yaml:"name"`
	Table  *LogicalTable `json:"table" yaml:"table"`
	Levels []*Level      `json:"levels" yaml:"levels"`
}

// FindLevel returns the index of the level called name, or -1.
func (h *Hierarchy) FindLevel(name string) int {
	for i, l := range h.Levels {
		if l.Name == name {
			return i
		}
	}
	return -1
}

// Dimension is an OLAP dimension made of one or more hierarchies.
type Dimension struct {
	Name        string       `json:"name" yaml:"name"`
	Key         *Column      `json:"key,omitempty" yaml:"key,omitempty"`
	Hierarchies []*Hierarchy `json:"hierarchies" yaml:"hierarchies"`
}

// DimensionUsage binds a dimension into a cube through a join key.
type DimensionUsage struct {
	Name       string     `json:"name" yaml:"name"`
	Dimension  *Dimension `json:"dimension" yaml:"dimension"`
	ForeignKey *Column    `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
}

// Measure is an aggregated fact column.
type Measure struct {
	Name         string  `json:"name" yaml:"name"`
	Column       *Column `json:"column" yaml:"column"`
	Aggregator   string  `json:"aggregator" yaml:"aggregator"`
	FormatString string  `json:"format_string,omitempty" yaml:"format_string,omitempty"`
}

// Cube is an OLAP cube over a fact table.
type Cube struct {
	Name      string            `json:"name" yaml:"name"`
	FactTable *LogicalTable     `json:"-" yaml:"-"`
	Usages    []*DimensionUsage `json:"dimension_usages" yaml:"dimension_usages"`
	Measures  []*Measure        `json:"measures" yaml:"measures"`
}

// AddUsage appends u and returns its index. Usages are never removed.
func (c *Cube) AddUsage(u *DimensionUsage) int {
	c.Usages = append(c.Usages, u)
	return len(c.Usages) - 1
}

// Usage returns the usage called name, or nil.
func (c *Cube) Usage(name string) *DimensionUsage {
	for _, u := range c.Usages {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Measure returns the measure called name, or nil.
func (c *Cube) Measure(name string) *Measure {
	for _, m := range c.Measures {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Perspective selects which logical model of a workspace is addressed.
type Perspective int

// Perspectives.
const (
	PerspectiveReporting Perspective = iota
	PerspectiveAnalysis
)

func (p Perspective) String() string {
	switch p {
	case PerspectiveReporting:
		return "reporting"
	case PerspectiveAnalysis:
		return "analysis"
	default:
		return "unknown"
	}
}

// LogicalModel groups tables and, for the analysis perspective, cubes.
type LogicalModel struct {
	ID          string          `json:"id" yaml:"id"`
	Name        LocalizedString `json:"name" yaml:"name"`
	Perspective Perspective     `json:"-" yaml:"-"`
	Tables      []*LogicalTable `json:"tables" yaml:"tables"`
	Cubes       []*Cube         `json:"cubes,omitempty" yaml:"cubes,omitempty"`
}
