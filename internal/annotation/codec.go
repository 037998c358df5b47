package annotation

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Annotations are encoded as an envelope carrying the kind tag and the
// variant's own fields under "spec":
//
//	column: PRODUCT_NAME
//	kind: CREATE_ATTRIBUTE
//	spec:
//	  name: Product
//	  dimension: Product Dim

type envelopeJSON struct {
	Column  string          `json:"column"`
	Ordinal int             `json:"ordinal"`
	Kind    Kind            `json:"kind"`
	Spec    json.RawMessage `json:"spec"`
}

func (a Annotation) MarshalJSON() ([]byte, error) {
	if a.Type == nil {
		return nil, fmt.Errorf("annotation: column %s has no type", a.Column)
	}
	spec, err := json.Marshal(a.Type)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{
		Column:  a.Column,
		Ordinal: a.Ordinal,
		Kind:    a.Type.Kind(),
		Spec:    spec,
	})
}

func (a *Annotation) UnmarshalJSON(data []byte) error {
	var env envelopeJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	t, err := New(env.Kind)
	if err != nil {
		return err
	}
	if len(env.Spec) > 0 {
		if err := json.Unmarshal(env.Spec, t); err != nil {
			return fmt.Errorf("annotation: decode %s on %s: %w", env.Kind, env.Column, err)
		}
	}
	*a = Annotation{Column: env.Column, Ordinal: env.Ordinal, Type: t}
	return nil
}

type envelopeYAML struct {
	Column  string    `yaml:"column"`
	Ordinal int       `yaml:"ordinal,omitempty"`
	Kind    Kind      `yaml:"kind"`
	Spec    yaml.Node `yaml:"spec"`
}

func (a Annotation) MarshalYAML() (any, error) {
	if a.Type == nil {
		return nil, fmt.Errorf("annotation: column %s has no type", a.Column)
	}
	var env envelopeYAML
	if err := env.Spec.Encode(a.Type); err != nil {
		return nil, err
	}
	env.Column = a.Column
	env.Ordinal = a.Ordinal
	env.Kind = a.Type.Kind()
	return env, nil
}

func (a *Annotation) UnmarshalYAML(value *yaml.Node) error {
	var env envelopeYAML
	if err := value.Decode(&env); err != nil {
		return err
	}
	t, err := New(env.Kind)
	if err != nil {
		return err
	}
	if !env.Spec.IsZero() {
		if err := env.Spec.Decode(t); err != nil {
			return fmt.Errorf("annotation: decode %s on %s: %w", env.Kind, env.Column, err)
		}
	}
	*a = Annotation{Column: env.Column, Ordinal: env.Ordinal, Type: t}
	return nil
}

// EncodeGroup serialises g for the metadata store.
func EncodeGroup(g *Group) ([]byte, error) {
	return json.Marshal(g)
}

// DecodeGroup parses a group previously written by EncodeGroup.
func DecodeGroup(data []byte) (*Group, error) {
	var g Group
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("annotation: decode group: %w", err)
	}
	return &g, nil
}

// ParseGroupYAML parses a group authored as YAML. Ordinals follow document
// order regardless of what the file says.
func ParseGroupYAML(data []byte) (*Group, error) {
	var g Group
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("annotation: parse group: %w", err)
	}
	for i := range g.Annotations {
		g.Annotations[i].Ordinal = i
	}
	return &g, nil
}

// MarshalGroupYAML renders g in the file format ParseGroupYAML reads.
func MarshalGroupYAML(g *Group) ([]byte, error) {
	return yaml.Marshal(g)
}
