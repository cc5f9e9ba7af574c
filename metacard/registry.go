// Package metacard holds the catalog record model and the attribute type
// registry that describes how each record attribute should be interpreted.
package metacard

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AttributeType is the declared type of a metacard attribute.
type AttributeType string

const (
	TypeString   AttributeType = "STRING"
	TypeDate     AttributeType = "DATE"
	TypeBoolean  AttributeType = "BOOLEAN"
	TypeGeometry AttributeType = "GEOMETRY"
	TypeLong     AttributeType = "LONG"
	TypeDouble   AttributeType = "DOUBLE"
	TypeFloat    AttributeType = "FLOAT"
	TypeInteger  AttributeType = "INTEGER"
	TypeShort    AttributeType = "SHORT"
	TypeXML      AttributeType = "XML"
	TypeBinary   AttributeType = "BINARY"
	TypeObject   AttributeType = "OBJECT"
)

// IsNumeric reports whether values of this type are numbers.
func (t AttributeType) IsNumeric() bool {
	switch t {
	case TypeLong, TypeDouble, TypeFloat, TypeInteger, TypeShort:
		return true
	}
	return false
}

// AttributeDefinition describes a single attribute known to the catalog.
type AttributeDefinition struct {
	ID          string        `json:"id" yaml:"id" mapstructure:"id"`
	Type        AttributeType `json:"type" yaml:"type" mapstructure:"type"`
	Multivalued bool          `json:"multivalued" yaml:"multivalued" mapstructure:"multivalued"`
	Hidden      bool          `json:"hidden" yaml:"hidden" mapstructure:"hidden"`
	ReadOnly    bool          `json:"readOnly" yaml:"readOnly" mapstructure:"readOnly"`
	Alias       string        `json:"alias,omitempty" yaml:"alias,omitempty" mapstructure:"alias"`
}

// Registry maps attribute names to their definitions. It is owned by
// whatever keeps it in sync with the metadata service; evaluation only reads it.
type Registry map[string]AttributeDefinition

// Lookup returns the definition for name.
func (r Registry) Lookup(name string) (AttributeDefinition, bool) {
	def, ok := r[name]
	return def, ok
}

// TypeOf returns the declared type of name, or "" when it is unknown.
func (r Registry) TypeOf(name string) AttributeType {
	return r[name].Type
}

// AttributesOfType returns the sorted names of every attribute declared with t.
func (r Registry) AttributesOfType(t AttributeType) []string {
	var names []string
	for name, def := range r {
		if def.Type == t {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// LoadRegistry decodes a registry from YAML or JSON. The document is a
// mapping of attribute name to definition; the ID of each definition is
// taken from its key when omitted.
func LoadRegistry(r io.Reader) (Registry, error) {
	raw := map[string]AttributeDefinition{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return Registry{}, nil
		}
		return nil, errors.Wrap(err, "decoding attribute registry")
	}

	reg := make(Registry, len(raw))
	for name, def := range raw {
		if def.ID == "" {
			def.ID = name
		}
		reg[name] = def
	}
	return reg, nil
}

// LoadRegistryFile reads a registry from the named file.
func LoadRegistryFile(path string) (Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening registry %s", path)
	}
	defer f.Close()

	return LoadRegistry(f)
}
