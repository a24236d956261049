/*
NAME
  descriptor.go

DESCRIPTION
  descriptor.go provides parameter descriptors and validation of parameter
  maps against them.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package param

import (
	"fmt"
)

// Dependency makes a parameter apply only when a parent parameter holds one
// of the allowed values (canonical form).
type Dependency struct {
	Parent  string
	Allowed []string
}

// Constraints bound the values a parameter may take.
type Constraints struct {
	Min, Max *Value // Numeric bounds, inclusive.
	Default  *Value
	Allowed  []string // Enumerated allowed strings.
	Required bool
}

// Descriptor describes one parameter of a stage's schema.
type Descriptor struct {
	Name        string
	DisplayName string
	Description string
	Type        Type
	Constraints Constraints
	DependsOn   *Dependency
	// FileExtensions hints acceptable extensions for FilePath parameters,
	// e.g. []string{".wav"}.
	FileExtensions []string
}

// typeMatches reports whether a value can be assigned to a descriptor of
// type t. Plain strings are acceptable for file path parameters.
func typeMatches(v Value, t Type) bool {
	if v.Type() == t {
		return true
	}
	return t == FilePath && v.Type() == String
}

// numCompare compares two numeric values of the same kind, returning a
// negative, zero or positive result.
func numCompare(a, b Value) int {
	switch a.Type() {
	case Float64:
		switch {
		case a.flt < b.flt:
			return -1
		case a.flt > b.flt:
			return 1
		}
		return 0
	default:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
}

// find returns the descriptor with the given name.
func find(descs []Descriptor, name string) (Descriptor, bool) {
	for _, d := range descs {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// applies reports whether a descriptor's dependency is satisfied by m.
func applies(d Descriptor, m Map) bool {
	if d.DependsOn == nil {
		return true
	}
	pv, ok := m[d.DependsOn.Parent]
	if !ok {
		return false
	}
	for _, allowed := range d.DependsOn.Allowed {
		if pv.String() == allowed {
			return true
		}
	}
	return false
}

// Validate checks a parameter map against a schema. It rejects unknown
// names, type mismatches and constraint violations, and requires every
// applicable required parameter to be present. A nil error means the map may
// be handed to a stage's execute without further checking.
func Validate(m Map, descs []Descriptor) error {
	for name, v := range m {
		d, ok := find(descs, name)
		if !ok {
			return fmt.Errorf("unknown parameter: %s", name)
		}
		if !typeMatches(v, d.Type) {
			return fmt.Errorf("parameter %s: want type %v, got %v", name, d.Type, v.Type())
		}
		c := d.Constraints
		if c.Min != nil && numCompare(v, *c.Min) < 0 {
			return fmt.Errorf("parameter %s: value %s below minimum %s", name, v, *c.Min)
		}
		if c.Max != nil && numCompare(v, *c.Max) > 0 {
			return fmt.Errorf("parameter %s: value %s above maximum %s", name, v, *c.Max)
		}
		if len(c.Allowed) != 0 {
			found := false
			for _, a := range c.Allowed {
				if v.String() == a {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("parameter %s: value %s not in allowed set", name, v)
			}
		}
	}
	for _, d := range descs {
		if !d.Constraints.Required || !applies(d, m) {
			continue
		}
		if _, ok := m[d.Name]; !ok && d.Constraints.Default == nil {
			return fmt.Errorf("missing required parameter: %s", d.Name)
		}
	}
	return nil
}

// ApplyDefaults returns a copy of m with descriptor defaults filled in for
// absent parameters.
func ApplyDefaults(m Map, descs []Descriptor) Map {
	out := m.Clone()
	if out == nil {
		out = make(Map)
	}
	for _, d := range descs {
		if d.Constraints.Default == nil {
			continue
		}
		if _, ok := out[d.Name]; !ok {
			out[d.Name] = *d.Constraints.Default
		}
	}
	return out
}
