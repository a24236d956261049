/*
NAME
  store.go

DESCRIPTION
  store.go provides a parameter store embedded by parameterized stages,
  implementing validated set/get against the stage's descriptors.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stage

import "github.com/ausocean/orc/param"

// ParamStore holds a stage's current parameter values and the diagnostic
// from the last rejected set. Stages embed it and implement SetParameters
// by calling Set with their own descriptors.
type ParamStore struct {
	vals    param.Map
	lastErr error
}

// Parameters returns a copy of the current values.
func (s *ParamStore) Parameters() param.Map { return s.vals.Clone() }

// Set validates the given values against descs and merges them over the
// current values, returning false and keeping the old values if any
// parameter is invalid. The diagnostic is available from ValidationError.
func (s *ParamStore) Set(descs []param.Descriptor, m param.Map) bool {
	merged := s.vals.Clone()
	if merged == nil {
		merged = make(param.Map)
	}
	for k, v := range m {
		merged[k] = v
	}
	if err := param.Validate(merged, descs); err != nil {
		s.lastErr = err
		return false
	}
	s.vals = merged
	s.lastErr = nil
	return true
}

// ValidationError returns the diagnostic from the last rejected Set, or nil.
func (s *ParamStore) ValidationError() error { return s.lastErr }

// Value returns the current value of a named parameter, consulting the
// descriptor defaults when unset.
func (s *ParamStore) Value(descs []param.Descriptor, name string) (param.Value, bool) {
	if v, ok := s.vals[name]; ok {
		return v, true
	}
	for _, d := range descs {
		if d.Name == name && d.Constraints.Default != nil {
			return *d.Constraints.Default, true
		}
	}
	return param.Value{}, false
}
