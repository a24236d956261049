/*
NAME
  registry.go

DESCRIPTION
  registry.go provides the process-wide stage registry. Stages register a
  factory at init time; the registry is read-only afterwards.

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

import (
	"sort"

	"github.com/pkg/errors"
)

// Factory constructs a fresh stage instance.
type Factory func() Stage

var registry = make(map[string]Factory)

// Register makes a stage constructor available by canonical name. It is
// intended to be called from package init functions and panics on a
// duplicate name, like database/sql driver registration.
func Register(name string, f Factory) {
	if f == nil {
		panic("stage: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("stage: Register called twice for " + name)
	}
	registry[name] = f
}

// New returns a fresh instance of the named stage.
func New(name string) (Stage, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown stage: %s", name)
	}
	return f(), nil
}

// Names returns the canonical names of all registered stages, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info returns the node type info of the named stage.
func Info(name string) (NodeTypeInfo, bool) {
	f, ok := registry[name]
	if !ok {
		return NodeTypeInfo{}, false
	}
	return f().Info(), true
}

// IsConnectionValid reports whether the source stage has outputs to offer
// and the target stage accepts inputs. Full arity checking is performed by
// DAG validation.
func IsConnectionValid(source, target string) bool {
	src, ok := Info(source)
	if !ok {
		return false
	}
	dst, ok := Info(target)
	if !ok {
		return false
	}
	return src.MaxOutputs > 0 && dst.MaxInputs > 0
}
