/*
NAME
  artifact.go

DESCRIPTION
  artifact.go provides the artifact abstraction exchanged between processing
  stages, together with provenance records and content-addressed identity.

AUTHORS
  Alan Noble <alan@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package artifact defines the immutable value type that flows between
// processing stages. Every artifact carries a content-derived fingerprint
// which doubles as the executor's cache key: equal fingerprints imply
// bit-for-bit equal content.
package artifact

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"

	"github.com/ausocean/orc/param"
)

// Artifact is the unit of exchange between stages. Artifacts are immutable
// after publication and may be held by many consumers simultaneously; all
// read methods are safe for concurrent use.
type Artifact interface {
	// ID returns the content-derived fingerprint string.
	ID() string

	// TypeName returns a concrete-type discriminator used for dynamic
	// dispatch downcasts.
	TypeName() string

	// Provenance returns the record of how the artifact was produced.
	Provenance() Provenance
}

// Provenance records the producing stage, its version, the parameters it ran
// with and the fingerprints of its input artifacts.
type Provenance struct {
	Stage      string
	Version    string
	Parameters param.Map
	Inputs     []string
}

// ArtifactID computes the deterministic fingerprint of the artifact this
// provenance would produce at the given output index. The preimage covers
// the stage name and version, each parameter's name and canonical value in
// ascending name order, every input fingerprint, and the output index.
func (p Provenance) ArtifactID(output int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n", p.Stage, p.Version)
	names := make([]string, 0, len(p.Parameters))
	for name := range p.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(h, "%s=%s\n", name, p.Parameters[name])
	}
	for _, in := range p.Inputs {
		fmt.Fprintf(h, "<%s\n", in)
	}
	fmt.Fprintf(h, "#%s", strconv.Itoa(output))
	sum := h.Sum(nil)
	return fmt.Sprintf("%s-%x", p.Stage, sum[:8])
}

// Meta implements the Artifact bookkeeping and is embedded by concrete
// artifact types.
type Meta struct {
	id       string
	typeName string
	prov     Provenance
}

// NewMeta returns metadata for the artifact produced at the given output
// index, with its fingerprint derived from the provenance.
func NewMeta(typeName string, prov Provenance, output int) Meta {
	return Meta{id: prov.ArtifactID(output), typeName: typeName, prov: prov}
}

// ID returns the artifact fingerprint.
func (m Meta) ID() string { return m.id }

// TypeName returns the concrete-type discriminator.
func (m Meta) TypeName() string { return m.typeName }

// Provenance returns the production record.
func (m Meta) Provenance() Provenance { return m.prov }
