/*
NAME
  dropoutmap.go

DESCRIPTION
  dropoutmap.go provides the dropout map stage: manual per-field overrides
  of dropout hints. Users add dropouts the detector missed, remove false
  positives, or adjust boundaries; the sample data itself never changes.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dropoutmap provides the dropout hint override transform stage
// and the textual dropout map codec shared with graph editors.
//
// The map grammar is a compact bracketed form with unquoted keys:
//
//	[{field:0,add:[{line:10,start:100,end:200}],remove:[{line:15,start:50,end:75}]}]
//
// When several inputs are bound, the same map applies to each, producing
// one output per input.
package dropoutmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// Name is the canonical stage name.
const Name = "dropout_map"

func init() {
	stage.Register(Name, func() stage.Stage { return New() })
}

// FieldOverrides are the dropout modifications for one field.
type FieldOverrides struct {
	Field  video.FieldID
	Add    []video.DropoutRegion
	Remove []video.DropoutRegion
}

// ParseDropoutMap parses the dropout map grammar into per-field overrides.
func ParseDropoutMap(s string) (map[video.FieldID]FieldOverrides, error) {
	p := &parser{src: stripSpace(s)}
	out := make(map[video.FieldID]FieldOverrides)
	if p.src == "" {
		return out, nil
	}
	p.expect('[')
	for !p.peek(']') {
		fo, err := p.entry()
		if err != nil {
			return nil, err
		}
		out[fo.Field] = fo
		if !p.peek(']') {
			p.expect(',')
		}
	}
	p.expect(']')
	if p.err != nil {
		return nil, p.err
	}
	if p.pos != len(p.src) {
		return nil, errors.Errorf("trailing input in dropout map at offset %d", p.pos)
	}
	return out, nil
}

// EncodeDropoutMap renders overrides back into the grammar, fields in
// ascending order with empty lists omitted. Parsing the result yields the
// same overrides.
func EncodeDropoutMap(m map[video.FieldID]FieldOverrides) string {
	ids := make([]video.FieldID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteByte('[')
	for i, id := range ids {
		if i != 0 {
			b.WriteByte(',')
		}
		fo := m[id]
		fmt.Fprintf(&b, "{field:%d", fo.Field)
		if len(fo.Add) != 0 {
			b.WriteString(",add:")
			encodeRegions(&b, fo.Add)
		}
		if len(fo.Remove) != 0 {
			b.WriteString(",remove:")
			encodeRegions(&b, fo.Remove)
		}
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

func encodeRegions(b *strings.Builder, regions []video.DropoutRegion) {
	b.WriteByte('[')
	for i, r := range regions {
		if i != 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "{line:%d,start:%d,end:%d}", r.Line, r.StartSample, r.EndSample)
	}
	b.WriteByte(']')
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}

// parser is a minimal cursor over the stripped map text.
type parser struct {
	src string
	pos int
	err error
}

func (p *parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = errors.Errorf("dropout map: "+format+" at offset %d", append(args, p.pos)...)
	}
}

func (p *parser) expect(c byte) {
	if p.err != nil {
		return
	}
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		p.fail("expected %q", string(c))
		return
	}
	p.pos++
}

func (p *parser) peek(c byte) bool {
	return p.err == nil && p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *parser) word(w string) bool {
	if p.err == nil && strings.HasPrefix(p.src[p.pos:], w) {
		p.pos += len(w)
		return true
	}
	return false
}

func (p *parser) number() int {
	if p.err != nil {
		return 0
	}
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		p.fail("expected number")
		return 0
	}
	n := 0
	neg := false
	for _, c := range p.src[start:p.pos] {
		if c == '-' {
			neg = true
			continue
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}

func (p *parser) entry() (FieldOverrides, error) {
	p.expect('{')
	if !p.word("field:") {
		p.fail("expected field key")
	}
	fo := FieldOverrides{Field: video.FieldID(p.number())}
	for p.peek(',') {
		p.expect(',')
		switch {
		case p.word("add:"):
			fo.Add = p.regions()
		case p.word("remove:"):
			fo.Remove = p.regions()
		default:
			p.fail("expected add or remove key")
		}
	}
	p.expect('}')
	return fo, p.err
}

func (p *parser) regions() []video.DropoutRegion {
	var out []video.DropoutRegion
	p.expect('[')
	for !p.peek(']') {
		p.expect('{')
		if !p.word("line:") {
			p.fail("expected line key")
		}
		var r video.DropoutRegion
		r.Line = p.number()
		p.expect(',')
		if !p.word("start:") {
			p.fail("expected start key")
		}
		r.StartSample = p.number()
		p.expect(',')
		if !p.word("end:") {
			p.fail("expected end key")
		}
		r.EndSample = p.number()
		p.expect('}')
		out = append(out, r)
		if !p.peek(']') {
			p.expect(',')
		}
		if p.err != nil {
			return out
		}
	}
	p.expect(']')
	return out
}

// mappedRepresentation overrides its source's dropout hints with the
// per-field modifications.
type mappedRepresentation struct {
	video.Wrapper
	overrides map[video.FieldID]FieldOverrides
}

// DropoutHints applies removals then additions to the source's hints.
func (r *mappedRepresentation) DropoutHints(id video.FieldID) []video.DropoutRegion {
	src := r.Source.DropoutHints(id)
	fo, ok := r.overrides[id]
	if !ok {
		return src
	}
	return ApplyOverrides(src, fo)
}

// ApplyOverrides removes every exact match in Remove from the source
// regions, then appends the additions.
func ApplyOverrides(src []video.DropoutRegion, fo FieldOverrides) []video.DropoutRegion {
	var out []video.DropoutRegion
	for _, r := range src {
		removed := false
		for _, rm := range fo.Remove {
			if r == rm {
				removed = true
				break
			}
		}
		if !removed {
			out = append(out, r)
		}
	}
	return append(out, fo.Add...)
}

// Stage is the dropout map transform. It accepts one or more inputs and
// produces one overridden output per input.
type Stage struct {
	stage.ParamStore
}

// New returns a dropout map stage.
func New() *Stage { return &Stage{} }

// Version participates in artifact fingerprints.
func (s *Stage) Version() string { return "1.0" }

// Info describes the stage's connection shape.
func (s *Stage) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{
		Type:        stage.Complex,
		Name:        Name,
		DisplayName: "Dropout Map",
		Description: "Override dropout hints per field: add, remove or adjust regions",
		MinInputs:   1,
		MaxInputs:   stage.Unbounded,
		MinOutputs:  1,
		MaxOutputs:  stage.Unbounded,
		Compat:      stage.CompatAll,
	}
}

func (s *Stage) RequiredInputCount() int { return 1 }

// OutputCount is zero: the fan-out is one output per input.
func (s *Stage) OutputCount() int { return 0 }

// ParameterDescriptors returns the stage's schema.
func (s *Stage) ParameterDescriptors(format video.System, sourceType string) []param.Descriptor {
	return []param.Descriptor{
		{
			Name:        "dropout_map",
			DisplayName: "Dropout Map",
			Description: "Per-field dropout overrides, e.g. [{field:0,add:[{line:10,start:100,end:200}]}]",
			Type:        param.String,
			Constraints: param.Constraints{Required: true},
		},
	}
}

// SetParameters validates and applies the given values, additionally
// requiring the dropout map to parse.
func (s *Stage) SetParameters(m param.Map) bool {
	if v, ok := m["dropout_map"]; ok {
		str, _ := v.Str()
		if _, err := ParseDropoutMap(str); err != nil {
			return false
		}
	}
	return s.Set(s.ParameterDescriptors(video.SystemUnknown, ""), m)
}

// Execute wraps each input with the parsed overrides, one output per
// input.
func (s *Stage) Execute(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	if len(inputs) == 0 {
		return nil, errors.New("want at least 1 input")
	}
	str := ""
	if v, ok := params["dropout_map"]; ok {
		str, _ = v.Str()
	}
	overrides, err := ParseDropoutMap(str)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, in := range inputs {
		ids = append(ids, in.ID())
	}
	prov := artifact.Provenance{Stage: Name, Version: s.Version(), Parameters: params, Inputs: ids}

	outs := make([]artifact.Artifact, len(inputs))
	for i, in := range inputs {
		src, ok := in.(video.Representation)
		if !ok {
			return nil, errors.Errorf("input %d is not a field representation", i)
		}
		outs[i] = &mappedRepresentation{Wrapper: video.NewWrapper(prov, i, src), overrides: overrides}
	}
	return outs, nil
}
