/*
NAME
  dropoutmap_test.go

DESCRIPTION
  dropoutmap_test.go tests the dropout map grammar codec and the hint
  override representation.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dropoutmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

func source(tag string, dropouts []video.DropoutRegion) *video.MemoryRepresentation {
	fields := make([]video.FieldData, 2)
	for i := range fields {
		samples := make([]uint16, 8*2)
		fields[i] = video.FieldData{
			Descriptor: video.FieldDescriptor{Width: 8, Height: 2},
			Samples:    samples,
			Parity:     &video.ParityHint{IsFirstField: i%2 == 0},
		}
	}
	fields[0].Dropouts = dropouts
	prov := artifact.Provenance{Stage: "tbc_source", Version: "1.0", Parameters: param.Map{"tag": param.NewString(tag)}}
	return video.NewMemoryRepresentation(video.TypeName, prov, 0, fields, nil)
}

func TestParseDropoutMap(t *testing.T) {
	m, err := ParseDropoutMap("[{field:0,add:[{line:10,start:100,end:200}],remove:[{line:15,start:50,end:75}]},{field:3,add:[{line:1,start:2,end:3},{line:4,start:5,end:6}]}]")
	if err != nil {
		t.Fatalf("ParseDropoutMap error: %v", err)
	}
	want := map[video.FieldID]FieldOverrides{
		0: {
			Field:  0,
			Add:    []video.DropoutRegion{{Line: 10, StartSample: 100, EndSample: 200}},
			Remove: []video.DropoutRegion{{Line: 15, StartSample: 50, EndSample: 75}},
		},
		3: {
			Field: 3,
			Add:   []video.DropoutRegion{{Line: 1, StartSample: 2, EndSample: 3}, {Line: 4, StartSample: 5, EndSample: 6}},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("ParseDropoutMap diff:\n%s", diff)
	}
}

func TestParseDropoutMapErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "missing field key", in: "[{add:[]}]"},
		{name: "unterminated", in: "[{field:0"},
		{name: "bad region key", in: "[{field:0,add:[{row:1,start:2,end:3}]}]"},
		{name: "trailing garbage", in: "[{field:0}]x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDropoutMap(tt.in); err == nil {
				t.Errorf("ParseDropoutMap(%q) did not fail", tt.in)
			}
		})
	}
	// Empty input is an empty map.
	m, err := ParseDropoutMap("")
	if err != nil || len(m) != 0 {
		t.Errorf("ParseDropoutMap(\"\") = %v, %v", m, err)
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	in := "[{field:0,add:[{line:10,start:100,end:200}],remove:[{line:15,start:50,end:75}]},{field:2,remove:[{line:0,start:0,end:8}]}]"
	m, err := ParseDropoutMap(in)
	if err != nil {
		t.Fatalf("ParseDropoutMap error: %v", err)
	}
	encoded := EncodeDropoutMap(m)
	m2, err := ParseDropoutMap(encoded)
	if err != nil {
		t.Fatalf("ParseDropoutMap(encoded) error: %v", err)
	}
	if diff := cmp.Diff(m, m2); diff != "" {
		t.Errorf("round trip diff:\n%s", diff)
	}
	if encoded != in {
		t.Errorf("EncodeDropoutMap = %q, want %q", encoded, in)
	}
}

func TestExecuteOverrides(t *testing.T) {
	src := source("a", []video.DropoutRegion{
		{Line: 0, StartSample: 1, EndSample: 3},
		{Line: 1, StartSample: 4, EndSample: 6},
	})
	s := New()
	params := param.Map{
		"dropout_map": param.NewString("[{field:0,add:[{line:1,start:0,end:2}],remove:[{line:0,start:1,end:3}]}]"),
	}
	if !s.SetParameters(params) {
		t.Fatal("SetParameters rejected a valid map")
	}

	outs, err := s.Execute([]artifact.Artifact{src}, params, stage.NewObservations())
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	rep := outs[0].(video.Representation)

	want := []video.DropoutRegion{
		{Line: 1, StartSample: 4, EndSample: 6},
		{Line: 1, StartSample: 0, EndSample: 2},
	}
	if diff := cmp.Diff(want, rep.DropoutHints(0)); diff != "" {
		t.Errorf("DropoutHints(0) diff:\n%s", diff)
	}

	// Unmapped fields and sample data pass through.
	if got := rep.DropoutHints(1); got != nil {
		t.Errorf("DropoutHints(1) = %v, want nil", got)
	}
	if diff := cmp.Diff(src.Field(0), rep.Field(0)); diff != "" {
		t.Errorf("sample data modified:\n%s", diff)
	}
}

func TestExecuteMultipleInputs(t *testing.T) {
	a := source("a", nil)
	b := source("b", nil)
	s := New()
	params := param.Map{"dropout_map": param.NewString("[{field:1,add:[{line:0,start:0,end:4}]}]")}

	outs, err := s.Execute([]artifact.Artifact{a, b}, params, stage.NewObservations())
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(outs) != 2 {
		t.Fatalf("Execute returned %d outputs, want 2", len(outs))
	}
	if outs[0].ID() == outs[1].ID() {
		t.Error("sibling outputs share a fingerprint")
	}
	for i, out := range outs {
		rep := out.(video.Representation)
		if got := rep.DropoutHints(1); len(got) != 1 {
			t.Errorf("output %d DropoutHints(1) = %v", i, got)
		}
	}
}

func TestSetParametersRejectsBadMap(t *testing.T) {
	s := New()
	if s.SetParameters(param.Map{"dropout_map": param.NewString("[{bogus}]")}) {
		t.Error("SetParameters accepted a malformed map")
	}
}
