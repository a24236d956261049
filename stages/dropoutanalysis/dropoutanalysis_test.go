/*
NAME
  dropoutanalysis_test.go

DESCRIPTION
  dropoutanalysis_test.go tests the per-field analysis CSV sink.

AUTHORS
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dropoutanalysis

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

func analysisSource(n int) *video.MemoryRepresentation {
	fields := make([]video.FieldData, n)
	for i := range fields {
		samples := make([]uint16, 16*4)
		for j := range samples {
			samples[j] = 0x2000
		}
		fields[i] = video.FieldData{
			Descriptor: video.FieldDescriptor{Width: 16, Height: 4},
			Samples:    samples,
			Parity:     &video.ParityHint{IsFirstField: i%2 == 0},
		}
	}
	fields[0].Dropouts = []video.DropoutRegion{
		{Line: 0, StartSample: 2, EndSample: 6},
		{Line: 1, StartSample: 0, EndSample: 3},
	}
	params := &video.Parameters{
		Black16bIRE:      0,
		White16bIRE:      0xffff,
		ColourBurstStart: 1,
		ColourBurstEnd:   5,
		ActiveVideoStart: 6,
		ActiveVideoEnd:   16,
	}
	prov := artifact.Provenance{Stage: "tbc_source", Version: "1.0"}
	return video.NewMemoryRepresentation(video.TypeName, prov, 0, fields, params)
}

func TestTriggerCSV(t *testing.T) {
	src := analysisSource(3)
	s := New()
	path := filepath.Join(t.TempDir(), "analysis.csv")
	params := param.Map{"output_path": param.NewFilePath(path)}
	if !s.SetParameters(params) {
		t.Fatal("SetParameters rejected a valid map")
	}

	if !s.Trigger([]artifact.Artifact{src}, params, stage.NewObservations()) {
		t.Fatalf("Trigger failed: %s", s.TriggerStatus())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not open output: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("could not parse output: %v", err)
	}

	// Header plus one row per field.
	if len(rows) != 4 {
		t.Fatalf("output has %d rows, want 4", len(rows))
	}
	if rows[0][0] != "field" || rows[0][1] != "dropouts" {
		t.Errorf("header = %v", rows[0])
	}

	// Field 0 carries two dropouts totalling seven samples.
	if rows[1][0] != "0" || rows[1][1] != "2" || rows[1][2] != "7" {
		t.Errorf("field 0 row = %v", rows[1])
	}
	// Field 1 is clean.
	if rows[2][1] != "0" || rows[2][2] != "0" {
		t.Errorf("field 1 row = %v", rows[2])
	}
	// Constant luma: mean is the sample value, deviation zero.
	if rows[1][3] != "8192.00" || rows[1][4] != "0.00" {
		t.Errorf("field 0 luma stats = %v, %v", rows[1][3], rows[1][4])
	}
}

func TestTriggerCancellation(t *testing.T) {
	src := analysisSource(100)
	s := New()
	path := filepath.Join(t.TempDir(), "analysis.csv")
	params := param.Map{"output_path": param.NewFilePath(path)}
	if !s.SetParameters(params) {
		t.Fatal("SetParameters rejected a valid map")
	}

	s.SetProgressCallback(func(current, total uint64, message string) {
		if current == 5 {
			s.CancelTrigger()
		}
	})
	if s.Trigger([]artifact.Artifact{src}, params, stage.NewObservations()) {
		t.Fatal("Trigger succeeded despite cancellation")
	}
	if !strings.Contains(s.TriggerStatus(), "cancel") {
		t.Errorf("TriggerStatus() = %q", s.TriggerStatus())
	}
}

func TestTriggerMissingPath(t *testing.T) {
	src := analysisSource(1)
	s := New()
	if s.Trigger([]artifact.Artifact{src}, nil, stage.NewObservations()) {
		t.Fatal("Trigger succeeded with no output path")
	}
}
