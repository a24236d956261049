/*
NAME
  dropoutanalysis.go

DESCRIPTION
  dropoutanalysis.go provides the dropout and burst analysis sink. When
  triggered it walks every field of its input and writes one CSV row per
  field: dropout counts and extents, luma statistics over the active video
  region, and colour burst mean level and dominant spectral bin.

AUTHORS
  Dan Kortschak <dan@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dropoutanalysis provides the triggerable CSV analysis sink.
package dropoutanalysis

import (
	"encoding/csv"
	"fmt"
	"math/cmplx"
	"os"
	"strconv"

	"github.com/mjibson/go-dsp/fft"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// Name is the canonical stage name.
const Name = "dropout_analysis_sink"

// cancelCheckFields is how many fields are analysed between cancellation
// checks.
const cancelCheckFields = 8

func init() {
	stage.Register(Name, func() stage.Stage { return New() })
}

// Sink writes a per-field analysis CSV when triggered.
type Sink struct {
	stage.ParamStore
	stage.TriggerControl
}

// New returns a dropout analysis sink stage.
func New() *Sink { return &Sink{} }

// Version participates in artifact fingerprints.
func (s *Sink) Version() string { return "1.0" }

// Info describes the stage's connection shape.
func (s *Sink) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{
		Type:        stage.Sink,
		Name:        Name,
		DisplayName: "Dropout Analysis",
		Description: "Write per-field dropout and burst statistics to a CSV file",
		MinInputs:   1,
		MaxInputs:   1,
		MinOutputs:  0,
		MaxOutputs:  0,
		Compat:      stage.CompatAll,
	}
}

func (s *Sink) RequiredInputCount() int { return 1 }
func (s *Sink) OutputCount() int        { return 0 }

// ParameterDescriptors returns the stage's schema.
func (s *Sink) ParameterDescriptors(format video.System, sourceType string) []param.Descriptor {
	return []param.Descriptor{
		{
			Name:           "output_path",
			DisplayName:    "Output Path",
			Description:    "Destination CSV file",
			Type:           param.FilePath,
			Constraints:    param.Constraints{Required: true},
			FileExtensions: []string{".csv"},
		},
	}
}

// SetParameters validates and applies the given values.
func (s *Sink) SetParameters(m param.Map) bool {
	return s.Set(s.ParameterDescriptors(video.SystemUnknown, ""), m)
}

// Execute validates the input; a sink produces no artifacts.
func (s *Sink) Execute(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	if len(inputs) != 1 {
		return nil, errors.Errorf("want 1 input, got %d", len(inputs))
	}
	if _, ok := inputs[0].(video.Representation); !ok {
		return nil, errors.New("input is not a field representation")
	}
	return nil, nil
}

// Trigger analyses every field and writes the CSV, reporting progress and
// checking for cancellation every few fields.
func (s *Sink) Trigger(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) bool {
	s.Begin("analysing dropouts")

	if len(inputs) != 1 {
		s.End("failed: want exactly one input")
		return false
	}
	rep, ok := inputs[0].(video.Representation)
	if !ok {
		s.End("failed: input is not a field representation")
		return false
	}
	path := ""
	if v, ok := params["output_path"]; ok {
		path, _ = v.Str()
	}
	if path == "" {
		s.End("failed: no output path")
		return false
	}

	f, err := os.Create(path)
	if err != nil {
		s.End("failed: " + err.Error())
		return false
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"field", "dropouts", "droppedSamples", "lumaMean", "lumaStdDev", "burstMean", "burstPeakBin"}
	if err := w.Write(header); err != nil {
		s.End("failed: " + err.Error())
		return false
	}

	p, _ := rep.Parameters()
	total := rep.FieldCount()
	for i := uint64(0); i < total; i++ {
		if i%cancelCheckFields == 0 && s.Cancelled() {
			w.Flush()
			s.End(fmt.Sprintf("cancelled after %d of %d fields", i, total))
			return false
		}
		row, err := analyseField(rep, video.FieldID(i), p)
		if err != nil {
			s.End("failed: " + err.Error())
			return false
		}
		if err := w.Write(row); err != nil {
			s.End("failed: " + err.Error())
			return false
		}
		s.Progress(i+1, total, fmt.Sprintf("field %d of %d", i+1, total))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.End("failed: " + err.Error())
		return false
	}
	s.End(fmt.Sprintf("wrote analysis of %d fields to %s", total, path))
	return true
}

// analyseField computes one CSV row: dropout totals, luma statistics over
// the active samples, and the colour burst's mean level and dominant
// spectral bin.
func analyseField(rep video.Representation, id video.FieldID, p video.Parameters) ([]string, error) {
	desc, ok := rep.Descriptor(id)
	if !ok {
		return nil, errors.Errorf("no field %d", id)
	}

	dropouts := rep.DropoutHints(id)
	dropped := 0
	for _, do := range dropouts {
		dropped += do.EndSample - do.StartSample
	}

	activeStart, activeEnd := int(p.ActiveVideoStart), int(p.ActiveVideoEnd)
	if activeEnd <= activeStart || activeEnd > desc.Width {
		activeStart, activeEnd = 0, desc.Width
	}
	burstStart, burstEnd := int(p.ColourBurstStart), int(p.ColourBurstEnd)
	if burstEnd <= burstStart || burstEnd > desc.Width {
		burstStart, burstEnd = 0, 0
	}

	var luma, burst []float64
	for y := 0; y < desc.Height; y++ {
		samples, ok := rep.Line(id, y)
		if !ok {
			continue
		}
		for _, v := range samples[activeStart:activeEnd] {
			luma = append(luma, float64(v))
		}
		for _, v := range samples[burstStart:burstEnd] {
			burst = append(burst, float64(v))
		}
	}

	lumaMean, lumaStd := 0.0, 0.0
	if len(luma) != 0 {
		lumaMean = stat.Mean(luma, nil)
		lumaStd = stat.StdDev(luma, nil)
	}

	burstMean := 0.0
	peakBin := 0
	if len(burst) != 0 {
		burstMean = stat.Mean(burst, nil)
		// Dominant bin of the burst spectrum, ignoring DC.
		for i := range burst {
			burst[i] -= burstMean
		}
		spectrum := fft.FFTReal(burst)
		peak := 0.0
		for i := 1; i < len(spectrum)/2; i++ {
			if m := cmplx.Abs(spectrum[i]); m > peak {
				peak = m
				peakBin = i
			}
		}
	}

	return []string{
		strconv.FormatUint(uint64(id), 10),
		strconv.Itoa(len(dropouts)),
		strconv.Itoa(dropped),
		strconv.FormatFloat(lumaMean, 'f', 2, 64),
		strconv.FormatFloat(lumaStd, 'f', 2, 64),
		strconv.FormatFloat(burstMean, 'f', 2, 64),
		strconv.Itoa(peakBin),
	}, nil
}
