/*
NAME
  tbcsource.go

DESCRIPTION
  tbcsource.go provides the source stage that loads time-base-corrected
  field captures: raw 16-bit samples plus a JSON metadata sidecar in the
  legacy ld-decode layout, and optionally the analogue audio recovered
  alongside.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tbcsource provides the TBC capture source stage.
package tbcsource

import (
	"encoding/binary"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// Name is the canonical stage name.
const Name = "tbc_source"

func init() {
	stage.Register(Name, func() stage.Stage { return New() })
}

// metadata mirrors the relevant parts of the .db sidecar written by
// ld-decode alongside a .tbc capture.
type metadata struct {
	VideoParameters struct {
		System                   string  `json:"system"`
		IsSubcarrierLocked       bool    `json:"isSubcarrierLocked"`
		IsWidescreen             bool    `json:"isWidescreen"`
		FieldWidth               int32   `json:"fieldWidth"`
		FieldHeight              int32   `json:"fieldHeight"`
		NumberOfSequentialFields int32   `json:"numberOfSequentialFields"`
		IsFirstFieldFirst        bool    `json:"isFirstFieldFirst"`
		ColourBurstStart         int32   `json:"colourBurstStart"`
		ColourBurstEnd           int32   `json:"colourBurstEnd"`
		ActiveVideoStart         int32   `json:"activeVideoStart"`
		ActiveVideoEnd           int32   `json:"activeVideoEnd"`
		Black16bIre              int32   `json:"black16bIre"`
		White16bIre              int32   `json:"white16bIre"`
		SampleRate               float64 `json:"sampleRate"`
		Fsc                      float64 `json:"fsc"`
		IsMapped                 bool    `json:"isMapped"`
		TapeFormat               string  `json:"tapeFormat"`
		GitBranch                string  `json:"gitBranch"`
		GitCommit                string  `json:"gitCommit"`
	} `json:"videoParameters"`
	Fields []struct {
		IsFirstField bool   `json:"isFirstField"`
		FieldHeight  int32  `json:"fieldHeight"`
		FrameNumber  *int32 `json:"frameNumber"`
		DropOuts     struct {
			StartX    []int `json:"startx"`
			EndX      []int `json:"endx"`
			FieldLine []int `json:"fieldLine"`
		} `json:"dropOuts"`
	} `json:"fields"`
}

// Source loads a TBC capture, or republishes a seed representation handed
// to it through the DAG's root inputs.
type Source struct {
	stage.ParamStore
}

// New returns a TBC source stage.
func New() *Source { return &Source{} }

// Version participates in artifact fingerprints.
func (s *Source) Version() string { return "1.0" }

// Info describes the stage's connection shape.
func (s *Source) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{
		Type:        stage.Source,
		Name:        Name,
		DisplayName: "TBC Source",
		Description: "Load a time-base-corrected capture: .tbc samples plus JSON metadata",
		MinInputs:   0,
		MaxInputs:   0,
		MinOutputs:  1,
		MaxOutputs:  1,
		Compat:      stage.CompatAll,
	}
}

func (s *Source) RequiredInputCount() int { return 0 }
func (s *Source) OutputCount() int        { return 1 }

// ParameterDescriptors returns the stage's schema. The file parameters are
// not required because a seed artifact may be supplied instead.
func (s *Source) ParameterDescriptors(format video.System, sourceType string) []param.Descriptor {
	return []param.Descriptor{
		{
			Name:           "tbc_file",
			DisplayName:    "TBC File",
			Description:    "Path to the raw 16-bit field sample file",
			Type:           param.FilePath,
			FileExtensions: []string{".tbc"},
		},
		{
			Name:           "metadata_file",
			DisplayName:    "Metadata File",
			Description:    "Path to the JSON metadata sidecar",
			Type:           param.FilePath,
			FileExtensions: []string{".db", ".json"},
		},
		{
			Name:           "pcm_file",
			DisplayName:    "Audio File",
			Description:    "Optional path to the recovered analogue audio (raw 16-bit stereo PCM)",
			Type:           param.FilePath,
			FileExtensions: []string{".pcm"},
		},
	}
}

// SetParameters validates and applies the given values.
func (s *Source) SetParameters(m param.Map) bool {
	return s.Set(s.ParameterDescriptors(video.SystemUnknown, ""), m)
}

// Execute produces the capture as a field representation. When the DAG
// carries a seed representation in its root inputs, the source republishes
// it under its own provenance; otherwise it loads the files named by the
// stage parameters. Decoded VBI frame numbers are published as
// observations keyed by the output's fingerprint.
func (s *Source) Execute(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	prov := artifact.Provenance{Stage: Name, Version: s.Version(), Parameters: params, Inputs: nil}

	if len(inputs) != 0 {
		seed, ok := inputs[0].(video.Representation)
		if !ok {
			return nil, errors.New("seed artifact is not a field representation")
		}
		prov.Inputs = []string{seed.ID()}
		w := video.NewWrapper(prov, 0, seed)
		out := &w
		publishVBI(obs, out)
		return []artifact.Artifact{out}, nil
	}

	tbcPath, ok := stringParam(params, "tbc_file")
	if !ok {
		return nil, errors.New("no seed artifact and no tbc_file parameter")
	}
	metaPath, ok := stringParam(params, "metadata_file")
	if !ok {
		return nil, errors.New("no metadata_file parameter")
	}

	rep, err := load(tbcPath, metaPath, params, prov)
	if err != nil {
		return nil, err
	}
	publishVBI(obs, rep)
	return []artifact.Artifact{rep}, nil
}

func stringParam(m param.Map, name string) (string, bool) {
	v, ok := m[name]
	if !ok {
		return "", false
	}
	return v.Str()
}

// load reads the metadata sidecar and sample file into an in-memory
// representation.
func load(tbcPath, metaPath string, params param.Map, prov artifact.Provenance) (*video.MemoryRepresentation, error) {
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not read metadata file")
	}
	var md metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil, errors.Wrap(err, "could not parse metadata file")
	}

	samples, err := os.ReadFile(tbcPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not read tbc file")
	}

	vp := convertParameters(md)
	fields := make([]video.FieldData, len(md.Fields))
	off := 0
	for i, fm := range md.Fields {
		h := int(fm.FieldHeight)
		if h == 0 {
			h = int(md.VideoParameters.FieldHeight)
		}
		w := int(md.VideoParameters.FieldWidth)
		n := w * h
		if off+2*n > len(samples) {
			return nil, errors.Errorf("tbc file truncated at field %d", i)
		}
		data := make([]uint16, n)
		for j := range data {
			data[j] = binary.LittleEndian.Uint16(samples[off+2*j:])
		}
		off += 2 * n

		fd := video.FieldData{
			Descriptor: video.FieldDescriptor{Width: w, Height: h},
			Samples:    data,
			Parity:     &video.ParityHint{IsFirstField: fm.IsFirstField},
			VBIFrame:   fm.FrameNumber,
		}
		for k := range fm.DropOuts.StartX {
			if k >= len(fm.DropOuts.EndX) || k >= len(fm.DropOuts.FieldLine) {
				break
			}
			fd.Dropouts = append(fd.Dropouts, video.DropoutRegion{
				Line:        fm.DropOuts.FieldLine[k],
				StartSample: fm.DropOuts.StartX[k],
				EndSample:   fm.DropOuts.EndX[k],
			})
		}
		fields[i] = fd
	}

	if pcmPath, ok := stringParam(params, "pcm_file"); ok && pcmPath != "" && len(fields) != 0 {
		if err := loadAudio(pcmPath, fields); err != nil {
			return nil, err
		}
	}

	return video.NewMemoryRepresentation(video.TypeName, prov, 0, fields, &vp), nil
}

// loadAudio distributes the raw stereo PCM stream evenly over the fields.
func loadAudio(path string, fields []video.FieldData) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "could not read pcm file")
	}
	total := len(raw) / 2
	per := total / len(fields)
	// Keep whole stereo sample pairs per field.
	per -= per % 2
	for i := range fields {
		start := i * per
		end := start + per
		if i == len(fields)-1 {
			end = total - total%2
		}
		audio := make([]int16, end-start)
		for j := range audio {
			audio[j] = int16(binary.LittleEndian.Uint16(raw[(start+j)*2:]))
		}
		fields[i].Audio = audio
	}
	return nil
}

func convertParameters(md metadata) video.Parameters {
	v := md.VideoParameters
	system := video.SystemUnknown
	switch v.System {
	case "NTSC":
		system = video.NTSC
	case "PAL":
		system = video.PAL
	}
	return video.Parameters{
		System:             system,
		IsSubcarrierLocked: v.IsSubcarrierLocked,
		IsWidescreen:       v.IsWidescreen,
		FieldWidth:         v.FieldWidth,
		FieldHeight:        v.FieldHeight,
		NumberOfSeqFields:  v.NumberOfSequentialFields,
		IsFirstFieldFirst:  v.IsFirstFieldFirst,
		ColourBurstStart:   v.ColourBurstStart,
		ColourBurstEnd:     v.ColourBurstEnd,
		ActiveVideoStart:   v.ActiveVideoStart,
		ActiveVideoEnd:     v.ActiveVideoEnd,
		Black16bIRE:        v.Black16bIre,
		White16bIRE:        v.White16bIre,
		SampleRate:         v.SampleRate,
		FSC:                v.Fsc,
		IsMapped:           v.IsMapped,
		TapeFormat:         v.TapeFormat,
		Decoder:            "ld-decode",
		GitBranch:          v.GitBranch,
		GitCommit:          v.GitCommit,
	}
}

// publishVBI records the capture's decoded frame numbers for downstream
// stages such as source alignment.
func publishVBI(obs *stage.Observations, rep video.Representation) {
	if obs == nil {
		return
	}
	src, ok := rep.(video.VBISource)
	if !ok {
		return
	}
	for i := uint64(0); i < rep.FieldCount(); i++ {
		if n, ok := src.VBIFrameNumber(video.FieldID(i)); ok {
			obs.Publish(stage.Observation{
				Kind:     stage.ObsVBIFrameNumber,
				Source:   rep.ID(),
				Field:    video.FieldID(i),
				HasField: true,
				Value:    n,
			})
		}
	}
}
