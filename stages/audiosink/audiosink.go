/*
NAME
  audiosink.go

DESCRIPTION
  audiosink.go provides the analogue audio sink stage. When triggered it
  collects the PCM samples recovered alongside each field of its input and
  writes them out as a WAV file or as headerless raw PCM.

AUTHORS
  David Sutton <davidsutton@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package audiosink provides the triggerable analogue audio sink stage.
// The audio format is 16-bit signed little endian stereo at 44.1 kHz.
package audiosink

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/video"
)

// Name is the canonical stage name.
const Name = "audio_sink"

// Audio format constants.
const (
	sampleRate = 44100
	bitDepth   = 16
	channels   = 2
)

// cancelCheckInterval is how many fields are written between cancellation
// checks.
const cancelCheckInterval = 1

func init() {
	stage.Register(Name, func() stage.Stage { return New() })
}

// Sink writes recovered analogue audio to disk when triggered. A cancelled
// trigger leaves the partially written file on disk; a WAV written that way
// has a truncated header fixup.
type Sink struct {
	stage.ParamStore
	stage.TriggerControl
}

// New returns an audio sink stage.
func New() *Sink { return &Sink{} }

// Version participates in artifact fingerprints.
func (s *Sink) Version() string { return "1.0" }

// Info describes the stage's connection shape.
func (s *Sink) Info() stage.NodeTypeInfo {
	return stage.NodeTypeInfo{
		Type:        stage.Sink,
		Name:        Name,
		DisplayName: "Audio Sink",
		Description: "Write recovered analogue audio to a WAV or raw PCM file",
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
	def := param.NewString("wav")
	return []param.Descriptor{
		{
			Name:           "output_path",
			DisplayName:    "Output Path",
			Description:    "Destination audio file",
			Type:           param.FilePath,
			Constraints:    param.Constraints{Required: true},
			FileExtensions: []string{".wav", ".pcm"},
		},
		{
			Name:        "format",
			DisplayName: "Format",
			Description: "Container for the written audio",
			Type:        param.String,
			Constraints: param.Constraints{Allowed: []string{"wav", "pcm"}, Default: &def},
		},
	}
}

// SetParameters validates and applies the given values.
func (s *Sink) SetParameters(m param.Map) bool {
	return s.Set(s.ParameterDescriptors(video.SystemUnknown, ""), m)
}

// Execute validates the input; a sink produces no artifacts. The I/O
// happens in Trigger.
func (s *Sink) Execute(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) ([]artifact.Artifact, error) {
	if len(inputs) != 1 {
		return nil, errors.Errorf("want 1 input, got %d", len(inputs))
	}
	if _, ok := inputs[0].(video.Representation); !ok {
		return nil, errors.New("input is not a field representation")
	}
	return nil, nil
}

// Trigger writes the input's audio to the configured file, reporting
// per-field progress and checking for cancellation every field.
func (s *Sink) Trigger(inputs []artifact.Artifact, params param.Map, obs *stage.Observations) bool {
	s.Begin("writing audio")
	ok := s.trigger(inputs, params)
	return ok
}

func (s *Sink) trigger(inputs []artifact.Artifact, params param.Map) bool {
	if len(inputs) != 1 {
		s.End("failed: want exactly one input")
		return false
	}
	rep, ok := inputs[0].(video.Representation)
	if !ok {
		s.End("failed: input is not a field representation")
		return false
	}
	src, ok := rep.(video.AudioSource)
	if !ok || !src.HasAudio() {
		s.End("failed: input carries no audio")
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
	format := "wav"
	if v, ok := params["format"]; ok {
		format, _ = v.Str()
	}

	f, err := os.Create(path)
	if err != nil {
		s.End("failed: " + err.Error())
		return false
	}
	defer f.Close()

	var write func(samples []int16) error
	var finish func() error
	switch format {
	case "wav":
		enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
		write = func(samples []int16) error {
			buf := &audio.IntBuffer{
				Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
				SourceBitDepth: bitDepth,
				Data:           make([]int, len(samples)),
			}
			for i, v := range samples {
				buf.Data[i] = int(v)
			}
			return enc.Write(buf)
		}
		finish = enc.Close
	case "pcm":
		write = func(samples []int16) error {
			out := make([]byte, 2*len(samples))
			for i, v := range samples {
				binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
			}
			_, err := f.Write(out)
			return err
		}
		finish = func() error { return nil }
	default:
		s.End("failed: unknown format " + format)
		return false
	}

	total := rep.FieldCount()
	for i := uint64(0); i < total; i++ {
		if i%cancelCheckInterval == 0 && s.Cancelled() {
			s.End(fmt.Sprintf("cancelled after %d of %d fields", i, total))
			return false
		}
		samples := src.FieldAudio(video.FieldID(i))
		if len(samples) != 0 {
			if err := write(samples); err != nil {
				s.End("failed: " + err.Error())
				return false
			}
		}
		s.Progress(i+1, total, fmt.Sprintf("field %d of %d", i+1, total))
	}
	if err := finish(); err != nil {
		s.End("failed: " + err.Error())
		return false
	}
	s.End(fmt.Sprintf("wrote %d fields of audio to %s", total, path))
	return true
}
