/*
NAME
  params.go

DESCRIPTION
  params.go provides the video parameter side-channel carried by field
  representations.

AUTHORS
  Alan Noble <alan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package video

// System enumerates the video systems a capture may use.
type System int

const (
	SystemUnknown System = iota
	NTSC
	PAL
)

// String returns the name of the video system.
func (s System) String() string {
	switch s {
	case NTSC:
		return "NTSC"
	case PAL:
		return "PAL"
	}
	return "Unknown"
}

// Parameters describes a time-base-corrected capture. It is read-only
// metadata carried by field representations.
type Parameters struct {
	System              System
	IsSubcarrierLocked  bool
	IsWidescreen        bool
	FieldWidth          int32 // Samples per line.
	FieldHeight         int32 // Lines per field.
	NumberOfSeqFields   int32
	IsFirstFieldFirst   bool
	ColourBurstStart    int32 // Sample indices.
	ColourBurstEnd      int32
	ActiveVideoStart    int32
	ActiveVideoEnd      int32
	FirstActiveFieldLine int32
	LastActiveFieldLine  int32
	FirstActiveFrameLine int32
	LastActiveFrameLine  int32
	Blanking16bIRE      int32 // 16-bit code values.
	Black16bIRE         int32
	White16bIRE         int32
	SampleRate          float64 // Hz.
	FSC                 float64 // Colour subcarrier frequency, Hz.
	IsMapped            bool
	TapeFormat          string
	Decoder             string
	GitBranch           string
	GitCommit           string
	ActiveAreaCropped   bool
}
