/*
NAME
  label.go

DESCRIPTION
  label.go provides human-readable labels for preview items shown in GUI
  readouts.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package preview

import "fmt"

// ItemDisplayInfo carries the components of a preview item label so a GUI
// can arrange them itself. Numbers are 1-based; the field pair is zero when
// not applicable.
type ItemDisplayInfo struct {
	TypeName     string
	Number       uint64
	Total        uint64
	FirstField   uint64
	SecondField  uint64
	HasFieldInfo bool
}

// ItemDisplayInfo returns label components for one preview item. For frame
// types the composing field numbers are included; the reversed weave shows
// the pair swapped.
func (r *Renderer) ItemDisplayInfo(t OutputType, index, total uint64) ItemDisplayInfo {
	info := ItemDisplayInfo{
		TypeName: t.String(),
		Number:   index + 1,
		Total:    total,
	}
	if t == Frame || t == FrameReversed {
		info.HasFieldInfo = true
		a, b := index*2+1, index*2+2
		if t == FrameReversed {
			a, b = b, a
		}
		info.FirstField, info.SecondField = a, b
	}
	return info
}

// ItemLabel formats a preview item label, e.g. "Field 101 / 500",
// "Frame 63 (125-126) / 250" or "Frame (Reversed) 63 (126-125) / 250".
func (r *Renderer) ItemLabel(t OutputType, index, total uint64) string {
	info := r.ItemDisplayInfo(t, index, total)
	if info.HasFieldInfo {
		return fmt.Sprintf("%s %d (%d-%d) / %d", info.TypeName, info.Number, info.FirstField, info.SecondField, info.Total)
	}
	return fmt.Sprintf("%s %d / %d", info.TypeName, info.Number, info.Total)
}
