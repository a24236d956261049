/*
NAME
  trigger.go

DESCRIPTION
  trigger.go provides the triggerable sink protocol: cooperative
  cancellation, progress reporting and status for long-running sink I/O.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stage

import (
	"sync"
	"sync/atomic"

	"github.com/ausocean/orc/artifact"
	"github.com/ausocean/orc/param"
)

// ProgressFunc receives progress updates from a running trigger. A total of
// zero means the extent of the job is indeterminate. Across successful calls
// within one trigger, current/total is monotonically non-decreasing.
type ProgressFunc func(current, total uint64, message string)

// Triggerable is the capability of sink stages that perform long-running
// I/O. Trigger blocks its caller for the whole job and must only be invoked
// by one caller at a time; the UI layer is expected to drive it from a
// worker thread of its own.
type Triggerable interface {
	// Trigger performs the full action, returning true on success and
	// false on failure or cancellation.
	Trigger(inputs []artifact.Artifact, params param.Map, obs *Observations) bool

	// TriggerStatus describes the last completed or ongoing operation.
	TriggerStatus() string

	// SetProgressCallback installs the progress receiver.
	SetProgressCallback(ProgressFunc)

	// TriggerInProgress reports whether Trigger is currently running.
	TriggerInProgress() bool

	// CancelTrigger requests cooperative cancellation. The sink checks
	// the flag at natural breakpoints, typically every field or every N
	// fields, and stops as soon as practical. Partially written output
	// is left on disk unless the sink documents otherwise.
	CancelTrigger()
}

// TriggerControl implements the bookkeeping half of Triggerable and is
// embedded by sink stages. The sink calls Begin at the top of Trigger,
// polls Cancelled at its breakpoints, reports through Progress, and calls
// End with a final status.
type TriggerControl struct {
	cancel   atomic.Bool
	running  atomic.Bool
	mu       sync.Mutex
	status   string
	progress ProgressFunc
}

// SetProgressCallback installs the progress receiver.
func (c *TriggerControl) SetProgressCallback(f ProgressFunc) {
	c.mu.Lock()
	c.progress = f
	c.mu.Unlock()
}

// TriggerInProgress reports whether a trigger is running.
func (c *TriggerControl) TriggerInProgress() bool { return c.running.Load() }

// CancelTrigger sets the cancellation flag polled by the sink.
func (c *TriggerControl) CancelTrigger() { c.cancel.Store(true) }

// TriggerStatus returns the last recorded status message.
func (c *TriggerControl) TriggerStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Begin marks the trigger as running and clears any stale cancellation.
func (c *TriggerControl) Begin(status string) {
	c.cancel.Store(false)
	c.SetStatus(status)
	c.running.Store(true)
}

// End records the final status and marks the trigger as finished.
func (c *TriggerControl) End(status string) {
	c.SetStatus(status)
	c.running.Store(false)
}

// Cancelled reports whether cancellation has been requested.
func (c *TriggerControl) Cancelled() bool { return c.cancel.Load() }

// SetStatus records a status message.
func (c *TriggerControl) SetStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// Progress forwards a progress report to the installed callback, if any.
func (c *TriggerControl) Progress(current, total uint64, message string) {
	c.mu.Lock()
	f := c.progress
	c.mu.Unlock()
	if f != nil {
		f(current, total, message)
	}
}
