/*
NAME
  main.go

DESCRIPTION
  orc is a command line driver for the reconstruction toolkit. It builds a
  processing graph over a TBC capture, optionally masks lines, and can
  export a preview PNG, write the recovered audio, or write a per-field
  analysis CSV.

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

// Package main provides the orc command.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/orc/dag"
	"github.com/ausocean/orc/param"
	"github.com/ausocean/orc/preview"
	"github.com/ausocean/orc/stage"
	"github.com/ausocean/orc/stages/audiosink"
	"github.com/ausocean/orc/stages/dropoutanalysis"
	"github.com/ausocean/orc/stages/maskline"
	"github.com/ausocean/orc/stages/tbcsource"
)

// Logging related constants.
const (
	logPath      = "/var/log/orc/orc.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Node IDs of the assembled graph.
const (
	sourceNode dag.NodeID = iota
	maskNode
	audioNode
	analysisNode
)

func main() {
	var (
		tbcPtr      = flag.String("tbc", "", "Path to the .tbc sample file.")
		metaPtr     = flag.String("metadata", "", "Path to the JSON metadata sidecar.")
		pcmPtr      = flag.String("pcm", "", "Optional path to the recovered audio (raw stereo PCM).")
		maskPtr     = flag.String("mask", "", "Optional line mask specification, e.g. F:20.")
		pngPtr      = flag.String("png", "", "Render a preview to this PNG file.")
		framePtr    = flag.Uint64("frame", 0, "Frame index rendered with -png.")
		wavPtr      = flag.String("wav", "", "Write recovered audio to this WAV file.")
		csvPtr      = flag.String("csv", "", "Write per-field analysis to this CSV file.")
		verbosity   = flag.Int("verbosity", int(logging.Info), "Logging verbosity.")
		logToFilePtr = flag.Bool("logfile", false, "Also log to the rotating log file.")
	)
	flag.Parse()

	var w io.Writer = os.Stderr
	if *logToFilePtr {
		fileLog := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		w = io.MultiWriter(os.Stderr, fileLog)
	}
	l := logging.New(int8(*verbosity), w, logSuppress)

	if *tbcPtr == "" || *metaPtr == "" {
		l.Fatal("both -tbc and -metadata are required")
	}

	d, tail, err := buildGraph(*tbcPtr, *metaPtr, *pcmPtr, *maskPtr, *wavPtr, *csvPtr)
	if err != nil {
		l.Fatal("could not build graph", "error", err.Error())
	}
	if !d.Validate() {
		l.Fatal("graph failed validation", "errors", fmt.Sprint(d.ValidationErrors()))
	}

	exec := dag.NewExecutor(l)
	exec.SetProgressCallback(func(node dag.NodeID, current, total int) {
		l.Debug("executing", "node", node, "current", current, "total", total)
	})

	if _, err := exec.Execute(d); err != nil {
		l.Fatal("could not execute graph", "error", err.Error())
	}
	l.Info("graph executed", "cached", exec.CacheSize())

	if *pngPtr != "" {
		r := preview.NewRenderer(d, exec, l)
		r.SetShowDropouts(true)
		if err := r.SavePNG(tail, preview.Frame, *framePtr, *pngPtr, ""); err != nil {
			l.Fatal("could not export PNG", "error", err.Error())
		}
		l.Info("wrote preview", "path", *pngPtr, "frame", *framePtr)
	}

	for _, id := range []dag.NodeID{audioNode, analysisNode} {
		if err := trigger(d, exec, id, l); err != nil {
			l.Fatal("sink failed", "node", id, "error", err.Error())
		}
	}
}

// buildGraph assembles source -> optional mask, plus the requested sinks
// hanging off the tail. It returns the graph and the tail node previews
// should target.
func buildGraph(tbc, meta, pcm, mask, wavOut, csvOut string) (*dag.DAG, dag.NodeID, error) {
	d := dag.New()

	src, err := stage.New(tbcsource.Name)
	if err != nil {
		return nil, dag.NoNode, err
	}
	srcParams := param.Map{
		"tbc_file":      param.NewFilePath(tbc),
		"metadata_file": param.NewFilePath(meta),
	}
	if pcm != "" {
		srcParams["pcm_file"] = param.NewFilePath(pcm)
	}
	if !src.(stage.Parameterized).SetParameters(srcParams) {
		return nil, dag.NoNode, fmt.Errorf("bad source parameters")
	}
	d.AddNode(dag.Node{ID: sourceNode, Stage: src, Parameters: srcParams})
	tail := sourceNode

	if mask != "" {
		ms, err := stage.New(maskline.Name)
		if err != nil {
			return nil, dag.NoNode, err
		}
		maskParams := param.Map{"line_spec": param.NewString(mask)}
		if !ms.(stage.Parameterized).SetParameters(maskParams) {
			return nil, dag.NoNode, fmt.Errorf("bad mask specification: %s", mask)
		}
		d.AddNode(dag.Node{
			ID:         maskNode,
			Stage:      ms,
			Parameters: maskParams,
			Inputs:     []dag.Binding{{Node: tail, Output: 0}},
		})
		tail = maskNode
	}

	if wavOut != "" {
		as, err := stage.New(audiosink.Name)
		if err != nil {
			return nil, dag.NoNode, err
		}
		p := param.Map{"output_path": param.NewFilePath(wavOut)}
		as.(stage.Parameterized).SetParameters(p)
		d.AddNode(dag.Node{ID: audioNode, Stage: as, Parameters: p, Inputs: []dag.Binding{{Node: tail, Output: 0}}})
	}

	if csvOut != "" {
		cs, err := stage.New(dropoutanalysis.Name)
		if err != nil {
			return nil, dag.NoNode, err
		}
		p := param.Map{"output_path": param.NewFilePath(csvOut)}
		cs.(stage.Parameterized).SetParameters(p)
		d.AddNode(dag.Node{ID: analysisNode, Stage: cs, Parameters: p, Inputs: []dag.Binding{{Node: tail, Output: 0}}})
	}

	d.SetOutputNodes([]dag.NodeID{tail})
	return d, tail, nil
}

// trigger runs the triggerable sink at a node, if the graph has one,
// reporting its progress on stderr.
func trigger(d *dag.DAG, exec *dag.Executor, id dag.NodeID, l logging.Logger) error {
	idx := d.NodeIndex()
	i, ok := idx[id]
	if !ok {
		return nil
	}
	n := d.Nodes()[i]
	sink, ok := n.Stage.(stage.Triggerable)
	if !ok {
		return nil
	}

	outputs, err := exec.ExecuteToNode(d, n.Inputs[0].Node)
	if err != nil {
		return err
	}
	inputs := outputs[n.Inputs[0].Node]

	sink.SetProgressCallback(func(current, total uint64, message string) {
		if total != 0 && current%25 == 0 {
			fmt.Fprintf(os.Stderr, "%s: %d/%d %s\n", n.Stage.Info().DisplayName, current, total, message)
		}
	})
	if !sink.Trigger(inputs, n.Parameters, stage.NewObservations()) {
		return fmt.Errorf("%s", sink.TriggerStatus())
	}
	l.Info("sink finished", "node", id, "status", sink.TriggerStatus())
	return nil
}
