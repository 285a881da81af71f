package scan

import (
	"context"
	"fmt"

	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/mattfenwick/scan-utils/pkg/utils"
	"github.com/sirupsen/logrus"
)

// BuildCommands nests the loops so that the first one is outermost.  Each loop
// logs its own device; the remaining devices are logged in the innermost loop.
// Without loops, the devices are logged once.
func BuildCommands(loops []*LoopSpec, devices []string) *command.Sequence {
	if len(loops) == 0 {
		if len(devices) == 0 {
			return command.NewSequence()
		}
		return command.NewSequence().Log(devices...)
	}

	cmds := command.NewSequence()
	pending := utils.CopySlice(devices)
	for i := len(loops) - 1; i >= 0; i-- {
		loop := loops[i]
		pending = utils.Prepend(loop.Device, pending)

		body := command.NewSequence().Log(pending...).Add(cmds)

		cmds = command.NewSequence().Loop(loop.Device, loop.Start, loop.End, loop.Step, body)
		pending = nil
	}
	return cmds
}

// Build classifies and assembles args without submitting anything
func Build(args ...interface{}) (string, *command.Sequence, error) {
	classified, err := ClassifyArguments(args)
	if err != nil {
		return "", nil, err
	}
	partitioned := PartitionArguments(classified)
	return partitioned.Name, BuildCommands(partitioned.Loops, partitioned.Devices), nil
}

// ScanNd is an N-dimensional scan: nested loops that log any number of devices.
//
// Arguments are an optional scan name, loop specifications as
// []interface{}{"device", start, end[, step]} or *LoopSpec, and names of
// further devices to log.  For example:
//
//	scan.Scan(ctx, "My first one", []interface{}{"xpos", 1, 10})
//	scan.Scan(ctx, []interface{}{"xpos", 1, 10}, []interface{}{"ypos", 1, 5, 0.2}, "readback")
type ScanNd struct {
	*Client
	// Interactive dumps each submitted scan and waits for it to finish
	Interactive bool
	// Dumper renders the commands printed in interactive mode
	Dumper func(name string, cmds *command.Sequence) (string, error)
}

func NewScanNd(client *Client, interactive bool) *ScanNd {
	return &ScanNd{Client: client, Interactive: interactive, Dumper: TextDumper}
}

func TextDumper(name string, cmds *command.Sequence) (string, error) {
	return cmds.Dump(), nil
}

func (s *ScanNd) Scan(ctx context.Context, args ...interface{}) (connector.ScanID, error) {
	name, cmds, err := Build(args...)
	if err != nil {
		return connector.NoScanID, err
	}
	logrus.Debugf("built scan '%s':\n%s", name, cmds.Dump())

	id, err := s.Submit(ctx, name, cmds)
	if err != nil {
		return connector.NoScanID, err
	}
	if s.Interactive {
		dump, err := s.Dumper(name, cmds)
		if err != nil {
			return id, err
		}
		fmt.Fprintln(s.Out, dump)
		if _, err := s.WaitUntilDone(ctx, id); err != nil {
			return id, err
		}
	}
	return id, nil
}
