package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattfenwick/scan-utils/pkg/utils"
)

type CommandType string

const (
	LogCommandType  CommandType = "log"
	LoopCommandType CommandType = "loop"
)

// Command is one step of a scan.  Exactly one of Log or Loop is set, matching Type.
type Command struct {
	Type CommandType `json:"type" yaml:"type"`
	Log  *Log        `json:"log,omitempty" yaml:"log,omitempty"`
	Loop *Loop       `json:"loop,omitempty" yaml:"loop,omitempty"`
}

type Log struct {
	Devices []string `json:"devices" yaml:"devices"`
}

type Loop struct {
	Device string     `json:"device" yaml:"device"`
	Start  float64    `json:"start" yaml:"start"`
	End    float64    `json:"end" yaml:"end"`
	Step   float64    `json:"step" yaml:"step"`
	Body   []*Command `json:"body" yaml:"body"`
}

func NewLogCommand(devices ...string) *Command {
	return &Command{Type: LogCommandType, Log: &Log{Devices: utils.CopySlice(devices)}}
}

func NewLoopCommand(device string, start float64, end float64, step float64, body []*Command) *Command {
	return &Command{
		Type: LoopCommandType,
		Loop: &Loop{Device: device, Start: start, End: end, Step: step, Body: body},
	}
}

func (c *Command) String() string {
	switch c.Type {
	case LogCommandType:
		if c.Log == nil {
			return "Log (missing)"
		}
		quoted := make([]string, len(c.Log.Devices))
		for i, d := range c.Log.Devices {
			quoted[i] = fmt.Sprintf("'%s'", d)
		}
		return fmt.Sprintf("Log %s", strings.Join(quoted, ", "))
	case LoopCommandType:
		if c.Loop == nil {
			return "Loop (missing)"
		}
		return fmt.Sprintf("Loop '%s' = %s ... %s, step %s",
			c.Loop.Device, FormatNumber(c.Loop.Start), FormatNumber(c.Loop.End), FormatNumber(c.Loop.Step))
	default:
		return fmt.Sprintf("Unknown command type '%s'", c.Type)
	}
}

func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Sequence is an ordered, composable list of commands
type Sequence struct {
	commands []*Command
}

func NewSequence(commands ...*Command) *Sequence {
	return &Sequence{commands: commands}
}

// Add appends the commands of child; the child itself is not nested
func (s *Sequence) Add(child *Sequence) *Sequence {
	s.commands = append(s.commands, child.commands...)
	return s
}

func (s *Sequence) Log(devices ...string) *Sequence {
	s.commands = append(s.commands, NewLogCommand(devices...))
	return s
}

func (s *Sequence) Loop(device string, start float64, end float64, step float64, body *Sequence) *Sequence {
	s.commands = append(s.commands, NewLoopCommand(device, start, end, step, body.GetCommands()))
	return s
}

// GetCommands returns the top-level commands, ready to be sent to a scan server
func (s *Sequence) GetCommands() []*Command {
	return utils.CopySlice(s.commands)
}

func (s *Sequence) Len() int {
	return len(s.commands)
}

func (s *Sequence) Dump() string {
	return Dump(s.commands)
}
