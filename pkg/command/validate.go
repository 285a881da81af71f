package command

import (
	"math"

	"github.com/pkg/errors"
)

func Validate(commands []*Command) error {
	for i, c := range commands {
		if c == nil {
			return errors.Errorf("command %d is nil", i)
		}
		switch c.Type {
		case LogCommandType:
			if c.Log == nil {
				return errors.Errorf("command %d: log command without devices", i)
			}
			for _, device := range c.Log.Devices {
				if device == "" {
					return errors.Errorf("command %d: empty device name in log", i)
				}
			}
		case LoopCommandType:
			loop := c.Loop
			if loop == nil {
				return errors.Errorf("command %d: loop command without loop", i)
			}
			if loop.Device == "" {
				return errors.Errorf("command %d: empty loop device name", i)
			}
			for _, v := range []float64{loop.Start, loop.End, loop.Step} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return errors.Errorf("command %d: loop '%s' has non-finite parameter", i, loop.Device)
				}
			}
			if loop.Step == 0 {
				return errors.Errorf("command %d: loop '%s' has step 0", i, loop.Device)
			}
			if count := loop.Count(); count > MaxLoopPoints {
				return errors.Errorf("command %d: loop '%s' visits %d values, more than the maximum of %d", i, loop.Device, count, MaxLoopPoints)
			}
			if err := Validate(loop.Body); err != nil {
				return errors.Wrapf(err, "in body of loop '%s'", loop.Device)
			}
		default:
			return errors.Errorf("command %d: unrecognized command type '%s'", i, c.Type)
		}
	}
	return nil
}
