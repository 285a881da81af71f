package command

import (
	"math"
)

const loopTolerance = 1e-9

// MaxLoopPoints bounds the number of values a single loop may visit
const MaxLoopPoints = 1_000_000

// Count is the number of values the loop visits, saturating at
// math.MaxInt64.  A zero or non-finite step visits nothing.
func (l *Loop) Count() int64 {
	if l.Step == 0 || math.IsNaN(l.Step) || math.IsInf(l.Step, 0) {
		return 0
	}
	n := math.Floor(math.Abs(l.End-l.Start)/math.Abs(l.Step)+loopTolerance) + 1
	if math.IsNaN(n) || n >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// Value is the i'th value visited.  A positive step walks up from the
// lower bound, a negative step walks down from the upper bound.
func (l *Loop) Value(i int64) float64 {
	size := math.Abs(l.Step)
	if l.Step > 0 {
		return math.Min(l.Start, l.End) + float64(i)*size
	}
	return math.Max(l.Start, l.End) - float64(i)*size
}

// Values lists the values a loop visits, both bounds inclusive.  Loops with
// more than MaxLoopPoints values yield nil; iterate with Count and Value.
func (l *Loop) Values() []float64 {
	count := l.Count()
	if count == 0 || count > MaxLoopPoints {
		return nil
	}
	values := make([]float64, count)
	for i := range values {
		values[i] = l.Value(int64(i))
	}
	return values
}

// WorkUnits counts the log executions performed by running commands once,
// saturating at math.MaxInt64
func WorkUnits(commands []*Command) int64 {
	var total int64
	for _, c := range commands {
		switch c.Type {
		case LogCommandType:
			total = addSaturating(total, 1)
		case LoopCommandType:
			if c.Loop != nil {
				total = addSaturating(total, mulSaturating(c.Loop.Count(), WorkUnits(c.Loop.Body)))
			}
		}
	}
	return total
}

func addSaturating(a int64, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func mulSaturating(a int64, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}
