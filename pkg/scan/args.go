package scan

import (
	"strconv"
	"strings"
)

const DefaultScanName = "Scan"

// ScanArgument is one of NameArg, DeviceName, or *LoopSpec
type ScanArgument interface {
	isScanArgument()
}

type NameArg string

type DeviceName string

// LoopSpec drives Device from Start to End by Step
type LoopSpec struct {
	Device string
	Start  float64
	End    float64
	Step   float64
}

func (NameArg) isScanArgument()    {}
func (DeviceName) isScanArgument() {}
func (*LoopSpec) isScanArgument()  {}

// DecodeLoopSpec accepts (device, start, end) with a step of 1, or (device, start, end, step)
func DecodeLoopSpec(tuple []interface{}) (*LoopSpec, error) {
	if len(tuple) != 3 && len(tuple) != 4 {
		return nil, invalidSpec(tuple, "scan parameters should be ('device', start, end[, step]), got %d elements", len(tuple))
	}
	device, ok := tuple[0].(string)
	if !ok {
		return nil, invalidSpec(tuple, "device must be a string, found %T", tuple[0])
	}
	numbers := []float64{0, 0, 1}
	for i, element := range tuple[1:] {
		number, ok := toFloat(element)
		if !ok {
			return nil, invalidSpec(tuple, "element %d must be a number, found %T", i+1, element)
		}
		numbers[i] = number
	}
	return &LoopSpec{Device: device, Start: numbers[0], End: numbers[1], Step: numbers[2]}, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ClassifyArguments sorts a loosely-typed argument list into ScanArguments.
// A leading string is the scan name; later strings are devices to log.
func ClassifyArguments(args []interface{}) ([]ScanArgument, error) {
	var classified []ScanArgument
	for i, arg := range args {
		var scanArg ScanArgument
		switch a := arg.(type) {
		case NameArg:
			if i != 0 {
				return nil, invalidSpec(arg, "scan name must be the first argument, found at position %d", i)
			}
			scanArg = a
		case string:
			if i == 0 {
				scanArg = NameArg(a)
			} else {
				scanArg = DeviceName(a)
			}
		case DeviceName:
			scanArg = a
		case []interface{}:
			spec, err := DecodeLoopSpec(a)
			if err != nil {
				return nil, err
			}
			scanArg = spec
		case LoopSpec:
			spec := a
			scanArg = &spec
		case *LoopSpec:
			if a == nil {
				return nil, invalidSpec(arg, "nil loop specification")
			}
			spec := *a
			scanArg = &spec
		default:
			return nil, invalidSpec(arg, "unrecognized argument of type %T", arg)
		}
		classified = append(classified, scanArg)
	}
	return classified, nil
}

// Arguments is a classified argument list, partitioned by kind with call order preserved
type Arguments struct {
	Name    string
	Loops   []*LoopSpec
	Devices []string
}

func PartitionArguments(args []ScanArgument) *Arguments {
	partitioned := &Arguments{Name: DefaultScanName}
	for _, arg := range args {
		switch a := arg.(type) {
		case NameArg:
			partitioned.Name = string(a)
		case DeviceName:
			partitioned.Devices = append(partitioned.Devices, string(a))
		case *LoopSpec:
			partitioned.Loops = append(partitioned.Loops, a)
		}
	}
	return partitioned
}

// ParseArgument turns command line text into a builder argument:
// "device:start:end[:step]" becomes a loop tuple, anything else a device name.
// Fields which are not numbers stay strings, so that decoding rejects them.
func ParseArgument(text string) interface{} {
	if !strings.Contains(text, ":") {
		return DeviceName(text)
	}
	fields := strings.Split(text, ":")
	tuple := make([]interface{}, len(fields))
	tuple[0] = fields[0]
	for i, field := range fields[1:] {
		number, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			tuple[i+1] = field
		} else {
			tuple[i+1] = number
		}
	}
	return tuple
}
