package scan

import "fmt"

// InvalidScanSpecificationError reports an argument that is neither a scan
// name, a device name, nor a well-formed loop specification
type InvalidScanSpecificationError struct {
	Value  interface{}
	Reason string
}

func (e *InvalidScanSpecificationError) Error() string {
	return fmt.Sprintf("invalid scan specification %v: %s", e.Value, e.Reason)
}

func invalidSpec(value interface{}, format string, args ...interface{}) error {
	return &InvalidScanSpecificationError{Value: value, Reason: fmt.Sprintf(format, args...)}
}
