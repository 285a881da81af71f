package scan

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLoopSpec(t *testing.T) {
	tests := []struct {
		name     string
		tuple    []interface{}
		expected *LoopSpec
	}{
		{name: "three elements default the step", tuple: []interface{}{"x", 1, 10}, expected: &LoopSpec{Device: "x", Start: 1, End: 10, Step: 1}},
		{name: "four elements pass through", tuple: []interface{}{"y", 1, 5, 0.2}, expected: &LoopSpec{Device: "y", Start: 1, End: 5, Step: 0.2}},
		{name: "negative step", tuple: []interface{}{"y", 1.5, 10, -0.5}, expected: &LoopSpec{Device: "y", Start: 1.5, End: 10, Step: -0.5}},
		{name: "mixed number kinds", tuple: []interface{}{"z", int64(-3), float32(2.5), uint8(2)}, expected: &LoopSpec{Device: "z", Start: -3, End: 2.5, Step: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := DecodeLoopSpec(tt.tuple)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, spec)
		})
	}
}

func TestDecodeLoopSpecRejectsArity(t *testing.T) {
	for _, tuple := range [][]interface{}{
		{},
		{"x"},
		{"x", 1},
		{"x", 1, 2, 3, 4},
		{"x", 1, 2, 3, 4, 5},
	} {
		spec, err := DecodeLoopSpec(tuple)
		assert.Nil(t, spec)

		var invalid *InvalidScanSpecificationError
		require.True(t, errors.As(err, &invalid), "tuple %v", tuple)
		assert.Equal(t, tuple, invalid.Value)
	}
}

func TestDecodeLoopSpecRejectsTypes(t *testing.T) {
	for _, tuple := range [][]interface{}{
		{1, 2, 3},
		{"x", "one", 3},
		{"x", 1, 3, "fast"},
		{"x", nil, 3},
	} {
		_, err := DecodeLoopSpec(tuple)
		var invalid *InvalidScanSpecificationError
		assert.True(t, errors.As(err, &invalid), "tuple %v", tuple)
	}
}

func TestClassifyArguments(t *testing.T) {
	classified, err := ClassifyArguments([]interface{}{
		"My scan",
		[]interface{}{"x", 1, 10},
		"readback",
		DeviceName("other"),
		&LoopSpec{Device: "y", Start: 1, End: 5, Step: 0.2},
	})
	require.NoError(t, err)
	assert.Equal(t, []ScanArgument{
		NameArg("My scan"),
		&LoopSpec{Device: "x", Start: 1, End: 10, Step: 1},
		DeviceName("readback"),
		DeviceName("other"),
		&LoopSpec{Device: "y", Start: 1, End: 5, Step: 0.2},
	}, classified)
}

func TestClassifyArgumentsRejects(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
	}{
		{name: "name after first position", args: []interface{}{"readback", NameArg("late")}},
		{name: "bare number", args: []interface{}{42}},
		{name: "bad tuple", args: []interface{}{[]interface{}{"x", 1}}},
		{name: "nil loop spec", args: []interface{}{(*LoopSpec)(nil)}},
		{name: "map", args: []interface{}{map[string]int{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ClassifyArguments(tt.args)
			var invalid *InvalidScanSpecificationError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestPartitionArguments(t *testing.T) {
	partitioned := PartitionArguments([]ScanArgument{
		DeviceName("a"),
		&LoopSpec{Device: "x", Start: 1, End: 2, Step: 1},
		DeviceName("b"),
	})
	assert.Equal(t, DefaultScanName, partitioned.Name)
	assert.Equal(t, []string{"a", "b"}, partitioned.Devices)
	require.Len(t, partitioned.Loops, 1)
	assert.Equal(t, "x", partitioned.Loops[0].Device)

	named := PartitionArguments([]ScanArgument{NameArg("named")})
	assert.Equal(t, "named", named.Name)
}

func TestParseArgument(t *testing.T) {
	assert.Equal(t, DeviceName("readback"), ParseArgument("readback"))
	assert.Equal(t, []interface{}{"xpos", 1.0, 10.0}, ParseArgument("xpos:1:10"))
	assert.Equal(t, []interface{}{"ypos", 1.0, 5.0, 0.2}, ParseArgument("ypos:1:5:0.2"))
	assert.Equal(t, []interface{}{"ypos", 1.0, "five"}, ParseArgument("ypos:1:five"))

	_, err := DecodeLoopSpec(ParseArgument("ypos:1:five").([]interface{}))
	assert.Error(t, err)
	_, err = DecodeLoopSpec(ParseArgument("ypos:1").([]interface{}))
	assert.Error(t, err)
}
