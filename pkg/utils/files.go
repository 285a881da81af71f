package utils

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

func ReadFileBytes(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	return bs, errors.Wrapf(err, "unable to read file %s", path)
}

func ParseYaml[T any](bs []byte) (*T, error) {
	var t T
	if err := yaml.UnmarshalStrict(bs, &t); err != nil {
		return nil, errors.Wrapf(err, "unable to unmarshal yaml")
	}
	return &t, nil
}

func ParseYamlFromFile[T any](path string) (*T, error) {
	bs, err := ReadFileBytes(path)
	if err != nil {
		return nil, err
	}
	return ParseYaml[T](bs)
}

// MarshalIndent is a stand-in for json.MarshalIndent which *does not escape HTML*
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent(prefix, indent)
	err := encoder.Encode(v)
	return bytes.TrimRight(buffer.Bytes(), "\n"), errors.Wrapf(err, "unable to encode json")
}
