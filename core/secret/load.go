package secret

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// LoadCallFields reads call fields from a JSON or YAML file.
func LoadCallFields(path string) (*CallFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCallFields(data)
}

// ParseCallFields decodes call fields from JSON or YAML. JSON input goes
// through the YAML decoder as well, so unquoted numbers are exact only up to
// the uint64 range: larger ones arrive as floats and fail to parse against
// their preimage type. Integer preimages wider than 64 bits must be given as
// strings.
func ParseCallFields(data []byte) (*CallFields, error) {
	var fields CallFields
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("invalid secret data: %w", err)
	}
	return &fields, nil
}
