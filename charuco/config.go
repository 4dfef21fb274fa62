package charuco

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadBoardSpec reads a BoardSpec from a YAML file and validates it by
// constructing the board it describes. Board definitions are small and
// checked into version control alongside the calibration run that uses
// them, so YAML keeps them diffable and hand-editable.
func LoadBoardSpec(path string) (*CharucoBoard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("charuco: reading board spec %s: %w", path, err)
	}

	var spec BoardSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("charuco: parsing board spec YAML: %w", err)
	}

	return NewCharucoBoard(spec), nil
}

// SaveBoardSpec writes spec to path as YAML.
func SaveBoardSpec(path string, spec BoardSpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("charuco: marshaling board spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("charuco: writing board spec %s: %w", path, err)
	}
	return nil
}
