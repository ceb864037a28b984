package models

import (
	"encoding/json"
	"fmt"
)

// scanJSON decodes a JSONB column value into dest. Nil and empty
// payloads leave dest at its zero value.
func scanJSON(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}

func marshalJSON(src interface{}, label string) ([]byte, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", label, err)
	}
	return data, nil
}
