package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONArray represents a JSONB array column
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// JSONMap represents a JSON object, either a JSONB column or a backend record
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// String returns the string field key, or "" when absent or not a string.
func (j JSONMap) String(key string) string {
	s, _ := j[key].(string)
	return s
}

// Number returns the numeric field key. Numeric strings are accepted.
func (j JSONMap) Number(key string) (float64, bool) {
	switch v := j[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Map returns the nested object at key, or nil.
func (j JSONMap) Map(key string) JSONMap {
	switch m := j[key].(type) {
	case JSONMap:
		return m
	case map[string]interface{}:
		return m
	}
	return nil
}

func scanJSON(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
