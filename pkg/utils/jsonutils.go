package utils

import (
	"encoding/json"
	"fmt"
)

// GetNestedString extracts a string from a nested map
func GetNestedString(data map[string]interface{}, keys ...string) (string, error) {
	var current interface{} = data

	for i, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("key %s is not a map", keys[i-1])
		}
		if i == len(keys)-1 {
			// Last key, should be a string
			if str, ok := m[key].(string); ok {
				return str, nil
			}
			return "", fmt.Errorf("key %s is not a string", key)
		}
		current = m[key]
	}

	return "", fmt.Errorf("invalid keys")
}

// GetFirstMapValue returns the first value in a map
func GetFirstMapValue(m map[string]interface{}) (interface{}, error) {
	for _, v := range m {
		return v, nil
	}
	return nil, fmt.Errorf("map is empty")
}

// ParseJSON parses a JSON string into a map
func ParseJSON(jsonStr string) (map[string]interface{}, error) {
	var result map[string]interface{}
	err := json.Unmarshal([]byte(jsonStr), &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return result, nil
}
