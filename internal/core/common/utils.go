package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when a response holds no '{'...'}' span.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// ExtractJSONObject returns the outermost {...} span of an LLM response,
// dropping markdown fences or prose the model wrapped around it.
func ExtractJSONObject(response string) (string, error) {
	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return response[start : end+1], nil
}

// ParseJSON unmarshals the JSON object embedded in response into T.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr, err := ExtractJSONObject(response)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}
