// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output renders record sequences as JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

// ParseFormat validates a user-supplied format name. Empty means JSON.
func ParseFormat(s string) (types.OutputFormat, error) {
	switch types.OutputFormat(s) {
	case "", types.OutputJSON:
		return types.OutputJSON, nil
	case types.OutputYAML:
		return types.OutputYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use json or yaml", s)
	}
}

// Write renders v to w. A nil slice is written as an empty list.
func Write(w io.Writer, format types.OutputFormat, v any) error {
	v = emptyForNil(v)

	switch format {
	case types.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case types.OutputJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func emptyForNil(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return reflect.MakeSlice(rv.Type(), 0, 0).Interface()
	}
	return v
}
