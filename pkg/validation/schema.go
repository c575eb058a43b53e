// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package validation provides JSON schema validation for the solver's
// configuration and pipeline reports.
package validation

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/v1/*.json
var schemaFS embed.FS

const schemaVersion = "v1"

// ValidateConfig validates raw configuration JSON against the embedded
// config schema.
func ValidateConfig(data []byte) error {
	return validateAgainst("config.schema.json", data)
}

// ValidateReport validates raw pipeline-report JSON against the
// embedded report schema.
func ValidateReport(data []byte) error {
	return validateAgainst("report.schema.json", data)
}

func validateAgainst(schemaFile string, data []byte) error {
	schemaPath := fmt.Sprintf("schemas/%s/%s", schemaVersion, schemaFile)
	schemaData, err := schemaFS.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaFile, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		return formatValidationErrors(result.Errors())
	}
	return nil
}

// formatValidationErrors formats validation errors into a readable message.
func formatValidationErrors(errors []gojsonschema.ResultError) error {
	if len(errors) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(errors))
	for _, err := range errors {
		field := err.Field()
		if field == "(root)" {
			field = "config"
		}
		msgs = append(msgs, fmt.Sprintf("  - %s: %s", field, err.Description()))
	}

	return fmt.Errorf("validation failed:\n%s", strings.Join(msgs, "\n"))
}
