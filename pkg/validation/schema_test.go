// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    interface{}
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid default config",
			data:    types.DefaultConfig(),
			wantErr: false,
		},
		{
			name: "unknown kernelBasisSet",
			data: map[string]interface{}{
				"basis": map[string]interface{}{
					"kernelCols":     19,
					"kernelRows":     19,
					"kernelBasisSet": "made-up-basis",
				},
			},
			wantErr: true,
			errMsg:  "kernelBasisSet",
		},
		{
			name: "negative kernelCols",
			data: map[string]interface{}{
				"basis": map[string]interface{}{
					"kernelCols": -1,
				},
			},
			wantErr: true,
		},
		{
			name: "unknown detThresholdType",
			data: map[string]interface{}{
				"stamp": map[string]interface{}{
					"detThresholdType": "percentile",
				},
			},
			wantErr: true,
			errMsg:  "detThresholdType",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonData, err := json.Marshal(tt.data)
			if err != nil {
				t.Fatalf("failed to marshal test data: %v", err)
			}
			err = ValidateConfig(jsonData)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateConfig() error = %v, want to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidateReport(t *testing.T) {
	valid := types.PipelineReport{
		Iterations:           1,
		RejectedPerIteration: []int{0},
		NKernelTerms:         6,
		NBackgroundTerms:     3,
		Candidates:           []types.FitReport{
			{ID: 0, Status: "GOOD"},
		},
	}
	data, err := json.Marshal(valid)
	if err != nil {
		t.Fatalf("failed to marshal report: %v", err)
	}
	if err := ValidateReport(data); err != nil {
		t.Errorf("ValidateReport() failed for valid report: %v", err)
	}

	missingCandidates := map[string]interface{}{
		"iterations":       1,
		"nKernelTerms":     6,
		"nBackgroundTerms": 3,
	}
	data, err = json.Marshal(missingCandidates)
	if err != nil {
		t.Fatalf("failed to marshal test data: %v", err)
	}
	if err := ValidateReport(data); err == nil {
		t.Error("ValidateReport() expected error for report missing candidates")
	}

	badStatus := types.PipelineReport{
		Iterations:           1,
		RejectedPerIteration: []int{0},
		NKernelTerms:         6,
		NBackgroundTerms:     3,
		Candidates:           []types.FitReport{
			{ID: 0, Status: "MAYBE"},
		},
	}
	data, err = json.Marshal(badStatus)
	if err != nil {
		t.Fatalf("failed to marshal report: %v", err)
	}
	if err := ValidateReport(data); err == nil {
		t.Error("ValidateReport() expected error for unknown candidate status")
	}
}
