package specs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

func TestWriteReportSections(t *testing.T) {
	results := []specs.Result{
		{
			ID: "e14.pdf",
			Record: specs.Record{
				"brand":      "Lenovo",
				"model":      "E14",
				"source_pdf": "e14.pdf",
				"processor":  []any{"i5", "i7"},
				"memory":     []any{"8 GB", "16 GB"},
				"graphics":   []any{"Iris Xe", "MX550", "RTX 2050"},
				"weight":     map[string]any{"default": "1.41 kg"},
				"chipset":    "Intel",
				"warranty":   []any{},
			},
		},
		{
			ID:     "probook.pdf",
			Record: specs.Record{"brand": "HP", "chipset": "Not specified"},
			Errors: []specs.ValidationError{{Path: []string{"model"}, Message: `missing required property "model"`}},
			Warnings: []specs.NormalizationWarning{
				{Field: "display[0].touch", Value: "maybe", Message: "unrecognized boolean token"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, specs.WriteReport(&buf, results))
	out := buf.String()

	require.Contains(t, out, "Records: 2  Valid: 1  Invalid: 1")
	require.Contains(t, out, "[e14.pdf]\n  (valid)")
	require.Contains(t, out, `  - model: missing required property "model"`)
	require.Contains(t, out, "NORMALIZATION WARNINGS")
	require.Contains(t, out, "1. Lenovo - E14")
	require.Contains(t, out, "   Processors: 2 options")
	require.Contains(t, out, "   Memory: 8 GB, 16 GB")
	require.Contains(t, out, "   Graphics: Iris Xe, MX550\n")
	require.Contains(t, out, "   Weight: 1.41 kg")
	require.Contains(t, out, "Chipset:       1/2 laptops")
	require.Contains(t, out, "Case Material: 0/2 laptops")
	require.Contains(t, out, "Warranty:      0/2 laptops")
}

func TestWriteReportNoWarningsSection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, specs.WriteReport(&buf, []specs.Result{{ID: "a", Record: specs.Record{}}}))
	require.False(t, strings.Contains(buf.String(), "NORMALIZATION WARNINGS"))
}

func TestSpecified(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"not specified", "Not specified", false},
		{"empty list", []any{}, false},
		{"empty map", map[string]any{}, false},
		{"value", "Intel", true},
		{"list", []any{"x"}, true},
		{"bool", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, specs.Specified(tt.v))
		})
	}
}
