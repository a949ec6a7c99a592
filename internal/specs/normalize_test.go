package specs_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

func decodeRecord(t *testing.T, raw string) specs.Record {
	t.Helper()
	ds, err := specs.DecodeDataset(strings.NewReader("[" + raw + "]"))
	require.NoError(t, err)
	require.Len(t, ds.Entries, 1)
	return ds.Entries[0].Record
}

func normalize(r specs.Record) (specs.Record, []specs.NormalizationWarning) {
	return specs.NewNormalizer(specs.DefaultRules()).Normalize(r)
}

func TestNormalizeWeightScalar(t *testing.T) {
	got, warns := normalize(decodeRecord(t, `{"weight": "1.38 kg"}`))
	require.Empty(t, warns)
	require.Equal(t, map[string]any{"default": "1.38 kg"}, got["weight"])
}

func TestNormalizeWeightShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{
			name: "number keeps type",
			in:   `{"weight": 1.38}`,
			want: map[string]any{"default": json.Number("1.38")},
		},
		{
			name: "single variant with sku",
			in:   `{"weight": {"sku_id": "A1", "weight": "1.2 kg"}}`,
			want: map[string]any{"A1": map[string]any{"sku_id": "A1", "weight": "1.2 kg"}},
		},
		{
			name: "single variant without sku",
			in:   `{"weight": {"weight": "1.2 kg", "top_material": "Aluminium"}}`,
			want: map[string]any{"default": map[string]any{"weight": "1.2 kg", "top_material": "Aluminium"}},
		},
		{
			name: "list of variants",
			in:   `{"weight": [{"weight": "1.2 kg"}, {"sku_id": "B2", "weight": "1.4 kg"}]}`,
			want: map[string]any{
				"variant_1": map[string]any{"weight": "1.2 kg"},
				"B2":        map[string]any{"sku_id": "B2", "weight": "1.4 kg"},
			},
		},
		{
			name: "already keyed",
			in:   `{"weight": {"variant_1": {"weight": "1.2 kg"}}}`,
			want: map[string]any{"variant_1": map[string]any{"weight": "1.2 kg"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := normalize(decodeRecord(t, tt.in))
			if diff := cmp.Diff(tt.want, got["weight"]); diff != "" {
				t.Fatalf("weight mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeBooleanTokens(t *testing.T) {
	tests := []struct {
		token string
		want  any
	}{
		{"yes", true},
		{"Yes", true},
		{"true", true},
		{" Multi Touch ", true},
		{"no", false},
		{"NO", false},
		{"false", false},
		{"maybe", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			in := specs.Record{"display": []any{map[string]any{"size": "14", "touch": tt.token}}}
			got, warns := normalize(in)
			display := got["display"].([]any)[0].(map[string]any)
			require.Equal(t, tt.want, display["touch"])
			if _, unknown := tt.want.(string); unknown {
				require.Len(t, warns, 1)
				require.Equal(t, "display[0].touch", warns[0].Field)
			} else {
				require.Empty(t, warns)
			}
		})
	}
}

func TestNormalizeArraysAndObjectLists(t *testing.T) {
	in := decodeRecord(t, `{
		"processor": "Intel Core i5",
		"memory": ["16 GB"],
		"display": {"size": "14\"", "resolution": "1920x1080", "anti_glare": "Yes"},
		"warranty": "3 years",
		"network": {"wwan": "Not specified", "nfc": "No"},
		"multi_media": {"camera": "1080p FHD", "camera_privacy": "yes"},
		"wireless": {"wifi_6e": "Yes", "bluetooth": "Yes", "bluetooth_version": "5.3"}
	}`)

	got, warns := normalize(in)
	require.Empty(t, warns)

	want := specs.Record{
		"processor": []any{"Intel Core i5"},
		"memory":    []any{"16 GB"},
		"display":   []any{map[string]any{"size": "14\"", "resolution": "1920x1080", "anti_glare": true}},
		"warranty":  []any{map[string]any{"duration": "3 years"}},
		"network":   map[string]any{"wwan": []any{}, "nfc": false},
		"multi_media": map[string]any{
			"camera":         []any{"1080p FHD"},
			"camera_privacy": true,
		},
		"wireless": map[string]any{"wifi_6e": true, "bluetooth": true, "bluetooth_version": "5.3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalized record mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeLeavesInputUntouched(t *testing.T) {
	in := decodeRecord(t, `{"weight": "1.38 kg", "processor": "i7", "display": {"touch": "yes"}}`)
	before, err := json.Marshal(in)
	require.NoError(t, err)

	_, _ = normalize(in)

	after, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, string(before), string(after))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		`{"weight": "1.38 kg", "processor": "i7"}`,
		`{"weight": [{"weight": "1.2 kg"}, {"weight": "1.3 kg"}], "display": [{"touch": "maybe"}]}`,
		`{"weight": {"sku_id": "X1", "weight": "1.1 kg"}, "warranty": "1 year", "network": {"wwan": "none"}}`,
		`{"brand": "HP", "model": "ProBook"}`,
	}
	for _, raw := range inputs {
		once, _ := normalize(decodeRecord(t, raw))
		twice, _ := normalize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("normalize not idempotent for %s (-once +twice):\n%s", raw, diff)
		}
	}
}

func TestNormalizeAbsentFieldsStayAbsent(t *testing.T) {
	got, _ := normalize(specs.Record{"brand": "Lenovo"})
	require.Equal(t, specs.Record{"brand": "Lenovo"}, got)
}

func TestNormalizeUnexpectedShapeWarns(t *testing.T) {
	got, warns := normalize(specs.Record{"ports": true, "weight": true})
	require.Equal(t, true, got["ports"])
	require.Equal(t, map[string]any{"default": true}, got["weight"])
	require.Len(t, warns, 2)
}

func TestNormalizeWeightIsAlwaysMapping(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      map[string]any
		wantWarns int
	}{
		{
			name:      "null",
			in:        `{"weight": null}`,
			want:      map[string]any{"default": nil},
			wantWarns: 1,
		},
		{
			name:      "boolean",
			in:        `{"weight": false}`,
			want:      map[string]any{"default": false},
			wantWarns: 1,
		},
		{
			name: "value and unit mapping",
			in:   `{"weight": {"value": 1.38, "unit": "kg"}}`,
			want: map[string]any{"default": map[string]any{"value": json.Number("1.38"), "unit": "kg"}},
		},
	}
	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warns := normalize(decodeRecord(t, tt.in))
			require.Len(t, warns, tt.wantWarns)
			if diff := cmp.Diff(tt.want, got["weight"]); diff != "" {
				t.Fatalf("weight mismatch (-want +got):\n%s", diff)
			}

			again, _ := normalize(got)
			require.Equal(t, got["weight"], again["weight"])

			for _, e := range v.Validate(got) {
				require.NotEqual(t, []string{"weight"}, e.Path, e.String())
			}
		})
	}
}
