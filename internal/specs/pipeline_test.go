package specs_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/laptop-specs/internal/logger"
	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

const rawDataset = `[
	{
		"source_pdf": "thinkpad_e14.pdf",
		"brand": "Lenovo",
		"model": "ThinkPad E14 Gen 5",
		"processor": "Intel Core i5-1335U",
		"memory": ["16 GB"],
		"storage": ["512 GB SSD"],
		"display": {"size": "14\"", "resolution": "1920x1200", "touch": "No", "anti_glare": "Yes"},
		"weight": "1.41 kg",
		"warranty": "1 year",
		"chipset": "Intel SoC platform",
		"security": ["TPM 2.0"]
	},
	{
		"source_pdf": "probook_450.pdf",
		"brand": "HP",
		"model": "ProBook 450 G10",
		"memory": ["8 GB"],
		"storage": ["256 GB SSD"],
		"display": [{"size": "15.6\"", "resolution": "1920x1080", "touch": "maybe"}],
		"weight": [{"sku_id": "8A5C1EA", "weight": "1.79 kg"}],
		"chipset": "Not specified"
	}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRunWritesOutputAndReport(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "specs.json", rawDataset)
	out := filepath.Join(dir, "normalized.json")
	report := filepath.Join(dir, "report.txt")

	res, err := specs.Run(context.Background(), specs.Config{
		InputPath:  in,
		OutputPath: out,
		ReportPath: report,
		Logger:     logger.Discard(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)
	require.Equal(t, 2, res.Records)
	require.Equal(t, 1, res.Valid)
	require.Equal(t, 1, res.Invalid)
	require.Equal(t, []string{"probook_450.pdf"}, res.InvalidIDs)
	require.Equal(t, 1, res.Warnings)

	ds, err := specs.LoadDataset(out)
	require.NoError(t, err)
	require.False(t, ds.Keyed)
	require.Len(t, ds.Entries, 2)
	require.Equal(t, map[string]any{"default": "1.41 kg"}, ds.Entries[0].Record["weight"])
	require.Equal(t, []any{"Intel Core i5-1335U"}, ds.Entries[0].Record["processor"])
	require.Contains(t, ds.Entries[1].Record["weight"], "8A5C1EA")

	text, err := os.ReadFile(report)
	require.NoError(t, err)
	require.Contains(t, string(text), "[thinkpad_e14.pdf]\n  (valid)")
	require.Contains(t, string(text), `processor: missing required property "processor"`)
	require.Contains(t, string(text), "display[0].touch: unrecognized boolean token")
	require.Contains(t, string(text), "Chipset:")
	require.NotContains(t, string(text), res.RunID)
}

func TestRunReportDeterministic(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "specs.json", rawDataset)

	var reports [][]byte
	for i := 0; i < 3; i++ {
		report := filepath.Join(dir, "report.txt")
		_, err := specs.Run(context.Background(), specs.Config{InputPath: in, ReportPath: report, Logger: logger.Discard()})
		require.NoError(t, err)
		b, err := os.ReadFile(report)
		require.NoError(t, err)
		reports = append(reports, b)
	}
	require.True(t, bytes.Equal(reports[0], reports[1]))
	require.True(t, bytes.Equal(reports[1], reports[2]))
}

func TestRunMalformedSchemaWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "specs.json", rawDataset)
	schema := writeFile(t, dir, "schema.json", `{"type": "object", "properties": `)
	out := filepath.Join(dir, "normalized.json")
	report := filepath.Join(dir, "report.txt")

	_, err := specs.Run(context.Background(), specs.Config{
		InputPath:  in,
		OutputPath: out,
		ReportPath: report,
		SchemaPath: schema,
		Logger:     logger.Discard(),
	})
	require.True(t, specs.IsConfigurationError(err))
	require.NoFileExists(t, out)
	require.NoFileExists(t, report)
}

func TestRunKeyedDatasetKeepsShape(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "specs.json", `{
		"zbook": {"brand": "HP", "model": "ZBook", "weight": "1.6 kg"},
		"e14": {"brand": "Lenovo", "model": "E14", "weight": "1.4 kg"}
	}`)
	out := filepath.Join(dir, "normalized.json")

	res, err := specs.Run(context.Background(), specs.Config{InputPath: in, OutputPath: out, Logger: logger.Discard()})
	require.NoError(t, err)
	require.Equal(t, 2, res.Invalid)

	ds, err := specs.LoadDataset(out)
	require.NoError(t, err)
	require.True(t, ds.Keyed)
	require.Equal(t, "e14", ds.Entries[0].ID)
	require.Equal(t, "zbook", ds.Entries[1].ID)
}

func TestProcessCancelled(t *testing.T) {
	s, err := specs.DefaultSchema()
	require.NoError(t, err)
	p := specs.NewPipeline(s, specs.DefaultRules(), logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = p.Process(ctx, &specs.Dataset{Entries: []specs.Entry{{ID: "a", Record: specs.Record{}}}})
	require.ErrorIs(t, err, context.Canceled)
}
