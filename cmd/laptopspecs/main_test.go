package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/laptop-specs/internal/logger"
)

const rawDataset = `[
  {
    "source_pdf": "thinkpad_e14.pdf",
    "brand": "Lenovo",
    "model": "ThinkPad E14 Gen 5",
    "processor": ["Intel Core i5-1335U"],
    "memory": "16 GB DDR4-3200",
    "storage": ["512GB SSD"],
    "display": {"size": "14\"", "resolution": "1920x1200", "touch": "No"},
    "graphics": ["Intel Iris Xe Graphics"],
    "battery": "47Wh",
    "weight": "1.41 kg",
    "ports": "USB-C",
    "wireless": {"wifi_6": "Yes", "bluetooth": "Yes"},
    "operating_system": ["Windows 11 Pro"]
  }
]`

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSchemaPrintsEmbeddedDocument(t *testing.T) {
	code, out, _ := execute(t, "schema")
	require.Equal(t, 0, code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "object", doc["type"])
}

func TestSchemaCheckMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "laptop"}`), 0o644))

	code, _, errOut := execute(t, "schema", "--check", path)
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "configuration error")
}

func TestNormalizeWritesFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.json")
	require.NoError(t, os.WriteFile(in, []byte(rawDataset), 0o644))
	out := filepath.Join(dir, "normalized.json")
	report := filepath.Join(dir, "report.txt")

	code, stdout, _ := execute(t, "normalize", in, "-o", out, "--report", report, "--strict")
	require.Equal(t, 0, code, stdout)

	var summary struct {
		Records int `json:"records"`
		Valid   int `json:"valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	require.Equal(t, 1, summary.Records)
	require.Equal(t, 1, summary.Valid)
	require.FileExists(t, out)
	require.FileExists(t, report)
}

func TestNormalizeStrictFailsOnInvalidRecords(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"model": "Incomplete"}]`), 0o644))

	code, _, errOut := execute(t, "normalize", in, "-o", "", "--report", "", "--strict")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, errInvalidRecords.Error())

	code, _, _ = execute(t, "normalize", in, "-o", "", "--report", "")
	require.Equal(t, 0, code)
}

func TestNormalizeBadSchemaExitsTwo(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.json")
	require.NoError(t, os.WriteFile(in, []byte(rawDataset), 0o644))
	schema := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schema, []byte(`not json`), 0o644))
	out := filepath.Join(dir, "normalized.json")

	code, _, errOut := execute(t, "normalize", in, "-o", out, "--report", "", "--schema", schema)
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "configuration error")
	require.NoFileExists(t, out)
}

func TestLoadListingsSkipsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"snapshot_id": "a", "brand": "HP", "product_title": "ProBook 450", "availability": "In stock", "source_url": "https://www.hp.com/a"},
  {"error": "timeout", "source_url": "https://www.hp.com/b"}
]`), 0o644))

	got, err := loadListings(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].SnapshotID)
	require.Equal(t, "ProBook 450", *got[0].ProductTitle)
}

func TestExtractRequiresInput(t *testing.T) {
	code, _, errOut := execute(t, "extract")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "pass PDF files or --dir")
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) error { return nil }
func (failingPublisher) Close() error { return errors.New("flush: broker unreachable") }

func TestClosePublisherLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	closePublisher(logger.NewWithWriter(&buf, "scrape", "info"), failingPublisher{})
	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), "publisher close failed")
	require.Contains(t, buf.String(), "broker unreachable")
}
