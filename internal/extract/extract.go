// Package extract pulls laptop specifications out of vendor datasheet PDFs
// (Lenovo PSREF, HP QuickSpecs) into raw, pre-normalization records.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

const (
	notSpecified = "Not specified"
	rawTextLimit = 500
)

// DetectBrand guesses the manufacturer from the file name.
func DetectBrand(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "lenovo"), strings.Contains(p, "thinkpad"):
		return "Lenovo"
	case strings.Contains(p, "hp"), strings.Contains(p, "probook"):
		return "HP"
	}
	return "Unknown"
}

type Extractor struct {
	Logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Logger: logger}
}

// Extract reads one PDF.
func (e *Extractor) Extract(path string) (specs.Record, error) {
	pages, err := PageTexts(path)
	if err != nil {
		return nil, err
	}
	var nonEmpty []string
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return FromText(path, strings.Join(nonEmpty, "\n")), nil
}

// ExtractDir extracts every *.pdf in dir, in name order. A failing file is
// logged and reported but does not stop the others.
func (e *Extractor) ExtractDir(ctx context.Context, dir string) ([]specs.Record, []error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, []error{err}
	}
	sort.Strings(matches)

	var (
		records []specs.Record
		errs    []error
	)
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return records, append(errs, err)
		}
		e.Logger.Info("processing", "file", filepath.Base(path))
		rec, err := e.Extract(path)
		if err != nil {
			e.Logger.Error("extract failed", "file", filepath.Base(path), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		e.Logger.Info("extracted", "file", filepath.Base(path), "model", rec["model"])
		records = append(records, rec)
	}
	return records, errs
}

// ExtractFiles is ExtractDir over an explicit list of paths.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string) ([]specs.Record, []error) {
	var (
		records []specs.Record
		errs    []error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return records, append(errs, err)
		}
		st, err := os.Stat(path)
		if err == nil && st.IsDir() {
			r, es := e.ExtractDir(ctx, path)
			records = append(records, r...)
			errs = append(errs, es...)
			continue
		}
		rec, err := e.Extract(path)
		if err != nil {
			e.Logger.Error("extract failed", "file", filepath.Base(path), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

// FromText builds a record from already-extracted document text.
func FromText(path, text string) specs.Record {
	return specs.Record{
		"source_pdf":       filepath.Base(path),
		"brand":            DetectBrand(filepath.Base(path)),
		"model":            model(text),
		"processor":        strList(orNotSpecified(collect(text, processorRes))),
		"memory":           strList(orNotSpecified(collect(text, memoryRes))),
		"storage":          strList(orNotSpecified(collect(text, storageRes))),
		"display":          display(text),
		"graphics":         graphics(text),
		"battery":          firstOr(text, batteryRes),
		"weight":           firstOr(text, []*regexp.Regexp{weightRe}),
		"dimensions":       firstOr(text, dimensionsRes),
		"ports":            strList(orNotSpecified(collect(text, portRes))),
		"wireless":         wireless(text),
		"operating_system": strList(orNotSpecified(collect(text, osRes))),
		"security":         strList(orNotSpecified(collect(text, securityRes))),
		"multi_media":      multimedia(text),
		"monitor":          monitor(text),
		"chipset":          firstOr(text, chipsetRes),
		"colour":           strList(orNotSpecified(collect(text, colourRes))),
		"case_material":    firstOr(text, materialRes),
		"network":          network(text),
		"warranty":         firstOr(text, warrantyRes),
		"certification":    strList(orNotSpecified(collect(text, certificationRes))),
		"input_device":     inputDevice(text),
		"power":            power(text),
		"raw_text":         truncate(text, rawTextLimit),
	}
}

func model(text string) string {
	if m, ok := first(text, modelRes); ok {
		return m
	}
	return "Unknown Model"
}

func firstOr(text string, res []*regexp.Regexp) string {
	if m, ok := first(text, res); ok {
		return m
	}
	return notSpecified
}

func display(text string) map[string]any {
	d := map[string]any{}
	if m := displaySizeRe.FindStringSubmatch(text); m != nil {
		d["size"] = m[1] + " inches"
	}
	if m := resolutionRe.FindStringSubmatch(text); m != nil {
		d["resolution"] = m[1] + "x" + m[2]
	} else if m := resolutionNameRe.FindString(text); m != "" {
		d["resolution"] = m
	}
	if m := brightnessRe.FindStringSubmatch(text); m != nil {
		d["brightness"] = m[1] + " nits"
	}
	if touchRe.MatchString(text) {
		d["touch"] = "Yes"
	}
	if antiGlareRe.MatchString(text) {
		d["anti_glare"] = "Yes"
	}
	if len(d) == 0 {
		return map[string]any{"size": notSpecified, "resolution": notSpecified}
	}
	return d
}

func graphics(text string) []any {
	g := collect(text, graphicsRes)
	if len(g) == 0 {
		g = []string{"Integrated"}
	}
	return strList(g)
}

func wireless(text string) map[string]any {
	w := map[string]any{
		"wifi_6":    hasWifi6(text),
		"wifi_6e":   wifi6eRe.MatchString(text),
		"wifi_5":    wifi5Re.MatchString(text),
		"bluetooth": bluetoothRe.MatchString(text),
	}
	if m := btVersionRe.FindStringSubmatch(text); m != nil {
		w["bluetooth_version"] = m[1]
	}
	return w
}

// hasWifi6 matches "Wi-Fi 6" not followed by E.
func hasWifi6(text string) bool {
	for _, loc := range wifi6Re.FindAllStringIndex(text, -1) {
		next, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if next != 'E' && next != 'e' {
			return true
		}
	}
	return false
}

func multimedia(text string) map[string]any {
	mm := map[string]any{}
	if m, ok := first(text, cameraRes); ok {
		mm["camera"] = m
	}
	if cameraPrivacyRe.MatchString(text) {
		mm["camera_privacy"] = "Yes"
	}
	if audio := collect(text, audioRes); len(audio) > 0 {
		mm["audio"] = strList(audio)
	}
	if len(mm) == 0 {
		return map[string]any{"camera": notSpecified, "audio": []any{notSpecified}}
	}
	return mm
}

func monitor(text string) map[string]any {
	mon := map[string]any{}
	if m := maxDisplaysRe.FindStringSubmatch(text); m != nil {
		mon["max_displays"] = m[1]
	}
	if res := collect(text, monitorResolutions); len(res) > 0 {
		mon["supported_resolutions"] = strList(res)
	}
	for key, re := range map[string]*regexp.Regexp{
		"hdmi_support":        hdmiSupportRe,
		"usbc_support":        usbcSupportRe,
		"thunderbolt_support": thunderboltSupportRe,
	} {
		if m := re.FindStringSubmatch(text); m != nil {
			mon[key] = m[1]
		}
	}
	if len(mon) == 0 {
		return map[string]any{"max_displays": notSpecified}
	}
	return mon
}

func network(text string) map[string]any {
	n := map[string]any{}
	if m, ok := first(text, ethernetRes); ok {
		n["ethernet"] = m
	}
	if wwan := collect(text, wwanRes); len(wwan) > 0 {
		n["wwan"] = strList(wwan)
	}
	if nfcRe.MatchString(text) {
		n["nfc"] = "Yes"
	}
	if len(n) == 0 {
		return map[string]any{"ethernet": notSpecified}
	}
	return n
}

func inputDevice(text string) map[string]any {
	in := map[string]any{}
	if kb := collect(text, keyboardRes); len(kb) > 0 {
		in["keyboard"] = strList(kb)
	}
	if m, ok := first(text, touchpadRes); ok {
		in["touchpad"] = m
	}
	if trackPointRe.MatchString(text) {
		in["pointing_device"] = "TrackPoint"
	}
	if len(in) == 0 {
		return map[string]any{"keyboard": []any{notSpecified}, "touchpad": notSpecified}
	}
	return in
}

func power(text string) map[string]any {
	p := map[string]any{}
	for _, re := range adapterRes {
		if m := re.FindStringSubmatch(text); m != nil {
			p["adapter_wattage"] = m[1] + "W"
			break
		}
	}
	for _, re := range powerDeliveryRes {
		if m := re.FindString(text); m != "" {
			if strings.Contains(m, "Power Delivery") {
				p["power_delivery"] = m
			}
			break
		}
	}
	if m := rapidChargeRe.FindString(text); m != "" {
		p["rapid_charge"] = m
	}
	if m := consumptionRe.FindStringSubmatch(text); m != nil {
		p["power_consumption"] = m[1] + "W"
	}
	if len(p) == 0 {
		return map[string]any{"adapter_wattage": notSpecified}
	}
	return p
}

func strList(v []string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
