package specs

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CompletenessFields are the optional fields the report counts coverage for.
var CompletenessFields = []string{"chipset", "case_material", "warranty", "certification", "power", "network", "security"}

const ruleWidth = 80

// WriteReport renders results as plain text. The output depends only on
// results, so the same input always yields the same bytes.
func WriteReport(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", ruleWidth)
	title := cases.Title(language.English)

	invalid, warned := 0, 0
	for _, r := range results {
		if len(r.Errors) > 0 {
			invalid++
		}
		if len(r.Warnings) > 0 {
			warned++
		}
	}

	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "LAPTOP SPECIFICATIONS VALIDATION REPORT")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Records: %d  Valid: %d  Invalid: %d\n", len(results), len(results)-invalid, invalid)

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "VALIDATION")
	fmt.Fprintln(bw, strings.Repeat("-", ruleWidth))
	for _, r := range results {
		fmt.Fprintf(bw, "[%s]\n", r.ID)
		if len(r.Errors) == 0 {
			fmt.Fprintln(bw, "  (valid)")
			continue
		}
		for _, e := range r.Errors {
			fmt.Fprintf(bw, "  - %s: %s\n", e.PathString(), e.Message)
		}
	}

	if warned > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "NORMALIZATION WARNINGS")
		fmt.Fprintln(bw, strings.Repeat("-", ruleWidth))
		for _, r := range results {
			if len(r.Warnings) == 0 {
				continue
			}
			fmt.Fprintf(bw, "[%s]\n", r.ID)
			for _, wn := range r.Warnings {
				fmt.Fprintf(bw, "  - %s\n", wn)
			}
		}
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "LAPTOP SPECIFICATIONS SUMMARY")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "\nTotal Laptops: %d\n", len(results))
	for i, r := range results {
		rec := r.Record
		fmt.Fprintf(bw, "\n%d. %s - %s\n", i+1, text(rec["brand"]), text(rec["model"]))
		fmt.Fprintf(bw, "   Source: %s\n", text(rec["source_pdf"]))
		fmt.Fprintf(bw, "   Processors: %d options\n", count(rec["processor"]))
		fmt.Fprintf(bw, "   Memory: %s\n", strings.Join(strs(rec["memory"], 0), ", "))
		fmt.Fprintf(bw, "   Storage: %d options\n", count(rec["storage"]))
		fmt.Fprintf(bw, "   Display Variants: %d\n", count(rec["display"]))
		fmt.Fprintf(bw, "   Graphics: %s\n", strings.Join(strs(rec["graphics"], 2), ", "))
		fmt.Fprintf(bw, "   Weight: %s\n", firstWeight(rec))
		fmt.Fprintf(bw, "   OS Options: %d\n", count(rec["operating_system"]))
		fmt.Fprintf(bw, "   Certifications: %d\n", count(rec["certification"]))
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "FIELD COMPLETENESS ANALYSIS")
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)

	labels := make([]string, len(CompletenessFields))
	width := 0
	for i, f := range CompletenessFields {
		labels[i] = title.String(strings.ReplaceAll(f, "_", " ")) + ":"
		if n := runewidth.StringWidth(labels[i]); n > width {
			width = n
		}
	}
	for i, f := range CompletenessFields {
		n := 0
		for _, r := range results {
			if Specified(r.Record[f]) {
				n++
			}
		}
		fmt.Fprintf(bw, "%s %d/%d laptops\n", runewidth.FillRight(labels[i], width), n, len(results))
	}

	return bw.Flush()
}

// Specified reports whether v carries information: not absent, not "Not specified",
// and not an empty string, list or mapping.
func Specified(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		s := strings.TrimSpace(t)
		return s != "" && !strings.EqualFold(s, "Not specified")
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func text(v any) string {
	if v == nil {
		return "-"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func count(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case nil:
		return 0
	}
	return 1
}

func strs(v any, limit int) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			out = append(out, text(item))
		}
	case nil:
	default:
		out = append(out, text(t))
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// firstWeight returns the first variant's weight, by sorted label.
func firstWeight(rec Record) string {
	for _, field := range []string{"weight", "weights"} {
		m, ok := rec[field].(map[string]any)
		if !ok || len(m) == 0 {
			continue
		}
		v := m[SortedKeys(m)[0]]
		if variant, ok := v.(map[string]any); ok {
			return text(variant["weight"])
		}
		return text(v)
	}
	if v, ok := rec["weight"]; ok {
		return text(v)
	}
	return "-"
}
