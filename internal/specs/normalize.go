package specs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NormalizationWarning notes a value the normalizer saw but could not coerce.
// The value is left as it was.
type NormalizationWarning struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (w NormalizationWarning) String() string {
	return fmt.Sprintf("%s: %s (value %v)", w.Field, w.Message, w.Value)
}

// Rules names the fields each normalization pass touches. Field paths are dotted;
// a "[]" suffix on a segment means "every element of this array".
type Rules struct {
	BooleanFields    []string
	ArrayFields      []string
	ObjectListFields []string
	// EmptyListFields become [] when their string value means "no support".
	EmptyListFields []string
	EmptyTokens     []string
	TrueTokens      []string
	FalseTokens     []string
	WeightField     string
	// VariantKeys mark a mapping as a single weight variant rather than a keyed set.
	VariantKeys []string
}

func DefaultRules() Rules {
	return Rules{
		BooleanFields: []string{
			"display[].touch",
			"display[].anti_glare",
			"multi_media.camera_privacy",
			"network.nfc",
			"wireless.wifi_5",
			"wireless.wifi_6",
			"wireless.wifi_6e",
			"wireless.bluetooth",
		},
		ArrayFields: []string{
			"processor", "memory", "storage", "graphics", "battery", "ports",
			"operating_system", "security", "colour", "certification",
			"multi_media.camera", "multi_media.audio",
			"input_device.keyboard",
			"power.adapter_wattage",
			"monitor.supported_resolutions",
			"network.wwan",
		},
		ObjectListFields: []string{"display", "warranty"},
		EmptyListFields:  []string{"network.wwan"},
		EmptyTokens:      []string{"no", "none", "not specified", "not supported", "no support", "n/a"},
		TrueTokens:       []string{"yes", "true", "y", "1", "multi touch", "supported"},
		FalseTokens:      []string{"no", "false", "n", "0", "none", "not supported"},
		WeightField:      "weight",
		VariantKeys:      []string{"sku_id", "weight", "weight_lbs", "top_material", "bottom_material", "value", "unit"},
	}
}

// Normalizer rewrites records into canonical shape. It never mutates its input.
type Normalizer struct {
	rules       Rules
	truthy      map[string]bool
	falsy       map[string]bool
	emptyTokens map[string]bool
	emptyFields map[string]bool
}

func NewNormalizer(rules Rules) *Normalizer {
	return &Normalizer{
		rules:       rules,
		truthy:      tokenSet(rules.TrueTokens),
		falsy:       tokenSet(rules.FalseTokens),
		emptyTokens: tokenSet(rules.EmptyTokens),
		emptyFields: tokenSet(rules.EmptyListFields),
	}
}

func tokenSet(tokens []string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return m
}

// Normalize returns a canonical deep copy of r together with any warnings.
// Normalize(Normalize(r)) equals Normalize(r).
func (n *Normalizer) Normalize(r Record) (Record, []NormalizationWarning) {
	out, _ := deepCopy(map[string]any(r)).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	var warns []NormalizationWarning

	for _, f := range n.rules.ObjectListFields {
		n.objectList(out, f, &warns)
	}
	for _, f := range n.rules.ArrayFields {
		n.array(out, f, &warns)
	}
	for _, f := range n.rules.BooleanFields {
		n.boolean(out, strings.Split(f, "."), "", &warns)
	}
	n.weight(out, &warns)

	return Record(out), warns
}

func (n *Normalizer) objectList(rec map[string]any, field string, warns *[]NormalizationWarning) {
	parent, key, ok := resolveParent(rec, field)
	if !ok {
		return
	}
	v, present := parent[key]
	if !present {
		return
	}
	switch t := v.(type) {
	case []any:
	case map[string]any:
		parent[key] = []any{t}
	case string:
		if field == "warranty" {
			parent[key] = []any{map[string]any{"duration": t}}
			return
		}
		*warns = append(*warns, NormalizationWarning{Field: field, Value: t, Message: "expected object or list of objects"})
	default:
		*warns = append(*warns, NormalizationWarning{Field: field, Value: t, Message: fmt.Sprintf("unexpected %s, expected object or list of objects", jsonKind(t))})
	}
}

func (n *Normalizer) array(rec map[string]any, field string, warns *[]NormalizationWarning) {
	parent, key, ok := resolveParent(rec, field)
	if !ok {
		return
	}
	v, present := parent[key]
	if !present {
		return
	}
	switch t := v.(type) {
	case []any:
	case string:
		if n.emptyFields[field] && n.emptyTokens[strings.ToLower(strings.TrimSpace(t))] {
			parent[key] = []any{}
			return
		}
		parent[key] = []any{t}
	default:
		*warns = append(*warns, NormalizationWarning{Field: field, Value: t, Message: fmt.Sprintf("unexpected %s, expected string or list", jsonKind(t))})
	}
}

// boolean walks segs under cur; label is the path walked so far, for warnings.
func (n *Normalizer) boolean(cur map[string]any, segs []string, label string, warns *[]NormalizationWarning) {
	seg := segs[0]
	each := strings.HasSuffix(seg, "[]")
	key := strings.TrimSuffix(seg, "[]")
	name := key
	if label != "" {
		name = label + "." + key
	}
	v, present := cur[key]
	if !present {
		return
	}

	if len(segs) == 1 {
		s, ok := v.(string)
		if !ok {
			return
		}
		tok := strings.ToLower(strings.TrimSpace(s))
		switch {
		case n.truthy[tok]:
			cur[key] = true
		case n.falsy[tok]:
			cur[key] = false
		default:
			*warns = append(*warns, NormalizationWarning{Field: name, Value: s, Message: "unrecognized boolean token"})
		}
		return
	}

	if each {
		list, ok := v.([]any)
		if !ok {
			return
		}
		for i, item := range list {
			if m, ok := item.(map[string]any); ok {
				n.boolean(m, segs[1:], fmt.Sprintf("%s[%d]", name, i), warns)
			}
		}
		return
	}
	if m, ok := v.(map[string]any); ok {
		n.boolean(m, segs[1:], name, warns)
	}
}

func (n *Normalizer) weight(rec map[string]any, warns *[]NormalizationWarning) {
	field := n.rules.WeightField
	v, present := rec[field]
	if !present {
		return
	}
	switch t := v.(type) {
	case string, json.Number, float64, int, int64:
		rec[field] = map[string]any{"default": t}
	case map[string]any:
		if n.isVariant(t) {
			rec[field] = map[string]any{variantLabel(t, "default"): t}
		}
	case []any:
		keyed := make(map[string]any, len(t))
		for i, item := range t {
			label := fmt.Sprintf("variant_%d", i+1)
			if m, ok := item.(map[string]any); ok {
				label = variantLabel(m, label)
			}
			if _, dup := keyed[label]; dup {
				label = fmt.Sprintf("%s_%d", label, i+1)
			}
			keyed[label] = item
		}
		rec[field] = keyed
	default:
		rec[field] = map[string]any{"default": t}
		*warns = append(*warns, NormalizationWarning{Field: field, Value: t, Message: fmt.Sprintf("unexpected %s, wrapped as default variant", jsonKind(t))})
	}
}

// isVariant reports whether m looks like one weight variant rather than a
// label -> variant mapping. A keyed mapping whose label happens to equal a
// variant key ("weight") is told apart by its value being an object.
func (n *Normalizer) isVariant(m map[string]any) bool {
	for _, k := range n.rules.VariantKeys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if _, nested := v.(map[string]any); !nested {
			return true
		}
	}
	return false
}

func variantLabel(m map[string]any, fallback string) string {
	if s, ok := m["sku_id"].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return fallback
}

// resolveParent returns the mapping holding the last segment of a dotted path.
func resolveParent(rec map[string]any, field string) (map[string]any, string, bool) {
	segs := strings.Split(field, ".")
	cur := rec
	for _, s := range segs[:len(segs)-1] {
		next, ok := cur[s].(map[string]any)
		if !ok {
			return nil, "", false
		}
		cur = next
	}
	return cur, segs[len(segs)-1], true
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case Record:
		return deepCopy(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = deepCopy(m)
		}
		return out
	default:
		return v
	}
}

// SortedKeys returns the keys of m in order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
