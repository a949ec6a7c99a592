package specs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationError is one schema violation found in a record.
type ValidationError struct {
	// Path locates the offending value inside the record; empty means the record itself.
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Value   any      `json:"value,omitempty"`
	// Keyword is the schema keyword that failed, e.g. "type" or "required".
	Keyword string `json:"keyword"`

	position int
}

// PathString renders Path as "display -> 0 -> touch", or "(root)".
func (e ValidationError) PathString() string {
	if len(e.Path) == 0 {
		return "(root)"
	}
	return strings.Join(e.Path, " -> ")
}

func (e ValidationError) String() string {
	return e.PathString() + ": " + e.Message
}

// Validator checks records against a compiled schema. It is safe for concurrent use.
type Validator struct {
	schema  *Schema
	printer *message.Printer
}

func NewValidator(s *Schema) *Validator {
	return &Validator{schema: s, printer: message.NewPrinter(language.English)}
}

// Validate returns every violation in r, ordered by the position of the failing
// keyword in the schema document, then by instance path, then by message.
// An empty result means r conforms.
func (v *Validator) Validate(r Record) []ValidationError {
	inst, err := toInstance(r)
	if err != nil {
		return []ValidationError{{Message: fmt.Sprintf("record is not JSON-encodable: %v", err), Keyword: "type"}}
	}

	err = v.schema.compiled.Validate(inst)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []ValidationError{{Message: err.Error()}}
	}

	var out []ValidationError
	v.collect(verr, inst, &out)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.position != b.position {
			return a.position < b.position
		}
		if pa, pb := strings.Join(a.Path, "\x00"), strings.Join(b.Path, "\x00"); pa != pb {
			return pa < pb
		}
		return a.Message < b.Message
	})
	return dedupe(out)
}

func (v *Validator) collect(e *jsonschema.ValidationError, inst any, out *[]ValidationError) {
	if len(e.Causes) > 0 {
		for _, c := range e.Causes {
			v.collect(c, inst, out)
		}
		return
	}

	keywordPath := e.ErrorKind.KeywordPath()
	keyword := ""
	if len(keywordPath) > 0 {
		keyword = keywordPath[0]
	}
	pos := v.schema.position(keywordPointer(e.SchemaURL, keywordPath))
	path := append([]string(nil), e.InstanceLocation...)

	if req, ok := e.ErrorKind.(*kind.Required); ok {
		for _, missing := range req.Missing {
			*out = append(*out, ValidationError{
				Path:     append(append([]string(nil), path...), missing),
				Message:  fmt.Sprintf("missing required property %q", missing),
				Keyword:  "required",
				position: pos,
			})
		}
		return
	}

	*out = append(*out, ValidationError{
		Path:     path,
		Message:  e.ErrorKind.LocalizedString(v.printer),
		Value:    lookup(inst, path),
		Keyword:  keyword,
		position: pos,
	})
}

// dedupe keeps the first error for each path and message.
func dedupe(in []ValidationError) []ValidationError {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, e := range in {
		k := strings.Join(e.Path, "\x00") + "\x01" + e.Message
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// toInstance round-trips r through JSON so the validator sees only JSON types.
func toInstance(r Record) (any, error) {
	data, err := json.Marshal(map[string]any(r))
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

func lookup(v any, path []string) any {
	for _, seg := range path {
		switch t := v.(type) {
		case map[string]any:
			v = t[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			v = t[i]
		default:
			return nil
		}
	}
	return v
}
