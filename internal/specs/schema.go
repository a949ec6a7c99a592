package specs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed laptop-spec.schema.json
var defaultSchema []byte

const schemaURL = "file:///laptop-spec.schema.json"

// ConfigurationError means the schema document itself is unusable. It is fatal
// and must stop a run before any record is processed.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: schema %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Schema is a compiled, read-only schema document.
type Schema struct {
	compiled *jsonschema.Schema
	raw      []byte
	// order maps a JSON pointer inside the schema document to its position in
	// document order; validation errors are sorted by it.
	order map[string]int
}

// DefaultSchemaDocument returns the embedded schema text.
func DefaultSchemaDocument() []byte {
	return append([]byte(nil), defaultSchema...)
}

// DefaultSchema compiles the embedded schema.
func DefaultSchema() (*Schema, error) {
	return CompileSchema("embedded", defaultSchema)
}

// LoadSchema reads and compiles a schema file. Every failure, including a
// missing file, is a *ConfigurationError.
func LoadSchema(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Err: err}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Err: err}
	}
	return CompileSchema(path, data)
}

// CompileSchema compiles a Draft-07 schema for a single record. A dataset-level
// schema (type array with an items subschema) is accepted and its items are used.
func CompileSchema(source string, data []byte) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &ConfigurationError{Source: source, Err: fmt.Errorf("parse: %w", err)}
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, &ConfigurationError{Source: source, Err: errors.New("schema root must be an object")}
	}

	order, err := documentOrder(data)
	if err != nil {
		return nil, &ConfigurationError{Source: source, Err: fmt.Errorf("parse: %w", err)}
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, &ConfigurationError{Source: source, Err: err}
	}

	loc := schemaURL
	if t, _ := root["type"].(string); t == "array" {
		if _, ok := root["items"].(map[string]any); ok {
			loc = schemaURL + "#/items"
		}
	}
	compiled, err := c.Compile(loc)
	if err != nil {
		return nil, &ConfigurationError{Source: source, Err: err}
	}

	return &Schema{compiled: compiled, raw: append([]byte(nil), data...), order: order}, nil
}

// Document returns a copy of the schema text.
func (s *Schema) Document() []byte {
	return append([]byte(nil), s.raw...)
}

// position returns the document-order index of the deepest known ancestor of ptr.
func (s *Schema) position(ptr string) int {
	for {
		if n, ok := s.order[ptr]; ok {
			return n
		}
		i := strings.LastIndex(ptr, "/")
		if i < 0 {
			return len(s.order)
		}
		ptr = ptr[:i]
	}
}

// keywordPointer turns a schema URL and keyword path into a JSON pointer into the document.
func keywordPointer(schemaLoc string, keyword []string) string {
	frag := ""
	if i := strings.IndexByte(schemaLoc, '#'); i >= 0 {
		frag = schemaLoc[i+1:]
	}
	if unescaped, err := url.PathUnescape(frag); err == nil {
		frag = unescaped
	}
	var b strings.Builder
	b.WriteString(frag)
	for _, k := range keyword {
		b.WriteByte('/')
		b.WriteString(escapePointer(k))
	}
	return b.String()
}

func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// documentOrder walks the raw JSON and numbers every object member and array
// element in the order it appears.
func documentOrder(data []byte) (map[string]int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	order := map[string]int{"": 0}
	next := 1
	var walk func(ptr string) error
	walk = func(ptr string) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok {
		case json.Delim('{'):
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := keyTok.(string)
				child := ptr + "/" + escapePointer(key)
				order[child] = next
				next++
				if err := walk(child); err != nil {
					return err
				}
			}
			_, err = dec.Token()
			return err
		case json.Delim('['):
			for i := 0; dec.More(); i++ {
				child := ptr + "/" + strconv.Itoa(i)
				order[child] = next
				next++
				if err := walk(child); err != nil {
					return err
				}
			}
			_, err = dec.Token()
			return err
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	return order, nil
}
