package change

import (
	"bytes"
	"encoding/json"
	"io"

	"gitlab.com/tozd/go/errors"
)

// Marshal renders a list the way it is saved: a JSON array indented with
// two spaces.
func Marshal(list List) ([]byte, error) {
	if list == nil {
		list = List{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return nil, errors.Errorf("marshaling changes: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Unmarshal decodes a rule list leniently. Fields that are missing or of
// the wrong type fall back to the empty string or false, and elements that are not
// objects become empty changes. Anything that is not a JSON array is a
// *MalformedImportError.
func Unmarshal(data []byte) (List, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedImportError{Reason: "invalid JSON", Err: err}
	}
	if dec.More() {
		return nil, &MalformedImportError{Reason: "trailing data after JSON value"}
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, &MalformedImportError{Reason: "not an array of changes"}
	}

	list := make(List, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		list = append(list, Change{
			Matcher:         stringField(obj, "matcher"),
			Resolver:        stringField(obj, "resolver"),
			IsCaseSensitive: boolField(obj, "isCaseSensitive"),
			IsWholeWords:    boolField(obj, "isWholeWords"),
			IsUsingRegEx:    boolField(obj, "isUsingRegEx"),
		})
	}
	return list, nil
}

// Decode reads and leniently decodes a rule list.
func Decode(r io.Reader) (List, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading changes: %w", err)
	}
	return Unmarshal(data)
}

// Encode writes the saved form of a list followed by a newline.
func Encode(w io.Writer, list List) error {
	data, err := Marshal(list)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Errorf("writing changes: %w", err)
	}
	return nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func boolField(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}
