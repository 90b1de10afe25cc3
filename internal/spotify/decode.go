package spotify

import (
	"bytes"
	"encoding/json"
)

// object is a JSON object being decoded into a content value of kind.
type object struct {
	kind   ContentType
	fields map[string]json.RawMessage
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeObject(kind ContentType, raw json.RawMessage) (object, error) {
	o := object{kind: kind}
	if isNull(raw) {
		return o, &ParseError{Kind: kind, Field: "(object)", Err: errMissing}
	}
	if err := json.Unmarshal(raw, &o.fields); err != nil {
		return o, &ParseError{Kind: kind, Field: "(object)", Err: err}
	}
	return o, nil
}

func decodeArray(kind ContentType, raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if isNull(raw) {
		return nil, &ParseError{Kind: kind, Field: "(array)", Err: errMissing}
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Kind: kind, Field: "(array)", Err: err}
	}
	return items, nil
}

func (o object) has(name string) bool {
	raw, ok := o.fields[name]
	return ok && !isNull(raw)
}

func (o object) raw(name string) (json.RawMessage, error) {
	raw, ok := o.fields[name]
	if !ok || isNull(raw) {
		return nil, &ParseError{Kind: o.kind, Field: name, Err: errMissing}
	}
	return raw, nil
}

func (o object) decode(name string, v any) error {
	raw, err := o.raw(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ParseError{Kind: o.kind, Field: name, Err: err}
	}
	return nil
}

func (o object) string(name string) (string, error) {
	var s string
	return s, o.decode(name, &s)
}

func (o object) int(name string) (int, error) {
	var n int
	return n, o.decode(name, &n)
}

// optString, optInt and optBool return the zero value when the field is absent or null.
func (o object) optString(name string) (string, error) {
	if !o.has(name) {
		return "", nil
	}
	return o.string(name)
}

func (o object) optInt(name string) (int, error) {
	if !o.has(name) {
		return 0, nil
	}
	return o.int(name)
}

func (o object) optBool(name string) (bool, error) {
	if !o.has(name) {
		return false, nil
	}
	var b bool
	return b, o.decode(name, &b)
}

func (o object) child(name string, kind ContentType) (object, error) {
	raw, err := o.raw(name)
	if err != nil {
		return object{kind: kind}, err
	}
	child, err := decodeObject(kind, raw)
	if err != nil {
		return child, &ParseError{Kind: o.kind, Field: name, Err: err}
	}
	return child, nil
}

func (o object) uri(name string) (URI, error) {
	s, err := o.string(name)
	if err != nil {
		return "", err
	}
	u, err := ParseURI(s)
	if err != nil {
		return "", &ParseError{Kind: o.kind, Field: name, Err: err}
	}
	return u, nil
}
