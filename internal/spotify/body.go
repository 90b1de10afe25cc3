package spotify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Body is a request payload. It is encoded again for every attempt of a call.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct {
	v any
}

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// JSON sends v as a JSON document.
func JSON(v any) Body {
	return jsonBody{v: v}
}

type formBody struct {
	values url.Values
}

func (b formBody) encode() (io.Reader, string, error) {
	return strings.NewReader(b.values.Encode()), "application/x-www-form-urlencoded", nil
}

// Form sends values form-encoded.
func Form(values url.Values) Body {
	return formBody{values: values}
}
