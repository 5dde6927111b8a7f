package stream

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Envelope is the success response body.
type Envelope struct {
	Count int      `json:"count"`
	Items []Stream `json:"items"`
}

// NewEnvelope builds an envelope from a collection.
func NewEnvelope(c *Collection) Envelope {
	items := c.Items()
	if items == nil {
		items = []Stream{}
	}
	return Envelope{Count: len(items), Items: items}
}

// Marshal encodes the envelope with slashes, non-ASCII and HTML characters left unescaped.
func (e Envelope) Marshal() ([]byte, error) {
	return Encode(e)
}

// ErrorEnvelope is the error response body. Error envelopes are never cached.
type ErrorEnvelope struct {
	Error    string `json:"error"`
	HTTPCode *int   `json:"http_code,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Encode JSON-encodes v without HTML escaping and without the trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
