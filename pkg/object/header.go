package object

import (
	"bytes"
	"fmt"
	"strings"
)

// Field is one header line. Value may span several lines; continuation
// lines are stored with their leading space removed.
type Field struct {
	Key   string
	Value string
}

// Header is the ordered key/value preamble shared by commits and tags,
// followed by a free-text message. Keys may repeat.
type Header struct {
	Fields  []Field
	Message []byte
}

// Get returns the first value for key.
func (h *Header) Get(key string) (string, bool) {
	for _, f := range h.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for key in order.
func (h *Header) GetAll(key string) []string {
	var out []string
	for _, f := range h.Fields {
		if f.Key == key {
			out = append(out, f.Value)
		}
	}
	return out
}

// Add appends a field.
func (h *Header) Add(key, value string) {
	h.Fields = append(h.Fields, Field{Key: key, Value: value})
}

// MessageString returns the message as a string.
func (h *Header) MessageString() string {
	return string(h.Message)
}

// Marshal writes the header:
//
//	key value
//	 continuation
//	...
//
//	message
func (h *Header) Marshal() []byte {
	var buf bytes.Buffer
	for _, f := range h.Fields {
		buf.WriteString(f.Key)
		buf.WriteByte(' ')
		buf.WriteString(strings.ReplaceAll(f.Value, "\n", "\n "))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(h.Message)
	return buf.Bytes()
}

// ParseHeader parses key/value lines up to the first blank line; the rest is
// the message.
func ParseHeader(data []byte) (*Header, error) {
	h := &Header{}
	rest := data
	for {
		nl := bytes.IndexByte(rest, '\n')
		if nl < 0 {
			return nil, fmt.Errorf("%w: missing blank line before message", ErrMalformedHeader)
		}
		line := rest[:nl]
		rest = rest[nl+1:]

		if len(line) == 0 {
			break
		}
		if line[0] == ' ' {
			if len(h.Fields) == 0 {
				return nil, fmt.Errorf("%w: continuation line with no field", ErrMalformedHeader)
			}
			last := &h.Fields[len(h.Fields)-1]
			last.Value += "\n" + string(line[1:])
			continue
		}
		key, val, ok := bytes.Cut(line, []byte{' '})
		if !ok || len(key) == 0 {
			return nil, fmt.Errorf("%w: line %q", ErrMalformedHeader, line)
		}
		h.Add(string(key), string(val))
	}
	h.Message = bytes.Clone(rest)
	if h.Message == nil {
		h.Message = []byte{}
	}
	return h, nil
}
