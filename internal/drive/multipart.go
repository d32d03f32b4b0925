package drive

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// Part is one section of a multipart body.
type Part struct {
	Header  textproto.MIMEHeader
	Payload []byte
}

// Multipart is an ordered list of parts encoded as multipart/related.
type Multipart struct {
	parts []Part
}

// Add appends a part with the given content type.
func (m *Multipart) Add(contentType string, payload []byte) *Multipart {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	m.parts = append(m.parts, Part{Header: h, Payload: payload})
	return m
}

// Build encodes the parts with a fresh boundary and returns the body and
// its Content-Type header value.
func (m *Multipart) Build() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, p := range m.parts {
		pw, err := w.CreatePart(p.Header)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %d: %w", i, err)
		}
		if _, err := pw.Write(p.Payload); err != nil {
			return nil, "", fmt.Errorf("writing part %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return buf.Bytes(), "multipart/related; boundary=" + w.Boundary(), nil
}
