package request

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// FormData is a multipart/form-data request body
type FormData struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	closed bool
}

// NewFormData creates an empty form
func NewFormData() *FormData {
	f := &FormData{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

// Field appends a text field
func (f *FormData) Field(name, value string) error {
	if f.closed {
		return fmt.Errorf("form data already finalized")
	}
	return f.writer.WriteField(name, value)
}

// File appends a file part read from r
func (f *FormData) File(name, filename string, r io.Reader) error {
	if f.closed {
		return fmt.Errorf("form data already finalized")
	}
	part, err := f.writer.CreateFormFile(name, filename)
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", name, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to write form file %s: %w", name, err)
	}
	return nil
}

// Close writes the trailing boundary. Safe to call more than once.
func (f *FormData) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.writer.Close()
}

// ContentType returns the multipart content type including the boundary
func (f *FormData) ContentType() string {
	return f.writer.FormDataContentType()
}

// Reader returns the encoded body
func (f *FormData) Reader() io.Reader {
	return bytes.NewReader(f.buf.Bytes())
}
