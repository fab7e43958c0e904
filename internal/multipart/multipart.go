package multipart

// Package multipart decodes multipart/form-data request bodies at the byte
// level. File content is sliced out of the original buffer and never passes
// through a text decode/encode round trip; only header blocks are treated as
// text. Bodies are expected to be fully buffered and size-capped by the
// caller before parsing.

import (
	"errors"
	"fmt"
	"strings"

	"docuvault/internal/bytesutil"
)

// ErrMalformedRequest reports a request whose Content-Type header is absent,
// is not multipart/form-data, or carries no usable boundary parameter.
var ErrMalformedRequest = errors.New("malformed multipart request")

var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
)

// Field is one decoded form entry. A Field with a non-empty Filename is a
// file part and carries its exact bytes in Content; otherwise Value holds the
// trimmed UTF-8 text.
type Field struct {
	Name        string
	Filename    string
	ContentType string
	Value       string
	Content     []byte
}

// IsFile reports whether the field carried an uploaded file.
func (f Field) IsFile() bool { return f.Filename != "" }

// Size returns the file content length in bytes.
func (f Field) Size() int64 { return int64(len(f.Content)) }

// Form maps field names to parsed fields. Later fields with a duplicate name
// overwrite earlier ones.
type Form map[string]Field

// File returns the first file field in the form, if any. Callers in this
// system submit at most one file per request.
func (fm Form) File() (Field, bool) {
	for _, f := range fm {
		if f.IsFile() {
			return f, true
		}
	}
	return Field{}, false
}

// Boundary extracts the boundary token from a multipart/form-data
// Content-Type header value. It fails with ErrMalformedRequest when the
// header is empty, declares a different media type, or has no boundary
// parameter.
func Boundary(contentType string) (string, error) {
	if contentType == "" {
		return "", fmt.Errorf("%w: missing Content-Type header", ErrMalformedRequest)
	}
	mediaType, params, ok := strings.Cut(contentType, ";")
	if !strings.EqualFold(strings.TrimSpace(mediaType), "multipart/form-data") {
		return "", fmt.Errorf("%w: Content-Type is not multipart/form-data", ErrMalformedRequest)
	}
	if ok {
		for _, p := range strings.Split(params, ";") {
			k, v, found := strings.Cut(strings.TrimSpace(p), "=")
			if !found || !strings.EqualFold(k, "boundary") {
				continue
			}
			b := strings.Trim(strings.TrimSpace(v), `"`)
			if b != "" {
				return b, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no boundary parameter in Content-Type", ErrMalformedRequest)
}

// Parse splits body on the exact byte sequence "--<boundary>" and decodes
// each part. An empty body, or a body that never mentions the boundary,
// yields an empty form rather than an error; rejecting those is the caller's
// call once it sees which fields are missing.
func Parse(body []byte, boundary string) (Form, error) {
	form := make(Form)
	if len(body) == 0 || boundary == "" {
		return form, nil
	}

	delim := []byte("--" + boundary)
	segments := bytesutil.Split(body, delim)
	if len(segments) == 1 {
		// Boundary never appears in the body.
		return form, nil
	}

	// segments[0] is the preamble before the first boundary and the last
	// segment is the "--\r\n" close marker (or epilogue); both carry no
	// fields.
	for _, seg := range segments[1 : len(segments)-1] {
		f, ok := parsePart(seg)
		if !ok {
			continue
		}
		form[f.Name] = f
	}

	// A missing close marker means the final segment may still be a part.
	last := segments[len(segments)-1]
	if !isCloseMarker(last) {
		if f, ok := parsePart(last); ok {
			form[f.Name] = f
		}
	}

	return form, nil
}

func isCloseMarker(seg []byte) bool {
	trimmed := bytesutil.TrimSuffix(bytesutil.TrimSuffix(seg, crlf), []byte("--"))
	return len(trimmed) == 0
}

// parsePart decodes one segment between two boundary markers. The header
// block ends at the first double CRLF; everything after it, minus the
// trailing CRLF that precedes the next boundary, is the raw content.
func parsePart(seg []byte) (Field, bool) {
	sep := bytesutil.Index(seg, crlfcrlf, 0)
	if sep < 0 {
		return Field{}, false
	}

	// Headers are guaranteed ASCII/UTF-8-safe; decoding them is fine.
	headerBlock := string(seg[:sep])
	content := seg[sep+len(crlfcrlf):]
	// The CRLF before the next boundary belongs to the framing, not the
	// content. If the terminator is missing, content runs to segment end.
	content = bytesutil.TrimSuffix(content, crlf)

	f := Field{}
	for _, line := range strings.Split(headerBlock, "\r\n") {
		line = strings.TrimSpace(line)
		switch {
		case hasHeaderPrefix(line, "Content-Disposition:"):
			f.Name = headerAttr(line, "name")
			f.Filename = headerAttr(line, "filename")
		case hasHeaderPrefix(line, "Content-Type:"):
			f.ContentType = strings.TrimSpace(line[len("Content-Type:"):])
		}
	}
	if f.Name == "" {
		return Field{}, false
	}

	if f.IsFile() {
		if f.ContentType == "" {
			f.ContentType = "application/octet-stream"
		}
		f.Content = content
	} else {
		f.Value = strings.TrimSpace(string(content))
	}
	return f, true
}

func hasHeaderPrefix(line, prefix string) bool {
	return len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix)
}

// headerAttr pulls a quoted attribute value such as name="file" out of a
// Content-Disposition line. The match must sit at an attribute start so that
// looking up "name" never lands inside "filename".
func headerAttr(line, attr string) string {
	marker := attr + `="`
	from := 0
	for {
		i := strings.Index(line[from:], marker)
		if i < 0 {
			return ""
		}
		i += from
		if i == 0 || line[i-1] == ' ' || line[i-1] == ';' {
			rest := line[i+len(marker):]
			if j := strings.IndexByte(rest, '"'); j >= 0 {
				return rest[:j]
			}
			return rest
		}
		from = i + len(marker)
	}
}
