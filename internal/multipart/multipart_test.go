package multipart

import (
	"bytes"
	stdmultipart "mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundary(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
		wantErr     bool
	}{
		{
			name:        "plain boundary",
			contentType: "multipart/form-data; boundary=----WebKitFormBoundaryABC123",
			want:        "----WebKitFormBoundaryABC123",
		},
		{
			name:        "quoted boundary",
			contentType: `multipart/form-data; boundary="xyz"`,
			want:        "xyz",
		},
		{
			name:        "boundary among other params",
			contentType: "multipart/form-data; charset=utf-8; boundary=bnd",
			want:        "bnd",
		},
		{
			name:        "case-insensitive media type",
			contentType: "Multipart/Form-Data; Boundary=bnd",
			want:        "bnd",
		},
		{
			name:        "missing header",
			contentType: "",
			wantErr:     true,
		},
		{
			name:        "wrong media type",
			contentType: "application/json",
			wantErr:     true,
		},
		{
			name:        "no boundary parameter",
			contentType: "multipart/form-data; charset=utf-8",
			wantErr:     true,
		},
		{
			name:        "empty boundary value",
			contentType: "multipart/form-data; boundary=",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Boundary(tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRequest)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// buildForm assembles a multipart body with the standard library writer so
// parsing can be checked against known-good framing.
func buildForm(t *testing.T, textFields map[string]string, fileName, fileType string, fileContent []byte) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := stdmultipart.NewWriter(&buf)
	for k, v := range textFields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + fileName + `"`}
		h["Content-Type"] = []string{fileType}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.Boundary(), buf.Bytes()
}

func TestParse_TextAndFileRoundTrip(t *testing.T) {
	content := []byte("%PDF-1.4 fake pdf body")
	boundary, body := buildForm(t,
		map[string]string{"document": `{"name":"Manual X","brand":"Acme","model":"Z1"}`},
		"manual.pdf", "application/pdf", content,
	)

	form, err := Parse(body, boundary)
	require.NoError(t, err)
	require.Len(t, form, 2)

	doc := form["document"]
	assert.False(t, doc.IsFile())
	assert.Equal(t, `{"name":"Manual X","brand":"Acme","model":"Z1"}`, doc.Value)

	file, ok := form.File()
	require.True(t, ok)
	assert.Equal(t, "file", file.Name)
	assert.Equal(t, "manual.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, content, file.Content)
	assert.Equal(t, int64(len(content)), file.Size())
}

func TestParse_BinaryContentLossless(t *testing.T) {
	// Content contains CRLF pairs, double CRLFs, dashes, and bytes that look
	// like boundary fragments at misaligned offsets. Extraction must be
	// byte-for-byte exact.
	content := []byte("\r\n--almost-a-boundary\r\n\r\n")
	content = append(content, 0x00, 0xff, 0x0d, 0x0a, 0x2d, 0x2d, 0x89, 0x50)
	content = append(content, []byte("--")...)

	boundary, body := buildForm(t, nil, "blob.bin", "application/octet-stream", content)

	form, err := Parse(body, boundary)
	require.NoError(t, err)

	file, ok := form.File()
	require.True(t, ok)
	assert.True(t, bytes.Equal(content, file.Content), "file bytes must survive parsing unchanged")
}

func TestParse_FileContentTypeDefaults(t *testing.T) {
	body := []byte("--bnd\r\n" +
		`Content-Disposition: form-data; name="file"; filename="raw.dat"` + "\r\n" +
		"\r\n" +
		"payload\r\n" +
		"--bnd--\r\n")

	form, err := Parse(body, "bnd")
	require.NoError(t, err)

	file, ok := form.File()
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", file.ContentType)
	assert.Equal(t, []byte("payload"), file.Content)
}

func TestParse_TextFieldTrimmed(t *testing.T) {
	body := []byte("--bnd\r\n" +
		`Content-Disposition: form-data; name="note"` + "\r\n" +
		"\r\n" +
		"  padded value \r\n" +
		"--bnd--\r\n")

	form, err := Parse(body, "bnd")
	require.NoError(t, err)
	assert.Equal(t, "padded value", form["note"].Value)
}

func TestParse_EdgeCases(t *testing.T) {
	t.Run("empty body yields empty form", func(t *testing.T) {
		form, err := Parse(nil, "bnd")
		assert.NoError(t, err)
		assert.Empty(t, form)
	})

	t.Run("boundary absent from body yields empty form", func(t *testing.T) {
		form, err := Parse([]byte("no boundaries here"), "bnd")
		assert.NoError(t, err)
		assert.Empty(t, form)
	})

	t.Run("missing close marker falls back to segment end", func(t *testing.T) {
		body := []byte("--bnd\r\n" +
			`Content-Disposition: form-data; name="file"; filename="x.bin"` + "\r\n" +
			"Content-Type: application/octet-stream\r\n" +
			"\r\n" +
			"dangling")

		form, err := Parse(body, "bnd")
		require.NoError(t, err)
		file, ok := form.File()
		require.True(t, ok)
		assert.Equal(t, []byte("dangling"), file.Content)
	})

	t.Run("segment without header separator is skipped", func(t *testing.T) {
		body := []byte("--bnd\r\njunk-without-separator\r\n--bnd--\r\n")
		form, err := Parse(body, "bnd")
		assert.NoError(t, err)
		assert.Empty(t, form)
	})

	t.Run("filename attribute does not leak into name", func(t *testing.T) {
		body := []byte("--bnd\r\n" +
			`Content-Disposition: form-data; name="upload"; filename="evil.pdf"` + "\r\n" +
			"\r\n" +
			"x\r\n" +
			"--bnd--\r\n")

		form, err := Parse(body, "bnd")
		require.NoError(t, err)
		f := form["upload"]
		assert.Equal(t, "upload", f.Name)
		assert.Equal(t, "evil.pdf", f.Filename)
	})
}
