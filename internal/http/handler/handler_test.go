package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"docuvault/internal/model"
	"docuvault/internal/service"
	serviceMocks "docuvault/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Name: "Manual X"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("search term switches to search", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "acme", 10, 0).
			Return(&service.DocumentListResult{Total: 0}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?q=acme", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).
			Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

// buildUpload assembles a multipart body with a JSON metadata field and a
// file part carrying an explicit content type.
func buildUpload(t *testing.T, meta string, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if meta != "" {
		require.NoError(t, w.WriteField("document", meta))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	meta := `{"name":"Manual X","brand":"Acme","model":"Z1"}`
	pdf := []byte("%PDF-1.7 data")

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Post("/documents/upload", UploadDocument(mockSvc))

		in := service.DocumentInput{Name: "Manual X", Brand: "Acme", Model: "Z1"}
		mockSvc.On("Upload", mock.Anything, in, pdf, "manual.pdf", "application/pdf", "").
			Return(&model.Document{ID: "gen-id", Name: "Manual X"}, nil).Once()

		body, contentType := buildUpload(t, meta, "manual.pdf", "application/pdf", pdf)
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing boundary", func(t *testing.T) {
		app := fiber.New()
		app.Post("/documents/upload", UploadDocument(new(serviceMocks.MockDocumentService)))

		req := httptest.NewRequest(http.MethodPost, "/documents/upload", strings.NewReader("x"))
		req.Header.Set("Content-Type", "multipart/form-data")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "MALFORMED_REQUEST", body.Error.Code)
	})

	t.Run("missing file part", func(t *testing.T) {
		app := fiber.New()
		app.Post("/documents/upload", UploadDocument(new(serviceMocks.MockDocumentService)))

		body, contentType := buildUpload(t, meta, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid metadata json", func(t *testing.T) {
		app := fiber.New()
		app.Post("/documents/upload", UploadDocument(new(serviceMocks.MockDocumentService)))

		body, contentType := buildUpload(t, "{not json", "manual.pdf", "application/pdf", pdf)
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var respBody errorPayload
		json.NewDecoder(resp.Body).Decode(&respBody)
		assert.Equal(t, "INVALID_METADATA", respBody.Error.Code)
	})

	t.Run("unsupported mime type", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := fiber.New()
		app.Post("/documents/upload", UploadDocument(mockSvc))

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything, "cat.gif", "image/gif", "").
			Return(nil, service.ErrUnsupportedMIME).Once()

		body, contentType := buildUpload(t, meta, "cat.gif", "image/gif", []byte("GIF89a"))
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})
}

func TestCreateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents", CreateDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		in := service.DocumentInput{
			Name: "Manual X", Brand: "Acme", Model: "Z1",
			FileURL: "https://pub.example.com/documents/id.pdf",
		}
		mockSvc.On("Create", mock.Anything, in, "").
			Return(&model.Document{ID: "gen-id"}, nil).Once()

		payload, _ := json.Marshal(in)
		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, "").
			Return(nil, service.ErrNameRequired).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "abc").
			Return(&model.Document{ID: "abc"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "missing").
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/missing", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Put("/documents/:id", UpdateDocument(mockSvc))

	in := service.DocumentInput{Name: "New name", Brand: "Acme", Model: "Z1"}
	mockSvc.On("Update", mock.Anything, "abc", in).
		Return(&model.Document{ID: "abc", Name: "New name"}, nil).Once()

	payload, _ := json.Marshal(in)
	req := httptest.NewRequest(http.MethodPut, "/documents/abc", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "abc").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "missing").Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/missing", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDownloadURL(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download-url", DownloadURL(mockSvc))

	mockSvc.On("DownloadURL", mock.Anything, "abc").
		Return("https://signed.example.com/documents/abc.pdf?sig=x", nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/documents/abc/download-url", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Contains(t, body["download_url"], "sig=")
}

func TestUploadURL(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/upload-url", UploadURL(mockSvc))

	mockSvc.On("UploadURL", mock.Anything, "application/pdf").
		Return(&service.UploadTicket{
			DocumentID: "doc-1",
			SignedURL:  "https://signed.example.com/put",
			ExpiresIn:  3600,
		}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/documents/upload-url",
		strings.NewReader(`{"content_type":"application/pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ticket service.UploadTicket
	json.NewDecoder(resp.Body).Decode(&ticket)
	assert.Equal(t, "doc-1", ticket.DocumentID)
}

func TestRegisterHandler(t *testing.T) {
	mockAuth := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/register", Register(mockAuth))

	t.Run("created", func(t *testing.T) {
		mockAuth.On("Register", mock.Anything, "new@example.com", "secret1", "Pat").
			Return(&service.AuthResult{
				User:  &model.User{ID: "u1", Email: "new@example.com"},
				Token: "jwt-token",
			}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register",
			strings.NewReader(`{"email":"new@example.com","password":"secret1","name":"Pat"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.AuthResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "jwt-token", result.Token)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockAuth.On("Register", mock.Anything, "taken@example.com", "secret1", "").
			Return(nil, service.ErrEmailTaken).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register",
			strings.NewReader(`{"email":"taken@example.com","password":"secret1"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestLoginHandler(t *testing.T) {
	mockAuth := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/login", Login(mockAuth))

	t.Run("success", func(t *testing.T) {
		mockAuth.On("Login", mock.Anything, "user@example.com", "secret1").
			Return(&service.AuthResult{
				User:  &model.User{ID: "u1"},
				Token: "jwt-token",
			}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"secret1"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockAuth.On("Login", mock.Anything, "user@example.com", "wrong").
			Return(nil, service.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"user@example.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestVerifyEmailHandler(t *testing.T) {
	mockAuth := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/verify-code", VerifyEmail(mockAuth))

	t.Run("success", func(t *testing.T) {
		mockAuth.On("VerifyCode", mock.Anything, "user@example.com", "123456").
			Return(&model.User{ID: "u1", IsVerified: true}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/verify-code",
			strings.NewReader(`{"email":"user@example.com","code":"123456"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("expired code", func(t *testing.T) {
		mockAuth.On("VerifyCode", mock.Anything, "user@example.com", "123456").
			Return(nil, service.ErrCodeExpired).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/verify-code",
			strings.NewReader(`{"email":"user@example.com","code":"123456"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusGone, resp.StatusCode)
	})

	t.Run("wrong code", func(t *testing.T) {
		mockAuth.On("VerifyCode", mock.Anything, "user@example.com", "000000").
			Return(nil, service.ErrCodeInvalid).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/verify-code",
			strings.NewReader(`{"email":"user@example.com","code":"000000"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUpdateUserRoleHandler(t *testing.T) {
	mockAuth := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Put("/users/:id/role", UpdateUserRole(mockAuth))

	mockAuth.On("UpdateRole", mock.Anything, "u2", model.RoleMember).
		Return(&model.User{ID: "u2", Role: model.RoleMember}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/users/u2/role",
		strings.NewReader(`{"role":"member"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockAuth.AssertExpectations(t)
}

func TestCommunityHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockCommunityService)
	app := fiber.New()
	app.Get("/communities", ListCommunities(mockSvc))
	app.Get("/communities/:number", GetCommunity(mockSvc))

	t.Run("list", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).
			Return([]model.Community{{Number: 1, Name: "North"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/communities", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("by number", func(t *testing.T) {
		mockSvc.On("GetByNumber", mock.Anything, 7).
			Return(&model.Community{Number: 7, Name: "East"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/communities/7", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad number", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/communities/abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRegisterRoutes_ProtectedWithoutToken(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, db,
		new(serviceMocks.MockAuthService),
		new(serviceMocks.MockDocumentService),
		new(serviceMocks.MockCommunityService))

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body errorPayload
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}
