package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docuvault/internal/http/middleware"
	"docuvault/internal/multipart"
	"docuvault/internal/service"
)

// pageParams parses limit/offset. On a bad value it writes the 400 response
// itself and reports ok=false; the caller must stop.
func pageParams(c *fiber.Ctx) (limit, offset int, ok bool, err error) {
	limit, convErr := strconv.Atoi(c.Query("limit", "10"))
	if convErr != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, convErr = strconv.Atoi(c.Query("offset", "0"))
	if convErr != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, true, nil
}

func uploadedBy(c *fiber.Ctx) string {
	if ident := middleware.CallerIdentity(c); ident != nil {
		return ident.ID
	}
	return ""
}

// ListDocuments returns documents with limit/offset pagination. A non-empty
// `q` query switches to search over name, brand, and model.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pageParams(c)
		if !ok {
			return err
		}

		var res *service.DocumentListResult
		var svcErr error
		if term := c.Query("q"); term != "" {
			res, svcErr = svc.Search(c.UserContext(), term, limit, offset)
		} else {
			res, svcErr = svc.List(c.UserContext(), limit, offset)
		}
		if svcErr != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// UploadDocument accepts a multipart form with a `document` JSON field for
// metadata and a `file` field with the binary content. The body is parsed
// with the byte-level form parser so binary payloads survive untouched.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		boundary, err := multipart.Boundary(c.Get(fiber.HeaderContentType))
		if err != nil {
			return writeServiceError(c, err)
		}

		form, err := multipart.Parse(c.Body(), boundary)
		if err != nil {
			return writeServiceError(c, err)
		}

		var in service.DocumentInput
		if meta, ok := form["document"]; ok {
			if err := json.Unmarshal([]byte(meta.Value), &in); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_METADATA", "document field is not valid JSON")
			}
		}

		file, ok := form.File()
		if !ok {
			return writeServiceError(c, service.ErrFileRequired)
		}

		doc, err := svc.Upload(c.UserContext(), in, file.Content, file.Filename, file.ContentType, uploadedBy(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// CreateDocument records a document whose file was already uploaded through
// a presigned URL; the JSON body carries metadata plus file_url.
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := svc.Create(c.UserContext(), in, uploadedBy(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns a single document by id.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(doc)
	}
}

// UpdateDocument replaces a document's metadata.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(doc)
	}
}

// DeleteDocument soft-deletes a document and removes its stored object.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadURL returns a time-limited GET URL for a document's file.
func DownloadURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.DownloadURL(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"download_url": url})
	}
}

// UploadURL mints a new document id and a time-limited PUT URL for it. The
// client uploads directly to storage, then calls CreateDocument.
func UploadURL(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			ContentType string `json:"content_type"`
		}
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		ticket, err := svc.UploadURL(c.UserContext(), req.ContentType)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(ticket)
	}
}
