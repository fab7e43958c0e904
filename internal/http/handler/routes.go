package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docuvault/internal/http/middleware"
	"docuvault/internal/model"
	"docuvault/internal/service"
)

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, authSvc service.AuthService, docSvc service.DocumentService, commSvc service.CommunityService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := app.Group("/auth")
	auth.Post("/register", Register(authSvc))
	auth.Post("/login", Login(authSvc))
	auth.Post("/verify-code", VerifyEmail(authSvc))
	auth.Post("/resend-code", ResendCode(authSvc))
	auth.Get("/profile", middleware.RequireAuth(authSvc), Profile(authSvc))

	app.Put("/users/:id/role",
		middleware.RequireAuth(authSvc), middleware.RequireAdmin(), UpdateUserRole(authSvc))

	// Reads require a verified account; writes additionally require a
	// member or admin role.
	docs := app.Group("/documents", middleware.RequireAuth(authSvc), middleware.RequireVerified())
	docs.Get("/", ListDocuments(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Get("/:id/download-url", DownloadURL(docSvc))

	writer := middleware.RequireRole(model.RoleMember, model.RoleAdmin)
	docs.Post("/", writer, CreateDocument(docSvc))
	docs.Post("/upload", writer, UploadDocument(docSvc))
	docs.Post("/upload-url", writer, UploadURL(docSvc))
	docs.Put("/:id", writer, UpdateDocument(docSvc))
	docs.Delete("/:id", writer, DeleteDocument(docSvc))

	communities := app.Group("/communities", middleware.RequireAuth(authSvc), middleware.RequireVerified())
	communities.Get("/", ListCommunities(commSvc))
	communities.Get("/:number", GetCommunity(commSvc))
}
