package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/valyala/fasthttp"

	"docflow/docs"
	"docflow/internal/http/middleware"
	"docflow/internal/identity"
	"docflow/internal/service"
)

// RegisterAuthRoutes attaches the credential exchange and user administration endpoints.
func RegisterAuthRoutes(app fiber.Router, users service.UserService, tokens TokenIssuer) {
	auth := app.Group("/auth")
	auth.Post("/signup", Signup(users))
	auth.Post("/token", IssueToken(users, tokens))
	auth.Post("/login", IssueToken(users, tokens))
	auth.Get("/me", middleware.RequireAuthenticated(), Me())

	admin := app.Group("/admin/users", middleware.RequireRole(identity.RoleAdmin))
	admin.Get("/", ListUsers(users))
	admin.Post("/", CreateUser(users))
	admin.Get("/:username", GetUser(users))
	admin.Post("/:username", CreateUser(users))
	admin.Put("/:username", UpdateUser(users))
	admin.Delete("/:username", DeleteUser(users))
}

// DocumentRoutes groups the services behind the document API.
type DocumentRoutes struct {
	Departments service.DepartmentService
	Categories  service.CategoryService
	Memberships service.MembershipService
	Documents   service.DocumentService
	// InternalKey guards the translate endpoint; empty disables the check.
	InternalKey string
}

// RegisterDocumentRoutes attaches the department, category and document endpoints under /api/v1.
func RegisterDocumentRoutes(app fiber.Router, r DocumentRoutes) {
	authenticated := middleware.RequireAuthenticated()
	admin := middleware.RequireRole(identity.RoleAdmin)

	// called by the translation worker without a user identity
	app.Patch("/api/v1/documents/:id/translate", middleware.RequireInternalToken(r.InternalKey), TranslateDocument(r.Documents))

	v1 := app.Group("/api/v1")

	dep := v1.Group("/departments")
	dep.Get("/", authenticated, ListDepartments(r.Departments))
	dep.Post("/", admin, CreateDepartment(r.Departments))
	dep.Get("/mine", authenticated, MyDepartments(r.Memberships))
	dep.Get("/:id", authenticated, GetDepartment(r.Departments))
	dep.Put("/:id", admin, UpdateDepartment(r.Departments))
	dep.Delete("/:id", admin, DeleteDepartment(r.Departments))
	dep.Get("/:id/users", admin, DepartmentUsers(r.Memberships))
	dep.Post("/:id/users", admin, AssignUser(r.Memberships))
	dep.Delete("/:id/users/:userId", admin, UnassignUser(r.Memberships))

	cat := v1.Group("/categories")
	cat.Get("/", authenticated, ListCategories(r.Categories))
	cat.Post("/", admin, CreateCategory(r.Categories))
	cat.Get("/:id", authenticated, GetCategory(r.Categories))
	cat.Put("/:id", admin, UpdateCategory(r.Categories))
	cat.Delete("/:id", admin, DeleteCategory(r.Categories))

	documents := v1.Group("/documents")
	documents.Post("/", authenticated, CreateDocument(r.Documents))
	documents.Get("/", authenticated, ListMyDocuments(r.Documents))
	documents.Get("/all", admin, ListAllDocuments(r.Documents))
	documents.Get("/department/:id", authenticated, ListDepartmentDocuments(r.Documents))
	documents.Get("/:id", authenticated, GetDocument(r.Documents))
	documents.Get("/:id/download", authenticated, DownloadDocument(r.Documents))
	documents.Delete("/:id", admin, DeleteDocument(r.Documents))
}

// GatewayRoutes names the upstream services of the gateway.
type GatewayRoutes struct {
	AuthURL     string
	DocumentURL string
	Client      *fasthttp.Client
	Timeout     time.Duration
}

// RegisterGatewayRoutes forwards /auth and /admin to the auth service and /api to the document service.
func RegisterGatewayRoutes(app fiber.Router, r GatewayRoutes) {
	if r.Client == nil {
		r.Client = newUpstreamClient()
	}
	if r.Timeout <= 0 {
		r.Timeout = 30 * time.Second
	}
	toAuth := Forward(r.AuthURL, r.Client, r.Timeout)
	toDocuments := Forward(r.DocumentURL, r.Client, r.Timeout)

	app.All("/auth/*", toAuth)
	app.All("/admin/*", toAuth)
	app.All("/api/*", BlockInternal(), toDocuments)
}

// RegisterSystemRoutes attaches liveness, readiness and metrics endpoints.
func RegisterSystemRoutes(app fiber.Router, metrics fiber.Handler, checks ...Check) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/health", HealthCheck(checks...))
	if metrics != nil {
		app.Get("/metrics", metrics)
	}
}

// Swagger serves the UI with the host and scheme the request arrived with.
func Swagger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	}
}
