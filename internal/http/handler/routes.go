package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"linkvault/internal/http/middleware"
	"linkvault/internal/service"
)

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, vaults service.VaultService, auth service.AuthService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/register", Register(auth))
	app.Post("/auth/login", Login(auth))
	app.Get("/auth/me", middleware.RequireAuth(auth), Me())

	// Uploads accept an optional session: a valid token makes the caller the
	// owner, anything else falls back to an anonymous entry.
	app.Post("/upload", middleware.OptionalAuth(auth), CreateVault(vaults))

	app.Get("/v/:id", ViewVault(vaults))
	app.Get("/v/:id/download", DownloadVault(vaults))
	app.Delete("/v/:id", middleware.OptionalAuth(auth), DeleteVault(vaults))

	me := app.Group("/me", middleware.RequireAuth(auth))
	me.Get("/vaults", ListOwnedVaults(vaults))
	me.Delete("/vaults/:id", DeleteOwnedVault(vaults))
}
