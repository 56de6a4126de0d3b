package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>notewall — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the board and auth endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "notewall", "version": "v0.1.0" },
  "paths": {
    "/api/auth/register": {
      "post": { "summary": "Register a user; credentials are mailed", "responses": { "201": { "description": "created" }, "409": { "description": "email taken" } } }
    },
    "/api/auth/login": {
      "post": { "summary": "Login with email and password", "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Refresh access token", "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/notes": {
      "get": { "summary": "List live notes", "responses": { "200": { "description": "notes" } } },
      "post": { "summary": "Create a note; position allocated when x/y omitted", "responses": { "201": { "description": "canonical note" }, "400": { "description": "empty title or content" } } }
    },
    "/api/notes/{id}": {
      "get": { "summary": "Get one note", "responses": { "200": { "description": "note" }, "404": { "description": "not found" } } },
      "put": { "summary": "Partially update a note", "responses": { "200": { "description": "canonical note" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Soft-delete a note", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/notes/reorganize": {
      "post": { "summary": "Assign every note a grid slot in creation order", "responses": { "200": { "description": "moved notes" } } }
    },
    "/api/notes/enhance": {
      "post": { "summary": "Rewrite note text via the enhancement service", "responses": { "200": { "description": "enhanced content" }, "502": { "description": "upstream failure" } } }
    },
    "/api/board/ws": {
      "get": { "summary": "Websocket push channel (sessionReady, noteCreated, noteUpdated, noteDeleted)", "responses": { "101": { "description": "switching protocols" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
