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
    <title>filmatlas — Swagger</title>
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

// Minimal OpenAPI document describing the main endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "filmatlas", "version": "v1.0.0" },
  "paths": {
    "/user/register": {
      "post": { "summary": "Create an account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "user created" }, "400": { "description": "incomplete or invalid body" }, "409": { "description": "user already exists" } } }
    },
    "/user/login": {
      "post": { "summary": "Authenticate and receive a token pair", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"},"longExpiry":{"type":"boolean"},"bearerExpiresInSeconds":{"type":"integer"},"refreshExpiresInSeconds":{"type":"integer"}}}}}}, "responses": { "200": { "description": "bearer and refresh tokens" }, "401": { "description": "incorrect email or password" } } }
    },
    "/user/refresh": {
      "post": { "summary": "Rotate the refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new token pair" }, "401": { "description": "expired, invalid or already-used token" } } }
    },
    "/user/logout": {
      "post": { "summary": "Invalidate the refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "token invalidated" }, "401": { "description": "expired or invalid token" } } }
    },
    "/user/{email}/profile": {
      "get": { "summary": "View a profile (owner sees dob and address)", "responses": { "200": { "description": "profile" }, "404": { "description": "user not found" } } },
      "put": { "summary": "Update own profile", "responses": { "200": { "description": "updated profile" }, "400": { "description": "invalid body" }, "403": { "description": "not the owner" } } }
    },
    "/movies/search": {
      "get": { "summary": "Search the catalog", "parameters": [{"name":"title","in":"query"},{"name":"year","in":"query"},{"name":"page","in":"query"}], "responses": { "200": { "description": "paginated summaries" }, "400": { "description": "invalid year or page" } } }
    },
    "/movies/data/{imdbID}": {
      "get": { "summary": "Full movie record", "responses": { "200": { "description": "movie details" }, "404": { "description": "no such movie" } } }
    },
    "/people/{id}": {
      "get": { "summary": "Person with credited roles (requires bearer token)", "responses": { "200": { "description": "person" }, "401": { "description": "missing or bad token" }, "404": { "description": "no such person" } } }
    },
    "/posters/{imdbID}": {
      "get": { "summary": "Download the stored poster", "responses": { "200": { "description": "image/png" }, "404": { "description": "no poster" } } },
      "put": { "summary": "Upload a poster (requires bearer token)", "responses": { "200": { "description": "uploaded" }, "400": { "description": "not image/png" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" } } } }
  }
}`
