package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/path-greeter/internal/http/v1/greeting"
	"github.com/janisto/path-greeter/internal/platform/respond"
)

// Operational endpoints live below MetaPrefix so that every single-segment
// path is left to the greeting route.
const (
	MetaPrefix  = "/meta"
	DocsPath    = MetaPrefix + "/docs"
	OpenAPIPath = MetaPrefix + "/openapi"
	HealthPath  = MetaPrefix + "/health"
)

// NewConfig returns the Huma configuration for the greeter API.
func NewConfig(version string) huma.Config {
	cfg := huma.DefaultConfig("Greeter API", version)
	cfg.DocsPath = DocsPath
	cfg.OpenAPIPath = OpenAPIPath
	cfg.SchemasPath = respond.SchemasPath
	cfg.Info.Description = "Answers GET /{name} with the plain-text greeting `Hello {name}`."

	// Error bodies are negotiated like the handlers outside Huma do.
	cfg.OnAddOperation = append(cfg.OnAddOperation, func(_ *huma.OpenAPI, op *huma.Operation) {
		for _, resp := range op.Responses {
			if resp.Content == nil {
				continue
			}
			if problem, ok := resp.Content["application/problem+json"]; ok {
				resp.Content["application/problem+cbor"] = problem
			}
		}
	})
	return cfg
}

// Register wires all v1 routes into the provided API router.
func Register(api huma.API) {
	greeting.Register(api)
}
