// Package swagger serves the OpenAPI document of the status API and a
// Swagger UI to browse it.
package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Prefix is the path the UI and document are mounted under.
const Prefix = "/swagger/"

// Register attaches the Swagger UI and document routes to mux.
//
//	GET /swagger/index.html -> Swagger UI
//	GET /swagger/doc.json   -> OpenAPI document
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle(Prefix, httpSwagger.Handler(
		httpSwagger.URL(Prefix+"doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
}
