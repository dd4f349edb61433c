// Package docs serves the HTTP API description as Swagger 2.0 and, converted,
// as OpenAPI 3.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "classbook",
	Description:      "Class enrollment administration: gateway webhook, dashboard and instructor portal.",
	InfoInstanceName: "classbook",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Swagger returns the rendered Swagger 2.0 document.
func Swagger() (string, error) {
	return swag.ReadDoc(SwaggerInfo.InstanceName())
}

func OpenAPI3() (*openapi3.T, error) {
	doc, err := Swagger()
	if err != nil {
		return nil, fmt.Errorf("read swagger doc: %w", err)
	}

	var doc2 openapi2.T
	if err := json.Unmarshal([]byte(doc), &doc2); err != nil {
		return nil, fmt.Errorf("parse swagger doc: %w", err)
	}

	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("convert to openapi3: %w", err)
	}
	if err := openapi3.NewLoader().ResolveRefsIn(doc3, nil); err != nil {
		return nil, fmt.Errorf("resolve refs: %w", err)
	}
	return doc3, nil
}

var openAPI3JSON = sync.OnceValues(func() ([]byte, error) {
	doc, err := OpenAPI3()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
})

// Handler serves /docs/swagger.json and /docs/openapi.json.
func Handler(logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /docs/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := Swagger()
		if err != nil {
			logger.Error("render swagger doc", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})

	mux.HandleFunc("GET /docs/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		body, err := openAPI3JSON()
		if err != nil {
			logger.Error("render openapi doc", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	return mux
}
