package docs_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DanielPopoola/classbook/internal/interfaces/rest/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwagger_RendersTemplate(t *testing.T) {
	doc, err := docs.Swagger()
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "2.0", parsed["swagger"])

	info := parsed["info"].(map[string]any)
	assert.Equal(t, "classbook", info["title"])
	assert.Equal(t, "1.0", info["version"])
}

func TestOpenAPI3_ConvertsAndValidates(t *testing.T) {
	doc, err := docs.OpenAPI3()
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{
		"/api/stripe/webhook",
		"/api/checkout",
		"/dashboard/classes/{id}",
		"/instructor-portal/classes/{id}/attendance",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	webhook := doc.Paths.Find("/api/stripe/webhook").Post
	require.NotNil(t, webhook)
	require.NotNil(t, webhook.RequestBody)
	assert.NotNil(t, webhook.RequestBody.Value.Content.Get("application/json"))
}

func TestHandler_ServesBothDocuments(t *testing.T) {
	handler := docs.Handler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, path := range []string{"/docs/swagger.json", "/docs/openapi.json"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.True(t, json.Valid(rec.Body.Bytes()), path)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	assert.Contains(t, parsed["openapi"], "3.0")
}
