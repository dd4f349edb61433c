package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/interfaces/rest"
)

// Timeout bounds each request. Handlers see the deadline on the request
// context; a handler that overruns gets a TIMEOUT body.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	_, body := rest.BuildErrorResponse(application.NewTimeoutError())
	msg, _ := json.Marshal(body)

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(msg))
	}
}
