package application_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"service error", application.NewForbiddenError("no"), http.StatusForbidden},
		{"gateway", application.NewGatewayError(errors.New("reset")), http.StatusBadGateway},
		{"wrapped not found", fmt.Errorf("load: %w", domain.NewNotFoundError("class", "x")), http.StatusNotFound},
		{"no attendance", domain.NewNoAttendanceError(), http.StatusBadRequest},
		{"attendance recorded", domain.NewAttendanceRecordedError("b"), http.StatusConflict},
		{"duplicate event", domain.NewDuplicateEventError("evt"), http.StatusConflict},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusRequestTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, application.ToHTTPStatus(tc.err))
		})
	}
}

func TestToErrorCode_PrefersWrappedDomainCode(t *testing.T) {
	err := application.NewConflictError(domain.NewAttendanceRecordedError("b"))
	assert.Equal(t, domain.ErrCodeAttendanceRecorded, application.ToErrorCode(err))

	internal := application.NewInternalError(domain.NewNotFoundError("class", "x"))
	assert.Equal(t, application.ErrCodeInternal, application.ToErrorCode(internal))

	assert.Equal(t, application.ErrCodeInternal, application.ToErrorCode(errors.New("boom")))
}

func TestCategorizeError(t *testing.T) {
	assert.Equal(t, application.CategoryClientError, application.CategorizeError(application.NewInvalidInputError(nil)))
	assert.Equal(t, application.CategoryBusinessRule, application.CategorizeError(domain.NewInvalidStateError("x")))
	assert.Equal(t, application.CategoryTransient, application.CategorizeError(context.Canceled))
	assert.Equal(t, application.CategoryTransient, application.CategorizeError(application.NewGatewayError(nil)))
	assert.Equal(t, application.CategoryInfrastructure, application.CategorizeError(errors.New("boom")))
	assert.Equal(t, application.ErrorCategory(""), application.CategorizeError(nil))
}

func TestNewPage_Clamps(t *testing.T) {
	assert.Equal(t, application.Page{Limit: application.DefaultPageLimit}, application.NewPage(0, -3))
	assert.Equal(t, application.Page{Limit: application.MaxPageLimit, Offset: 10}, application.NewPage(1000, 10))
	assert.Equal(t, application.Page{Limit: 5, Offset: 5}, application.NewPage(5, 5))
}
