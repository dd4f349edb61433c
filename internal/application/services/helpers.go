package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/DanielPopoola/classbook/internal/application"
	"github.com/DanielPopoola/classbook/internal/domain"
	"github.com/go-playground/validator"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// validateCommand runs struct validation and reports failures per field.
func validateCommand(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return application.NewInvalidInputError(err)
	}
	return nil
}

// invalidField reports a single rejected field.
func invalidField(field, reason string, err error) error {
	svcErr := application.NewInvalidInputError(err)
	svcErr.Details = map[string]string{field: reason}
	return svcErr
}

// mapRepoError translates persistence failures into service errors.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := application.IsServiceError(err); ok {
		return err
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		var svcErr *application.ServiceError
		switch domainErr.Code {
		case domain.ErrCodeNotFound:
			svcErr = application.NewNotFoundError(err)
		case domain.ErrCodeInvalidAmount, domain.ErrCodeMissingRequiredField, domain.ErrCodeNoAttendance:
			svcErr = application.NewInvalidInputError(err)
		default:
			svcErr = application.NewConflictError(err)
		}
		svcErr.Message = domainErr.Message
		return svcErr
	}

	return application.NewInternalError(err)
}

func parseClock(field, value string) (time.Time, error) {
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return time.Time{}, invalidField(field, "time", fmt.Errorf("%s must be HH:MM: %w", field, err))
	}
	return t, nil
}

// uniqueIDs drops repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
