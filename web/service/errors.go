package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dboika/folio/web/entity"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrNoSuchEmail            = errors.New("no such email")
	ErrWrongPassword          = errors.New("wrong password")
	ErrNotFound               = errors.New("not found")
	ErrDuplicateName          = errors.New("project name already taken")
	ErrForbidden              = errors.New("forbidden")
)

// ValidationError reports form fields that failed validation. Nothing was
// written when it is returned.
type ValidationError struct {
	Fields []entity.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Tag))
	}
	return "validation failed (" + strings.Join(parts, ", ") + ")"
}

func validateForm(form any) error {
	if errs := entity.Validate(form); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
