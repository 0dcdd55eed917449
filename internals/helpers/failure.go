package helper

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// FailureKind: taksonomi kegagalan yang dikembalikan service ke layer view.
type FailureKind string

const (
	FailValidation      FailureKind = "validation"
	FailForbidden       FailureKind = "forbidden"
	FailUnauthenticated FailureKind = "unauthenticated"
	FailNotFound        FailureKind = "not_found"
	FailConflict        FailureKind = "conflict"
	FailGateway         FailureKind = "gateway"
)

func (k FailureKind) Status() int {
	switch k {
	case FailValidation:
		return fiber.StatusUnprocessableEntity
	case FailForbidden:
		return fiber.StatusForbidden
	case FailUnauthenticated:
		return fiber.StatusUnauthorized
	case FailNotFound:
		return fiber.StatusNotFound
	case FailConflict:
		return fiber.StatusConflict
	case FailGateway:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// Failure: hasil gagal dengan alasan yang bisa ditampilkan ke user.
type Failure struct {
	Kind    FailureKind
	Field   string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

func Validation(field, message string) *Failure {
	return &Failure{Kind: FailValidation, Field: field, Message: message}
}

func Forbidden(message string) *Failure {
	return &Failure{Kind: FailForbidden, Message: message}
}

func Unauthenticated(message string) *Failure {
	return &Failure{Kind: FailUnauthenticated, Message: message}
}

func NotFound(message string, err error) *Failure {
	return &Failure{Kind: FailNotFound, Message: message, Err: err}
}

func Conflict(message string, err error) *Failure {
	return &Failure{Kind: FailConflict, Message: message, Err: err}
}

func Gateway(message string, err error) *Failure {
	return &Failure{Kind: FailGateway, Message: message, Err: err}
}

// KindOf mengembalikan kind dari err, "" bila bukan *Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
