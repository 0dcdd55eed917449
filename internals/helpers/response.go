package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateStruct menjalankan tag `validate` pada DTO.
func ValidateStruct(v any) error {
	return validate.Struct(v)
}

// ValidateVar: validasi satu nilai, mis. ValidateVar(email, "required,email").
func ValidateVar(v any, tag string) error {
	return validate.Var(v, tag)
}

// ✅ Khusus error validasi (validator.v10)
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Invalid input")
	}

	errorsMap := make(map[string][]string)
	for _, fieldErr := range ve {
		name := strings.ToLower(fieldErr.Field())
		errorsMap[name] = append(errorsMap[name], fieldErr.Tag())
	}
	return JsonValidationError(c, errorsMap)
}
