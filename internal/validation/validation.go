// Package validation wraps go-playground/validator so every request DTO is
// checked by one call that returns a structured list of field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskhub/internal/apperrors"
	"taskhub/internal/models"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so errors line up with request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		switch models.Role(fl.Field().String()) {
		case models.RoleAdmin, models.RoleUser:
			return true
		}
		return false
	})
	mustRegister(v, "taskstatus", func(fl validator.FieldLevel) bool {
		switch models.TaskStatus(fl.Field().String()) {
		case models.StatusTodo, models.StatusInProgress, models.StatusDone:
			return true
		}
		return false
	})
	mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
		switch models.Priority(fl.Field().String()) {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
			return true
		}
		return false
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates dto and returns a *apperrors.ValidationError listing every
// rejected field, or nil.
func (v *Validator) Struct(dto any) error {
	err := v.v.Struct(dto)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &apperrors.ValidationError{Fields: make([]apperrors.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, apperrors.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "role":
		return f + " must be one of: admin, user"
	case "taskstatus":
		return f + " must be one of: todo, in_progress, done"
	case "priority":
		return f + " must be one of: low, medium, high, urgent"
	case "uuid4", "uuid":
		return f + " must be a valid id"
	default:
		return fmt.Sprintf("%s failed %s validation", f, fe.Tag())
	}
}
