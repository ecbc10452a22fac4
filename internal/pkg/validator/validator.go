package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// usernamePattern: буквы, цифры и @ . + - _
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidationError: ошибки по полям запроса, отдаются клиенту как details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msg := "validation failed:"
	for _, k := range keys {
		msg += fmt.Sprintf(" %s=%s", k, e.Fields[k])
	}
	return msg
}

// FieldError создаёт ValidationError для одного поля.
func FieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// В ошибках используем имена полей из json тегов
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		errors[fieldPath(fe)] = fe.Tag()
	}
	return errors
}

// fieldPath отрезает имя корневой структуры: "RecipeWriteRequest.ingredients[0].amount" -> "ingredients[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// Check: Validate, завёрнутый в error.
func Check(v interface{}) error {
	if fields := Validate(v); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}
