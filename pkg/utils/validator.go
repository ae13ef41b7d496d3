package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterJSONFieldNames 校验错误中使用 json 字段名, 例如 project_key 而不是 ProjectKey
func RegisterJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

// FormatValidationError 格式化绑定错误, 多个字段错误以 "; " 连接
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatFieldError(e))
		}
		return strings.Join(messages, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be %s", typeErr.Field, typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "invalid JSON format"
	}

	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}

	return err.Error()
}

// formatFieldError 数值字段与字符串字段的 min/max 含义不同
func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	numeric := isNumericKind(e.Kind())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "min":
		if numeric {
			return fmt.Sprintf("field '%s' must be at least %s", field, e.Param())
		}
		return fmt.Sprintf("field '%s' must be at least %s characters", field, e.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("field '%s' must be at most %s", field, e.Param())
		}
		return fmt.Sprintf("field '%s' must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, e.Param())
	case "url", "http_url":
		return fmt.Sprintf("field '%s' must be a valid URL", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("field '%s' must be a valid UUID", field)
	case "gte":
		return fmt.Sprintf("field '%s' must be greater than or equal to %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("field '%s' must be less than or equal to %s", field, e.Param())
	default:
		return fmt.Sprintf("field '%s' validation failed on '%s' tag", field, e.Tag())
	}
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
