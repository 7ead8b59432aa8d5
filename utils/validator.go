package utils

import (
	"encoding/base64"
	"errors"
	"reflect"
	"slices"
	"strconv"
	"strings"

	val "github.com/go-playground/validator/v10"

	"hotel-frontdesk/failure"
)

var validate *val.Validate

var messages = map[string]string{
	"required":    "{field} is required",
	"gt":          "{field} must be greater than {param}",
	"gte":         "{field} must be greater than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"oneof":       "{field} must be one of {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"max":         "{field} must be less than or equal to {param}",
	"email":       "{field} must be a valid email address",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must not exceed {param}MB",
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	if err := validate.RegisterValidation("mimetypes", mimetypeValidation); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("maxfilesize", fileSizeValidation); err != nil {
		panic(err)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// DataURIContentType extracts the media type of a "data:<type>;base64," URI.
func DataURIContentType(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return ""
	}
	end := strings.Index(s, ";base64,")
	if end < len("data:") {
		return ""
	}
	return s[len("data:"):end]
}

// DecodeDataURI returns the content type and decoded bytes of a data URI.
func DecodeDataURI(s string) (string, []byte, error) {
	contentType := DataURIContentType(s)
	if contentType == "" {
		return "", nil, errors.New("not a base64 data uri")
	}
	raw := s[strings.Index(s, ";base64,")+len(";base64,"):]
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", nil, err
	}
	return contentType, data, nil
}

func mimetypeValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}
	contentType := DataURIContentType(str)
	if contentType == "" {
		return false
	}
	return slices.Contains(strings.Split(field.Param(), " "), contentType)
}

// fileSizeValidation compares the decoded size of a data URI with a limit in MB.
func fileSizeValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}
	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}
	payload := str
	if i := strings.Index(str, ";base64,"); i >= 0 {
		payload = str[i+len(";base64,"):]
	}
	size := base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload[max(0, len(payload)-2):], "=")
	return size <= int(maxSizeMB*1024*1024)
}

// ValidateStruct runs the `validate` tags of data and converts the first
// failing rule into a validation failure.
func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var valErrors val.ValidationErrors
	if errors.As(err, &valErrors) {
		for _, valErr := range valErrors {
			if msg := messages[valErr.Tag()]; msg != "" {
				msg = strings.ReplaceAll(msg, "{field}", valErr.Field())
				return strings.ReplaceAll(msg, "{param}", valErr.Param())
			}
		}
		return valErrors.Error()
	}
	return err.Error()
}
