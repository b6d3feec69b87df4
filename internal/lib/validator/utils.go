package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	govalidator "github.com/go-playground/validator/v10"
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
)

// New returns a validator with the project's custom rules registered.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("strongpassword", ValidateStrongPassword); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("mailshape", ValidateMailShape); err != nil {
		panic(err)
	}
	return v
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := indirectType(obj)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		jsonName := strings.Split(tag, ",")[0]
		if jsonName != "" {
			return jsonName
		}
	}
	return camelToSnake(origFieldName)
}

func indirectType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		var verrs govalidator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); !ok {
			return map[string]string{"_": err.Error()}
		}
		validationErrs = ProcessValidationErrors(obj, verrs)
	}
	return
}

func asValidationErrors(err error, dst *govalidator.ValidationErrors) bool {
	verrs, ok := err.(govalidator.ValidationErrors)
	if ok {
		*dst = verrs
	}
	return ok
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := indirectType(obj)
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required":
			errorMsg = "Este campo es obligatorio"
		case "max":
			errorMsg = fmt.Sprintf("El valor máximo es %s", err.Param())
		case "min":
			errorMsg = fmt.Sprintf("El valor mínimo es %s", err.Param())
		case "gte":
			errorMsg = fmt.Sprintf("El valor debe ser mayor o igual a %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("El valor debe ser menor o igual a %s", err.Param())
		case "eqfield", "eq":
			errorMsg = fmt.Sprintf("El valor debe ser igual a %s", err.Param())
		case "email", "mailshape":
			errorMsg = "Correo electrónico inválido"
		case "strongpassword":
			errorMsg = "La contraseña no cumple con los requisitos mínimos"
		case "uuid":
			errorMsg = "Identificador inválido"
		default:
			errorMsg = "Este campo es inválido"
		}
	}
	return
}

// CUSTOM VALIDATORS

// PasswordRules reports which of the reset-password requirements s satisfies.
type PasswordRules struct {
	MinLength      bool
	HasUpperCase   bool
	HasLowerCase   bool
	HasNumber      bool
	HasSpecialChar bool
}

func (r PasswordRules) OK() bool {
	return r.MinLength && r.HasUpperCase && r.HasLowerCase && r.HasNumber && r.HasSpecialChar
}

func CheckPassword(password string) PasswordRules {
	return PasswordRules{
		MinLength:      utf8.RuneCountInString(password) >= 8,
		HasUpperCase:   upperRe.MatchString(password),
		HasLowerCase:   lowerRe.MatchString(password),
		HasNumber:      digitRe.MatchString(password),
		HasSpecialChar: specialRe.MatchString(password),
	}
}

func ValidateStrongPassword(fl govalidator.FieldLevel) bool {
	return CheckPassword(fl.Field().String()).OK()
}

// IsMailShape is the minimal email check: exactly one '@' and a dot in the domain.
func IsMailShape(email string) bool {
	if strings.Count(email, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" || domain == "" {
		return false
	}
	return strings.Contains(domain, ".")
}

func ValidateMailShape(fl govalidator.FieldLevel) bool {
	return IsMailShape(fl.Field().String())
}
