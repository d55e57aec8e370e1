// Package validation concentra as regras de formulário (campos obrigatórios,
// formatos e faixas numéricas) aplicadas antes de qualquer escrita remota.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

var (
	cpfRegex = regexp.MustCompile(`^\d{11}$`)

	once     sync.Once
	validate *validator.Validate
)

// FieldError descreve um campo inválido
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Usa o nome do campo JSON nas mensagens
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return cpfRegex.MatchString(fl.Field().String())
		})
	})

	return validate
}

// Struct valida uma struct anotada com tags `validate` e agrega todas as falhas
// em um único erro legível
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var result *multierror.Error
	for _, fe := range validationErrors {
		result = multierror.Append(result, &FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	result.ErrorFormat = formatErrors

	return result.ErrorOrNil()
}

// Fields extrai os erros por campo de um erro retornado por Struct
func Fields(err error) []*FieldError {
	merr, ok := err.(*multierror.Error)
	if !ok {
		return nil
	}

	fields := make([]*FieldError, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		if fe, ok := e.(*FieldError); ok {
			fields = append(fields, fe)
		}
	}
	return fields
}

// ValidateCPF aceita exatamente 11 dígitos
func ValidateCPF(cpf string) error {
	return variable(cpf, "cpf", "required,cpf")
}

// ValidateEmail valida a sintaxe do e-mail
func ValidateEmail(email string) error {
	return variable(email, "email", "required,email")
}

func variable(value any, field, tag string) error {
	err := instance().Var(value, tag)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err
	}

	fe := validationErrors[0]
	return &FieldError{
		Field:   field,
		Tag:     fe.Tag(),
		Message: messageFor(field, fe.Tag(), fe.Param()),
	}
}

func message(fe validator.FieldError) string {
	return messageFor(fe.Field(), fe.Tag(), fe.Param())
}

func messageFor(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s é obrigatório", field)
	case "cpf":
		return fmt.Sprintf("%s deve conter exatamente 11 dígitos", field)
	case "email":
		return fmt.Sprintf("%s possui formato de e-mail inválido", field)
	case "min":
		return fmt.Sprintf("%s deve ter pelo menos %s caracteres", field, param)
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", field, param)
	case "gt":
		return fmt.Sprintf("%s deve ser maior que %s", field, param)
	case "gte":
		return fmt.Sprintf("%s não pode ser menor que %s", field, param)
	default:
		return fmt.Sprintf("%s é inválido (%s)", field, tag)
	}
}

func formatErrors(errs []error) string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}
