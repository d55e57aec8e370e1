package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Name  string  `json:"name" validate:"required,max=5"`
	CPF   string  `json:"cpf" validate:"required,cpf"`
	Value float64 `json:"value" validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(form{Name: "Ana", CPF: "12345678901", Value: 1}))

	err := Struct(form{Name: "Ana Maria", CPF: "123.456.789-01"})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, "max", fields[0].Tag)
	assert.Equal(t, "cpf", fields[1].Field)
	assert.Equal(t, "value", fields[2].Field)

	assert.Equal(t,
		"name deve ter no máximo 5 caracteres; cpf deve conter exatamente 11 dígitos; value deve ser maior que 0",
		err.Error())
}

func TestFieldsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Fields(assert.AnError))
}

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		cpf     string
		wantTag string
	}{
		{cpf: "12345678901"},
		{cpf: "1234567890", wantTag: "cpf"},
		{cpf: "123456789012", wantTag: "cpf"},
		{cpf: "12345678901a", wantTag: "cpf"},
		{cpf: "123.456.789-01", wantTag: "cpf"},
		{cpf: "", wantTag: "required"},
	}

	for _, tt := range tests {
		t.Run(tt.cpf, func(t *testing.T) {
			err := ValidateCPF(tt.cpf)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "cpf", fe.Field)
			assert.Equal(t, tt.wantTag, fe.Tag)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ana@x.com"))
	assert.EqualError(t, ValidateEmail("notanemail"), "email possui formato de e-mail inválido")
	assert.EqualError(t, ValidateEmail("ana"), "email possui formato de e-mail inválido")
}
