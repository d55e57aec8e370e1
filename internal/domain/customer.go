package domain

import (
	"time"

	"github.com/vfg2006/sales-manager-api/pkg/validation"
)

const CustomersCollection = "customers"

type Customer struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CPF       string     `json:"cpf"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// CustomerInput são os campos informados no cadastro de um cliente
type CustomerInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	CPF   string `json:"cpf" validate:"required,cpf"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

func (in CustomerInput) Validate() error {
	return validation.Struct(in)
}

// CustomerPatch é uma atualização parcial. O CPF é imutável após o cadastro.
type CustomerPatch struct {
	Name  *string `json:"name" validate:"omitnil,required,max=50"`
	Email *string `json:"email" validate:"omitnil,required,email"`
	Phone *string `json:"phone" validate:"omitnil,required"`
}

func (p CustomerPatch) Validate() error {
	return validation.Struct(p)
}

func (p CustomerPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}
