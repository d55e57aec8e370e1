package domain

import (
	"time"

	"github.com/vfg2006/sales-manager-api/pkg/validation"
)

const AirlinesCollection = "airlines"

type Airline struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type AirlineInput struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

func (in AirlineInput) Validate() error {
	return validation.Struct(in)
}

type AirlinePatch struct {
	Name *string `json:"name" validate:"omitnil,required,min=2,max=50"`
}

func (p AirlinePatch) Validate() error {
	return validation.Struct(p)
}

func (p AirlinePatch) IsEmpty() bool {
	return p.Name == nil
}
