package domain

import (
	"time"

	"github.com/vfg2006/sales-manager-api/pkg/validation"
)

const SalesCollection = "sales"

type Sale struct {
	ID         string     `json:"id"`
	Date       time.Time  `json:"date"`
	CustomerID string     `json:"customerId"`
	AirlineID  string     `json:"airlineId"`
	Value      float64    `json:"value"`
	Cost       float64    `json:"cost"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Profit é o valor da venda descontado o custo
func (s Sale) Profit() float64 {
	return s.Value - s.Cost
}

type SaleInput struct {
	Date       time.Time `json:"date" validate:"required"`
	CustomerID string    `json:"customerId" validate:"required"`
	AirlineID  string    `json:"airlineId" validate:"required"`
	Value      float64   `json:"value" validate:"gt=0"`
	Cost       float64   `json:"cost" validate:"gte=0"`
}

func (in SaleInput) Validate() error {
	return validation.Struct(in)
}

type SalePatch struct {
	Date       *time.Time `json:"date" validate:"omitnil,required"`
	CustomerID *string    `json:"customerId" validate:"omitnil,required"`
	AirlineID  *string    `json:"airlineId" validate:"omitnil,required"`
	Value      *float64   `json:"value" validate:"omitnil,gt=0"`
	Cost       *float64   `json:"cost" validate:"omitnil,gte=0"`
}

func (p SalePatch) Validate() error {
	return validation.Struct(p)
}

func (p SalePatch) IsEmpty() bool {
	return p.Date == nil && p.CustomerID == nil && p.AirlineID == nil && p.Value == nil && p.Cost == nil
}

// SaleRow é a venda pronta para exibição, com as referências resolvidas
type SaleRow struct {
	Sale
	CustomerName string  `json:"customerName"`
	AirlineName  string  `json:"airlineName"`
	Profit       float64 `json:"profit"`
}

type SalesSummary struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
	TotalCost  float64 `json:"totalCost"`
	Profit     float64 `json:"profit"`
}
