package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Member struct {
	ID        int32           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Credit    decimal.Decimal `json:"credit"`
	IsActive  bool            `json:"is_active"`
	CreatedOn time.Time       `json:"created_on"`
}
