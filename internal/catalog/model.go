package catalog

import (
	"time"

	"github.com/MikeMC777/cafe-pos/internal/money"
)

type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Price is kept as NUMERIC text to avoid float rounding.
	Price     string    `json:"price"`
	Category  string    `json:"category,omitempty"`
	Available bool      `json:"available"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UnitPrice is Price in integer currency units.
func (p Product) UnitPrice() int64 { return money.Amount(p.Price) }

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name      string `json:"name"      example:"Cà phê sữa đá"`
	Price     string `json:"price"     example:"25000"`
	Category  string `json:"category"  example:"coffee"`
	Available *bool  `json:"available" example:"true"`
	ImageURL  string `json:"imageUrl"`
}

// UpdateProductRequest payload of partial update. Empty fields are kept.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Category  string `json:"category"`
	Available *bool  `json:"available"`
	ImageURL  string `json:"imageUrl"`
}
