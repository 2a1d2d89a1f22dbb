package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCompanyRequest alta de empresa.
type CreateCompanyRequest struct {
	Name    string `json:"name"`
	NIF     string `json:"nif"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// UpdateCompanyRequest actualización de datos de contacto de empresa.
// El NIF no se actualiza nunca por esta vía.
type UpdateCompanyRequest struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CompanyResponse empresa en respuestas.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NIF       string    `json:"nif"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse listado paginado de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateStoreRequest alta de tienda.
type CreateStoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// StoreResponse tienda en respuestas.
type StoreResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCustomerRequest alta de cliente.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	NIF     string `json:"nif,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	NIF       string    `json:"nif,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerListResponse listado paginado de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreatePetRequest alta de mascota.
type CreatePetRequest struct {
	CustomerID string     `json:"customer_id"`
	Name       string     `json:"name"`
	Species    string     `json:"species"`
	Breed      string     `json:"breed,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// PetResponse mascota en respuestas.
type PetResponse struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	CustomerID string     `json:"customer_id"`
	Name       string     `json:"name"`
	Species    string     `json:"species"`
	Breed      string     `json:"breed,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CreateProductRequest alta de producto o servicio.
type CreateProductRequest struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	IsService bool            `json:"is_service"`
	Price     decimal.Decimal `json:"price"`
	VATRate   decimal.Decimal `json:"vat_rate"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	IsService bool            `json:"is_service"`
	Price     decimal.Decimal `json:"price"`
	VATRate   decimal.Decimal `json:"vat_rate"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
