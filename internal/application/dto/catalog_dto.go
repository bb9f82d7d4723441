package dto

import "github.com/shopspring/decimal"

// ClientRequest body para POST/PUT /api/clients.
type ClientRequest struct {
	Name         string `json:"name"`
	RegNumber    string `json:"reg_number"`
	VatNumber    string `json:"vat_number,omitempty"`
	LegalAddress string `json:"legal_address"`
	PostalCode   string `json:"postal_code,omitempty"`
	City         string `json:"city,omitempty"`
	BankName     string `json:"bank_name,omitempty"`
	BankSwift    string `json:"bank_swift,omitempty"`
	BankAccount  string `json:"bank_account,omitempty"`
	Email        string `json:"email,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	RegNumber    string `json:"reg_number"`
	VatNumber    string `json:"vat_number,omitempty"`
	LegalAddress string `json:"legal_address"`
	PostalCode   string `json:"postal_code,omitempty"`
	City         string `json:"city,omitempty"`
	BankName     string `json:"bank_name,omitempty"`
	BankSwift    string `json:"bank_swift,omitempty"`
	BankAccount  string `json:"bank_account,omitempty"`
	Email        string `json:"email,omitempty"`
}

// ClientListResponse página de clientes.
type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// ServiceRequest body para POST/PUT /api/services.
type ServiceRequest struct {
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	VatRate      decimal.Decimal `json:"vat_rate"`
}

// ServiceResponse entrada del catálogo en respuestas.
type ServiceResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	VatRate      decimal.Decimal `json:"vat_rate"`
}

// ServiceListResponse página del catálogo.
type ServiceListResponse struct {
	Items []ServiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
