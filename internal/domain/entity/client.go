package entity

import "time"

// Client es un cliente del catálogo (datos maestros del comprador).
type Client struct {
	ID           string
	Name         string
	RegNumber    string
	VatNumber    string
	LegalAddress string
	PostalCode   string
	City         string
	BankName     string
	BankSwift    string
	BankAccount  string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AsParty proyecta el cliente como parte compradora para exportación.
func (c *Client) AsParty() Party {
	return Party{
		Name:         c.Name,
		RegNumber:    c.RegNumber,
		VatNumber:    c.VatNumber,
		LegalAddress: c.LegalAddress,
		PostalCode:   c.PostalCode,
		City:         c.City,
		CountryCode:  "LV",
		BankName:     c.BankName,
		BankSwift:    c.BankSwift,
		BankAccount:  c.BankAccount,
		Email:        c.Email,
	}
}
