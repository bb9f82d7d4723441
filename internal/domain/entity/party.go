package entity

// Party identifica a una parte de la factura (emisor o comprador).
// Se referencia por valor al momento de exportar: el núcleo no es dueño
// de los datos maestros de clientes ni de la configuración del emisor.
type Party struct {
	Name         string // razón social / RegistrationName
	RegNumber    string // número de registro mercantil (LV: 11 dígitos)
	VatNumber    string // NIF-IVA (ej. "LV40003567907"); vacío si no es contribuyente de IVA
	LegalAddress string
	PostalCode   string
	City         string
	CountryCode  string // ISO 3166-1 alpha-2; "LV" por defecto
	BankName     string
	BankSwift    string // BIC
	BankAccount  string // IBAN
	Email        string
	Phone        string
}

// EndpointID devuelve el identificador de punto final PEPPOL y su esquema:
// 9936 (NIF-IVA letón) si hay número de IVA, 0184 (registro mercantil) si no.
func (p Party) EndpointID() (scheme, id string) {
	if p.VatNumber != "" {
		return "9936", p.VatNumber
	}
	return "0184", p.RegNumber
}
