// Package settings expone la configuración del emisor: un almacén
// clave-valor editable desde la UI, proyectado a tipos del dominio donde
// los casos de uso lo necesitan (la parte emisora de cada factura).
package settings

import (
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
)

// Claves reconocidas del almacén. Claves desconocidas se guardan igual:
// el backend no es el dueño del vocabulario completo de la UI.
const (
	KeyCompanyName  = "company_name"
	KeyRegNumber    = "reg_number"
	KeyVatNumber    = "vat_number"
	KeyLegalAddress = "legal_address"
	KeyPostalCode   = "postal_code"
	KeyCity         = "city"
	KeyCountryCode  = "country_code"
	KeyBankName     = "bank_name"
	KeyBankSwift    = "bank_swift"
	KeyBankAccount  = "bank_account"
	KeyEmail        = "email"
	KeyPhone        = "phone"
	KeySeriesPrefix = "invoice_series_prefix"
)

// UseCase casos de uso de configuración.
type UseCase struct {
	repo repository.SettingsRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.SettingsRepository) *UseCase {
	return &UseCase{repo: repo}
}

// GetAll devuelve todas las claves guardadas.
func (uc *UseCase) GetAll() (map[string]string, error) {
	return uc.repo.GetAll()
}

// Update hace upsert de las claves presentes. Nunca borra las ausentes.
func (uc *UseCase) Update(values map[string]string) error {
	return uc.repo.SetMany(values)
}

// IssuerParty proyecta la configuración como la parte emisora de las
// facturas. País por defecto LV.
func (uc *UseCase) IssuerParty() (entity.Party, error) {
	values, err := uc.repo.GetAll()
	if err != nil {
		return entity.Party{}, err
	}
	country := values[KeyCountryCode]
	if country == "" {
		country = "LV"
	}
	return entity.Party{
		Name:         values[KeyCompanyName],
		RegNumber:    values[KeyRegNumber],
		VatNumber:    values[KeyVatNumber],
		LegalAddress: values[KeyLegalAddress],
		PostalCode:   values[KeyPostalCode],
		City:         values[KeyCity],
		CountryCode:  country,
		BankName:     values[KeyBankName],
		BankSwift:    values[KeyBankSwift],
		BankAccount:  values[KeyBankAccount],
		Email:        values[KeyEmail],
		Phone:        values[KeyPhone],
	}, nil
}

// SeriesPrefix devuelve el prefijo de serie configurado, o def si no hay.
// Cambiar el prefijo no resetea el contador: la serie es la clave.
func (uc *UseCase) SeriesPrefix(def string) string {
	values, err := uc.repo.GetAll()
	if err != nil {
		return def
	}
	if p := values[KeySeriesPrefix]; p != "" {
		return p
	}
	return def
}
