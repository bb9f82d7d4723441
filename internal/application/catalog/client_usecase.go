// Package catalog contiene los casos de uso de datos maestros: clientes y
// catálogo de servicios.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/factura-lv/internal/application/dto"
	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
)

// ClientUseCase CRUD de clientes.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create valida y persiste un cliente nuevo.
func (uc *ClientUseCase) Create(in dto.ClientRequest) (*dto.ClientResponse, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	now := time.Now()
	client := &entity.Client{
		ID:           uuid.New().String(),
		Name:         in.Name,
		RegNumber:    in.RegNumber,
		VatNumber:    in.VatNumber,
		LegalAddress: in.LegalAddress,
		PostalCode:   in.PostalCode,
		City:         in.City,
		BankName:     in.BankName,
		BankSwift:    in.BankSwift,
		BankAccount:  in.BankAccount,
		Email:        in.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Get devuelve un cliente por ID.
func (uc *ClientUseCase) Get(id string) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List devuelve una página de clientes.
func (uc *ClientUseCase) List(search string, page dto.PageRequest) (*dto.ClientListResponse, error) {
	page.DefaultPage()
	clients, total, err := uc.repo.List(search, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ClientListResponse{
		Items: make([]dto.ClientResponse, 0, len(clients)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, c := range clients {
		out.Items = append(out.Items, *toClientResponse(c))
	}
	return out, nil
}

// Update reemplaza los campos editables de un cliente.
func (uc *ClientUseCase) Update(id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	if err := validateClient(in); err != nil {
		return nil, err
	}
	client, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	client.Name = in.Name
	client.RegNumber = in.RegNumber
	client.VatNumber = in.VatNumber
	client.LegalAddress = in.LegalAddress
	client.PostalCode = in.PostalCode
	client.City = in.City
	client.BankName = in.BankName
	client.BankSwift = in.BankSwift
	client.BankAccount = in.BankAccount
	client.Email = in.Email
	client.UpdatedAt = time.Now()
	if err := uc.repo.Update(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Delete elimina un cliente. Las facturas ya creadas no se ven afectadas:
// llevan la parte compradora copiada por valor.
func (uc *ClientUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func validateClient(in dto.ClientRequest) error {
	if in.Name == "" {
		return domain.NewValidationError("name", "no puede estar vacío")
	}
	if in.RegNumber == "" && in.VatNumber == "" {
		return domain.NewValidationError("reg_number", "se requiere número de registro o de IVA")
	}
	return nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:           c.ID,
		Name:         c.Name,
		RegNumber:    c.RegNumber,
		VatNumber:    c.VatNumber,
		LegalAddress: c.LegalAddress,
		PostalCode:   c.PostalCode,
		City:         c.City,
		BankName:     c.BankName,
		BankSwift:    c.BankSwift,
		BankAccount:  c.BankAccount,
		Email:        c.Email,
	}
}
