package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/factura-lv/internal/application/dto"
	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/domain/repository"
)

// ServiceUseCase CRUD del catálogo de servicios. Los tipos de IVA del
// catálogo se validan contra el conjunto configurado: una entrada con tipo
// inválido produciría borradores siempre rechazados.
type ServiceUseCase struct {
	repo         repository.ServiceRepository
	allowedRates []decimal.Decimal
}

// NewServiceUseCase construye el caso de uso.
func NewServiceUseCase(repo repository.ServiceRepository, allowedRates []decimal.Decimal) *ServiceUseCase {
	return &ServiceUseCase{repo: repo, allowedRates: allowedRates}
}

// Create valida y persiste una entrada nueva.
func (uc *ServiceUseCase) Create(in dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := uc.validate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	svc := &entity.Service{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Unit:         in.Unit,
		DefaultPrice: in.DefaultPrice,
		VatRate:      in.VatRate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(svc); err != nil {
		return nil, err
	}
	return toServiceResponse(svc), nil
}

// Get devuelve una entrada por ID.
func (uc *ServiceUseCase) Get(id string) (*dto.ServiceResponse, error) {
	svc, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toServiceResponse(svc), nil
}

// List devuelve una página del catálogo.
func (uc *ServiceUseCase) List(search string, page dto.PageRequest) (*dto.ServiceListResponse, error) {
	page.DefaultPage()
	services, total, err := uc.repo.List(search, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ServiceListResponse{
		Items: make([]dto.ServiceResponse, 0, len(services)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, s := range services {
		out.Items = append(out.Items, *toServiceResponse(s))
	}
	return out, nil
}

// Update reemplaza los campos de una entrada.
func (uc *ServiceUseCase) Update(id string, in dto.ServiceRequest) (*dto.ServiceResponse, error) {
	if err := uc.validate(in); err != nil {
		return nil, err
	}
	svc, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	svc.Name = in.Name
	svc.Unit = in.Unit
	svc.DefaultPrice = in.DefaultPrice
	svc.VatRate = in.VatRate
	svc.UpdatedAt = time.Now()
	if err := uc.repo.Update(svc); err != nil {
		return nil, err
	}
	return toServiceResponse(svc), nil
}

// Delete elimina una entrada del catálogo.
func (uc *ServiceUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func (uc *ServiceUseCase) validate(in dto.ServiceRequest) error {
	if in.Name == "" {
		return domain.NewValidationError("name", "no puede estar vacío")
	}
	if in.DefaultPrice.IsNegative() {
		return domain.NewValidationError("default_price", "no puede ser negativo")
	}
	for _, rate := range uc.allowedRates {
		if in.VatRate.Equal(rate) {
			return nil
		}
	}
	return domain.NewValidationError("vat_rate", "tipo fuera del conjunto configurado")
}

func toServiceResponse(s *entity.Service) *dto.ServiceResponse {
	return &dto.ServiceResponse{
		ID:           s.ID,
		Name:         s.Name,
		Unit:         s.Unit,
		DefaultPrice: s.DefaultPrice,
		VatRate:      s.VatRate,
	}
}
