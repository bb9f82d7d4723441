package repository

import "github.com/tu-usuario/factura-lv/internal/domain/entity"

// ServiceRepository define el puerto de persistencia para el catálogo de servicios.
type ServiceRepository interface {
	Create(service *entity.Service) error
	GetByID(id string) (*entity.Service, error)
	List(search string, limit, offset int) ([]*entity.Service, int, error)
	Update(service *entity.Service) error
	Delete(id string) error
}
