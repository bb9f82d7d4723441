package repository

import "github.com/tu-usuario/factura-lv/internal/domain/entity"

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	// List busca por nombre o número de registro; devuelve página y total.
	List(search string, limit, offset int) ([]*entity.Client, int, error)
	Update(client *entity.Client) error
	Delete(id string) error
}
