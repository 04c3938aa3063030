package customer

import (
	"context"
)

// Repository define a interface para operações de repositório de clientes
type Repository interface {
	// Create cria um novo cliente
	Create(ctx context.Context, c *Customer) error

	// FindByID busca um cliente pelo ID
	FindByID(ctx context.Context, id string) (*Customer, error)

	// FindByPhone busca um cliente pelo telefone
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// FindByName busca clientes pelo nome (busca parcial)
	FindByName(ctx context.Context, name string, limit, offset int) ([]*Customer, error)

	// List lista os clientes com paginação, ordenados por nome
	List(ctx context.Context, limit, offset int) ([]*Customer, error)

	// Update atualiza os dados de um cliente existente
	Update(ctx context.Context, c *Customer) error

	// Delete remove um cliente
	Delete(ctx context.Context, id string) error

	// Count conta os clientes cadastrados
	Count(ctx context.Context) (int, error)
}
