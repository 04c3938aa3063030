package user

import (
	"context"
)

// Repository define a interface para operações de repositório de usuários
type Repository interface {
	// Create cria um novo usuário
	Create(ctx context.Context, u *User) error

	// FindByID busca um usuário pelo ID
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail busca um usuário pelo email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List lista os usuários com paginação
	List(ctx context.Context, limit, offset int) ([]*User, error)

	// UpdateLastLogin registra a data do último login
	UpdateLastLogin(ctx context.Context, id string) error

	// FindAdminPhones retorna os telefones dos administradores ativos,
	// usados nos alertas de estoque baixo
	FindAdminPhones(ctx context.Context) ([]string, error)
}
