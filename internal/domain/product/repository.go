package product

import (
	"context"
)

// Repository define a interface para operações de repositório de produtos
type Repository interface {
	// Create cria um novo produto
	Create(ctx context.Context, p *Product) error

	// FindByID busca um produto pelo ID
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindBySKU busca um produto pelo SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// List lista os produtos com paginação, ordenados por nome
	List(ctx context.Context, limit, offset int) ([]*Product, error)

	// FindByName busca produtos pelo nome (busca parcial)
	FindByName(ctx context.Context, name string, limit, offset int) ([]*Product, error)

	// FindLowStock lista produtos com estoque no limiar de alerta ou abaixo
	FindLowStock(ctx context.Context, limit, offset int) ([]*Product, error)

	// Update atualiza os dados cadastrais de um produto
	Update(ctx context.Context, p *Product) error

	// Delete remove um produto sem vendas registradas
	Delete(ctx context.Context, id string) error

	// Count conta os produtos cadastrados
	Count(ctx context.Context) (int, error)

	// DecrementStock aplica uma baixa condicional e atômica de estoque e
	// retorna o novo saldo. A baixa só acontece quando o saldo cobre a
	// quantidade ou quando allowNegative é verdadeiro; caso contrário falha
	// com erro de estoque insuficiente sem alterar nada. A verificação e a
	// escrita são uma única instrução no banco, nunca ler-depois-escrever.
	DecrementStock(ctx context.Context, id string, quantity int, allowNegative bool) (int, error)

	// IncrementStock repõe estoque (devolução ou compensação) e retorna o novo saldo
	IncrementStock(ctx context.Context, id string, quantity int) (int, error)
}
