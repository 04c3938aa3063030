package sale

import (
	"context"
	"time"
)

// ListFilter restringe a listagem de documentos de venda
type ListFilter struct {
	DocumentType DocumentType // vazio = todos
	MemoStatus   MemoStatus   // vazio = todos
	CustomerID   string       // vazio = todos

	// DueBefore restringe a memos em aberto (pendentes ou parcialmente
	// devolvidos) com vencimento anterior ao instante; zero desativa.
	// É a tradução do status derivado "expired" para a consulta, já que
	// esse status nunca é persistido.
	DueBefore time.Time
}

// Repository define a interface para operações de repositório de vendas
type Repository interface {
	// Create persiste o cabeçalho do documento de venda
	Create(ctx context.Context, d *SaleDocument) error

	// AddLineItems persiste os itens de um documento já criado
	AddLineItems(ctx context.Context, saleID string, items []SaleLineItem) error

	// FindByID busca um documento pelo ID, com seus itens
	FindByID(ctx context.Context, id string) (*SaleDocument, error)

	// FindByNumber busca um documento pelo número
	FindByNumber(ctx context.Context, number string) (*SaleDocument, error)

	// List lista documentos com filtro e paginação, mais recentes primeiro
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*SaleDocument, error)

	// Count conta documentos que atendem ao filtro
	Count(ctx context.Context, filter ListFilter) (int, error)

	// UpdateMemoStatus atualiza o status de um memo
	UpdateMemoStatus(ctx context.Context, id string, status MemoStatus) error

	// ExistsByNumber verifica se já existe documento com o número
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}
