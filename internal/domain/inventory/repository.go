package inventory

import (
	"context"
)

// Repository define a interface para a trilha de auditoria de estoque
type Repository interface {
	// Append registra uma movimentação de estoque (somente inserção)
	Append(ctx context.Context, entry *LogEntry) error

	// FindByProduct lista as movimentações de um produto, mais recentes primeiro
	FindByProduct(ctx context.Context, productID string, limit, offset int) ([]*LogEntry, error)

	// FindByReference lista as movimentações ligadas a um documento de venda
	FindByReference(ctx context.Context, referenceID string) ([]*LogEntry, error)
}
