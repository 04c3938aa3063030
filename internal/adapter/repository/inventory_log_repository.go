package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hugohenrick/pos-joalheria/internal/domain/inventory"
)

// InventoryLogRepository implementa a interface inventory.Repository.
// A tabela é somente-inserção; não há Update nem Delete.
type InventoryLogRepository struct {
	db *pgxpool.Pool
}

// NewInventoryLogRepository cria uma nova instância de InventoryLogRepository
func NewInventoryLogRepository(db *pgxpool.Pool) inventory.Repository {
	return &InventoryLogRepository{
		db: db,
	}
}

// Append implementa inventory.Repository.Append
func (r *InventoryLogRepository) Append(ctx context.Context, entry *inventory.LogEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO inventory_logs (
			id, product_id, change_type, quantity_change, previous_quantity,
			new_quantity, reference_id, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.ProductID, entry.ChangeType, entry.QuantityChange,
		entry.PreviousQuantity, entry.NewQuantity, entry.ReferenceID,
		entry.CreatedBy, entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("erro ao gravar movimentação de estoque: %w", err)
	}

	return nil
}

// FindByProduct implementa inventory.Repository.FindByProduct
func (r *InventoryLogRepository) FindByProduct(ctx context.Context, productID string, limit, offset int) ([]*inventory.LogEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, change_type, quantity_change, previous_quantity,
			new_quantity, reference_id, created_by, created_at
		FROM inventory_logs
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar movimentações do produto: %w", err)
	}
	defer rows.Close()

	return r.scanLogRows(rows)
}

// FindByReference implementa inventory.Repository.FindByReference
func (r *InventoryLogRepository) FindByReference(ctx context.Context, referenceID string) ([]*inventory.LogEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, change_type, quantity_change, previous_quantity,
			new_quantity, reference_id, created_by, created_at
		FROM inventory_logs
		WHERE reference_id = $1
		ORDER BY created_at ASC`,
		referenceID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar movimentações do documento: %w", err)
	}
	defer rows.Close()

	return r.scanLogRows(rows)
}

// scanLogRows processa resultados de consultas que retornam múltiplas movimentações
func (r *InventoryLogRepository) scanLogRows(rows pgx.Rows) ([]*inventory.LogEntry, error) {
	entries := make([]*inventory.LogEntry, 0)

	for rows.Next() {
		var e inventory.LogEntry
		err := rows.Scan(&e.ID, &e.ProductID, &e.ChangeType, &e.QuantityChange,
			&e.PreviousQuantity, &e.NewQuantity, &e.ReferenceID, &e.CreatedBy,
			&e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler movimentação de estoque: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler resultados: %w", err)
	}

	return entries, nil
}
