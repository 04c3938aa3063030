package inventory

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType classifica uma movimentação de estoque
type ChangeType string

const (
	ChangeTypeSold     ChangeType = "sold"      // Baixa por venda ou memo
	ChangeTypeReturned ChangeType = "returned"  // Reposição por devolução de memo
	ChangeTypeRestock  ChangeType = "restocked" // Reposição por compensação ou ajuste
)

// LogEntry é uma entrada da trilha de auditoria de estoque.
// A trilha é somente-escrita: entradas nunca são alteradas ou removidas;
// fluxos de reversão criam entradas compensatórias.
type LogEntry struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	ChangeType       ChangeType `json:"change_type"`
	QuantityChange   int        `json:"quantity_change"` // Negativo em baixas, positivo em reposições
	PreviousQuantity int        `json:"previous_quantity"`
	NewQuantity      int        `json:"new_quantity"`
	ReferenceID      string     `json:"reference_id"` // ID do documento de venda
	CreatedBy        string     `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewSoldEntry cria a entrada de baixa de estoque de uma venda
func NewSoldEntry(productID string, quantity, previousQty, newQty int, referenceID, createdBy string) *LogEntry {
	return &LogEntry{
		ID:               uuid.New().String(),
		ProductID:        productID,
		ChangeType:       ChangeTypeSold,
		QuantityChange:   -quantity,
		PreviousQuantity: previousQty,
		NewQuantity:      newQty,
		ReferenceID:      referenceID,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now(),
	}
}

// NewReturnedEntry cria a entrada compensatória de uma devolução de memo
func NewReturnedEntry(productID string, quantity, previousQty, newQty int, referenceID, createdBy string) *LogEntry {
	return &LogEntry{
		ID:               uuid.New().String(),
		ProductID:        productID,
		ChangeType:       ChangeTypeReturned,
		QuantityChange:   quantity,
		PreviousQuantity: previousQty,
		NewQuantity:      newQty,
		ReferenceID:      referenceID,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now(),
	}
}

// NewRestockEntry cria a entrada de reposição usada na compensação de uma
// baixa aplicada por um checkout que falhou depois do ponto sem retorno
func NewRestockEntry(productID string, quantity, previousQty, newQty int, referenceID, createdBy string) *LogEntry {
	return &LogEntry{
		ID:               uuid.New().String(),
		ProductID:        productID,
		ChangeType:       ChangeTypeRestock,
		QuantityChange:   quantity,
		PreviousQuantity: previousQty,
		NewQuantity:      newQty,
		ReferenceID:      referenceID,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now(),
	}
}
