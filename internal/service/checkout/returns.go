package checkout

import (
	"context"
	"fmt"

	"github.com/hugohenrick/pos-joalheria/internal/domain/inventory"
	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
)

// ReturnLine indica a quantidade devolvida de um produto de um memo
type ReturnLine struct {
	ProductID string
	Quantity  int
}

// ProcessReturn processa a devolução parcial ou total de um memo.
// Os itens originais do memo nunca são alterados: cada quantidade devolvida
// repõe o estoque do produto e gera uma entrada compensatória na trilha.
// Quando todas as quantidades vendidas tiverem sido devolvidas o memo passa
// a fully_returned; caso contrário, partially_returned.
func (s *Service) ProcessReturn(ctx context.Context, memoID string, lines []ReturnLine, actorID string) (*sale.SaleDocument, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if len(lines) == 0 {
		return nil, ErrEmptyReturn
	}

	memo, err := s.sales.FindByID(ctx, memoID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar memo: %w", err)
	}
	if err := memo.CanReturn(); err != nil {
		return nil, err
	}

	// Quantidade vendida por produto, a partir dos itens do memo
	sold := make(map[string]int, len(memo.Items))
	for _, item := range memo.Items {
		sold[item.ProductID] += item.Quantity
	}

	// Quantidade já devolvida por produto, a partir da trilha de auditoria
	returned := make(map[string]int)
	entries, err := s.logs.FindByReference(ctx, memoID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar trilha do memo: %w", err)
	}
	for _, entry := range entries {
		if entry.ChangeType == inventory.ChangeTypeReturned {
			returned[entry.ProductID] += entry.QuantityChange
		}
	}

	// Validar todas as linhas antes de qualquer escrita
	requested := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantidade não positiva para o produto %s", ErrInvalidReturn, line.ProductID)
		}
		soldQty, ok := sold[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: produto %s não pertence ao memo", ErrInvalidReturn, line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
		if requested[line.ProductID]+returned[line.ProductID] > soldQty {
			return nil, fmt.Errorf("%w: devolução de %d excede o saldo devolvível do produto %s", ErrInvalidReturn, requested[line.ProductID], line.ProductID)
		}
	}

	// Repor o estoque e registrar as entradas compensatórias
	for _, line := range lines {
		newStock, err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, newStorageError("reposição de estoque da devolução", err)
		}
		entry := inventory.NewReturnedEntry(line.ProductID, line.Quantity, newStock-line.Quantity, newStock, memoID, actorID)
		if err := s.logs.Append(ctx, entry); err != nil {
			s.logger.Error("falha ao registrar devolução na trilha", "memo_id", memoID, "product_id", line.ProductID, "error", err)
			return nil, newStorageError("trilha de auditoria da devolução", err)
		}
	}

	full := true
	for productID, soldQty := range sold {
		if returned[productID]+requested[productID] < soldQty {
			full = false
			break
		}
	}

	if err := memo.MarkReturned(full); err != nil {
		return nil, err
	}
	if err := s.sales.UpdateMemoStatus(ctx, memo.ID, memo.MemoStatus); err != nil {
		return nil, newStorageError("atualização do status do memo", err)
	}

	s.logger.Info("devolução de memo processada", "memo_id", memoID, "status", memo.MemoStatus)

	return memo, nil
}
