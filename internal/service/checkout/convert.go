package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
)

// Convert materializa a fatura de um memo pendente e marca o memo como
// confirmado. A conversão copia os valores do memo sem recálculo e não toca
// o estoque: a baixa aconteceu na criação do memo, e criação de memo e de
// fatura avulsa são os únicos eventos que movimentam estoque.
func (s *Service) Convert(ctx context.Context, memoID, actorID string) (*sale.SaleDocument, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	memo, err := s.sales.FindByID(ctx, memoID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar memo: %w", err)
	}

	// Apenas memos pendentes convertem; um memo nunca converte duas vezes
	if err := memo.CanConvert(); err != nil {
		return nil, err
	}

	invoice := cloneForConversion(memo, actorID, time.Now())

	// O número da fatura deriva do número do memo; uma colisão aqui
	// significa conversão concorrente do mesmo memo, não vale repetir
	if err := s.sales.Create(ctx, invoice); err != nil {
		if errors.Is(err, sale.ErrDuplicateNumber) {
			return nil, ErrDuplicateNumber
		}
		return nil, newStorageError("criação da fatura convertida", err)
	}

	if err := s.sales.AddLineItems(ctx, invoice.ID, invoice.Items); err != nil {
		s.logger.Error("falha ao copiar itens do memo", "memo_id", memoID, "invoice_id", invoice.ID, "error", err)
		return nil, newStorageError("cópia dos itens do memo", err)
	}

	if err := s.sales.UpdateMemoStatus(ctx, memo.ID, sale.MemoStatusConfirmed); err != nil {
		s.logger.Error("fatura criada mas memo não confirmado", "memo_id", memoID, "invoice_id", invoice.ID, "error", err)
		return nil, newStorageError("confirmação do memo", err)
	}

	s.logger.Info("memo convertido em fatura", "memo_id", memoID, "invoice_id", invoice.ID, "invoice_number", invoice.InvoiceNumber)

	return invoice, nil
}
