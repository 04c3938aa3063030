package inventory

import (
	"errors"
	"fmt"
)

// ErrInsufficientStock indica que o estoque não cobre a quantidade pedida
var ErrInsufficientStock = errors.New("estoque insuficiente")

// StockError detalha uma falha de estoque de um produto específico,
// para que a interface possa apontar a linha problemática do carrinho
type StockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("estoque insuficiente para %s: pedido %d, disponível %d", name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// Reserve decide se uma baixa de estoque é admissível e calcula o novo saldo.
// Falha quando a quantidade pedida excede o saldo atual e saldo negativo não
// é permitido. O saldo retornado só pode ser negativo com allowNegative.
//
// A verificação definitiva acontece na baixa atômica do repositório de
// produtos; esta função é a checagem rápida feita antes de qualquer escrita.
func Reserve(currentStock, requestedQty int, allowNegative bool) (int, error) {
	if requestedQty <= 0 {
		return 0, fmt.Errorf("quantidade pedida deve ser positiva: %d", requestedQty)
	}
	if requestedQty > currentStock && !allowNegative {
		return 0, &StockError{Requested: requestedQty, Available: currentStock}
	}
	return currentStock - requestedQty, nil
}
