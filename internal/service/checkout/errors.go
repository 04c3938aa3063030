package checkout

import (
	"errors"
	"fmt"

	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
)

// Erros de pré-condição do checkout e da conversão de memo.
// Todos são verificados antes de qualquer escrita.
var (
	ErrUnauthenticated = errors.New("usuário não autenticado")
	ErrEmptyCart       = errors.New("carrinho vazio")
	ErrMissingCustomer = errors.New("memo exige um cliente")
	ErrEmptyReturn     = errors.New("devolução sem itens")
	ErrInvalidReturn   = errors.New("devolução inválida")

	// ErrDuplicateNumber sinaliza uma colisão de número de documento que
	// persistiu depois de esgotadas as novas tentativas de geração
	ErrDuplicateNumber = sale.ErrDuplicateNumber
)

// StorageError marca uma falha de armazenamento depois que as escritas
// começaram. A etapa identifica o ponto da sequência que falhou, para
// reconciliação manual; as pré-condições nunca produzem este erro.
type StorageError struct {
	Step string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("falha de armazenamento na etapa %q: %v", e.Step, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// newStorageError embrulha um erro do repositório com a etapa em que ocorreu
func newStorageError(step string, err error) *StorageError {
	return &StorageError{Step: step, Err: err}
}
