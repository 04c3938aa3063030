package sale

import (
	"errors"
	"time"
)

// Erros de transição de status do memo
var (
	ErrNotAMemo          = errors.New("documento não é um memo")
	ErrInvalidTransition = errors.New("transição de status do memo não permitida")
)

// MemoStatus representa o estado de um memo no seu ciclo de vida.
//
//	pending -> confirmed                    (conversão em fatura; terminal)
//	pending -> partially_returned           (devolução parcial)
//	partially_returned -> fully_returned    (devolução do restante; terminal)
//	pending -> fully_returned               (devolução total; terminal)
//
// "expired" nunca é persistido: é derivado na leitura a partir da data de
// vencimento, e um memo confirmado ou totalmente devolvido nunca expira.
type MemoStatus string

const (
	MemoStatusPending           MemoStatus = "pending"
	MemoStatusConfirmed         MemoStatus = "confirmed"
	MemoStatusPartiallyReturned MemoStatus = "partially_returned"
	MemoStatusFullyReturned     MemoStatus = "fully_returned"
	MemoStatusExpired           MemoStatus = "expired"
)

// IsTerminal verifica se o status não admite mais transições
func (s MemoStatus) IsTerminal() bool {
	return s == MemoStatusConfirmed || s == MemoStatusFullyReturned || s == MemoStatusExpired
}

// CanConvert verifica se o memo pode ser convertido em fatura.
// Apenas memos pendentes são conversíveis; um memo nunca é convertido duas vezes.
func (d *SaleDocument) CanConvert() error {
	if !d.IsMemo() {
		return ErrNotAMemo
	}
	if d.MemoStatus != MemoStatusPending {
		return ErrInvalidTransition
	}
	return nil
}

// CanReturn verifica se o memo aceita uma devolução
func (d *SaleDocument) CanReturn() error {
	if !d.IsMemo() {
		return ErrNotAMemo
	}
	if d.MemoStatus != MemoStatusPending && d.MemoStatus != MemoStatusPartiallyReturned {
		return ErrInvalidTransition
	}
	return nil
}

// MarkConfirmed aplica a transição pending -> confirmed
func (d *SaleDocument) MarkConfirmed() error {
	if err := d.CanConvert(); err != nil {
		return err
	}
	d.MemoStatus = MemoStatusConfirmed
	return nil
}

// MarkReturned aplica a transição de devolução. Quando full é verdadeiro o
// memo passa a fully_returned (terminal); caso contrário, partially_returned.
func (d *SaleDocument) MarkReturned(full bool) error {
	if err := d.CanReturn(); err != nil {
		return err
	}
	if full {
		d.MemoStatus = MemoStatusFullyReturned
	} else {
		d.MemoStatus = MemoStatusPartiallyReturned
	}
	return nil
}

// DeriveMemoStatus calcula o status efetivo de um memo na leitura.
// Um memo pendente ou parcialmente devolvido com vencimento no passado é
// reportado como expirado; estados terminais nunca expiram.
func DeriveMemoStatus(status MemoStatus, dueDate *time.Time, now time.Time) MemoStatus {
	if status != MemoStatusPending && status != MemoStatusPartiallyReturned {
		return status
	}
	if dueDate != nil && now.After(*dueDate) {
		return MemoStatusExpired
	}
	return status
}

// EffectiveStatus retorna o status do memo com a expiração derivada
func (d *SaleDocument) EffectiveStatus(now time.Time) MemoStatus {
	return DeriveMemoStatus(d.MemoStatus, d.MemoDueDate, now)
}

// IsOverdue verifica se o memo está vencido (rótulo "Overdue" na interface)
func (d *SaleDocument) IsOverdue(now time.Time) bool {
	return d.EffectiveStatus(now) == MemoStatusExpired
}

// DaysRemaining calcula os dias restantes até o vencimento do memo
// (negativo quando vencido). Zero quando o documento não tem vencimento.
func (d *SaleDocument) DaysRemaining(now time.Time) int {
	if d.MemoDueDate == nil {
		return 0
	}
	diff := d.MemoDueDate.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
