package notification

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de notificação registrados
const (
	TypeSaleReceipt   = "sale_receipt"
	TypeMemoReminder  = "memo_reminder"
	TypeLowStockAlert = "low_stock_alert"
)

// ReceiptItem é um item listado no recibo enviado ao cliente
type ReceiptItem struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Receipt contém os dados do recibo de uma venda ou memo
type Receipt struct {
	CustomerName  string
	CustomerPhone string
	InvoiceNumber string
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Items         []ReceiptItem
}

// MemoReminder contém os dados do lembrete de um memo em aberto
type MemoReminder struct {
	CustomerName  string
	CustomerPhone string
	MemoNumber    string
	TotalAmount   decimal.Decimal
	DueDate       time.Time
}

// Dispatcher envia notificações (SMS/WhatsApp) em melhor esforço.
// Uma falha de envio nunca deve reverter ou falhar a operação que a
// originou; implementações registram o erro e seguem em frente.
type Dispatcher interface {
	// SendSaleReceipt envia o recibo de compra ao cliente
	SendSaleReceipt(ctx context.Context, receipt Receipt) error

	// SendMemoReminder lembra o cliente de um memo em aberto e do seu vencimento
	SendMemoReminder(ctx context.Context, reminder MemoReminder) error

	// SendLowStockAlert avisa os administradores sobre estoque baixo
	SendLowStockAlert(ctx context.Context, productName string, currentStock, minLevel int) error
}
