// Package notification implementa o envio de notificações registrando cada
// mensagem em notification_logs. O envio real (SMS/WhatsApp) fica a cargo de
// um worker externo que consome os registros pendentes.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hugohenrick/pos-joalheria/internal/domain/notification"
	"github.com/hugohenrick/pos-joalheria/internal/domain/user"
	"github.com/hugohenrick/pos-joalheria/pkg/logger"
)

// LogDispatcher implementa a interface notification.Dispatcher
type LogDispatcher struct {
	db     *pgxpool.Pool
	users  user.Repository
	logger logger.Logger
}

// NewLogDispatcher cria uma nova instância de LogDispatcher
func NewLogDispatcher(db *pgxpool.Pool, users user.Repository, logger logger.Logger) notification.Dispatcher {
	return &LogDispatcher{
		db:     db,
		users:  users,
		logger: logger,
	}
}

// SendSaleReceipt implementa notification.Dispatcher.SendSaleReceipt
func (d *LogDispatcher) SendSaleReceipt(ctx context.Context, receipt notification.Receipt) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Olá %s! Obrigado pela sua compra.\n", receipt.CustomerName)
	fmt.Fprintf(&sb, "Documento: %s\n", receipt.InvoiceNumber)
	for _, item := range receipt.Items {
		fmt.Fprintf(&sb, "- %s x%d (R$ %s)\n", item.Name, item.Quantity, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&sb, "Total: R$ %s\n", receipt.TotalAmount.StringFixed(2))
	fmt.Fprintf(&sb, "Pagamento: %s", receipt.PaymentMethod)

	err := d.insertLog(ctx, receipt.CustomerPhone, sb.String(), notification.TypeSaleReceipt, receipt.InvoiceNumber)
	if err != nil {
		return fmt.Errorf("erro ao registrar recibo: %w", err)
	}

	d.logger.Info("recibo registrado para envio", "invoice_number", receipt.InvoiceNumber, "phone", receipt.CustomerPhone)
	return nil
}

// SendMemoReminder implementa notification.Dispatcher.SendMemoReminder
func (d *LogDispatcher) SendMemoReminder(ctx context.Context, reminder notification.MemoReminder) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Olá %s! Você tem peças em consignação conosco.\n", reminder.CustomerName)
	fmt.Fprintf(&sb, "Documento: %s\n", reminder.MemoNumber)
	fmt.Fprintf(&sb, "Total: R$ %s\n", reminder.TotalAmount.StringFixed(2))
	fmt.Fprintf(&sb, "Vencimento: %s", reminder.DueDate.Format("02/01/2006"))

	err := d.insertLog(ctx, reminder.CustomerPhone, sb.String(), notification.TypeMemoReminder, reminder.MemoNumber)
	if err != nil {
		return fmt.Errorf("erro ao registrar lembrete de memo: %w", err)
	}

	d.logger.Info("lembrete de memo registrado para envio", "memo_number", reminder.MemoNumber, "phone", reminder.CustomerPhone)
	return nil
}

// SendLowStockAlert implementa notification.Dispatcher.SendLowStockAlert.
// O alerta é registrado uma vez para cada administrador ativo com telefone.
func (d *LogDispatcher) SendLowStockAlert(ctx context.Context, productName string, currentStock, minLevel int) error {
	phones, err := d.users.FindAdminPhones(ctx)
	if err != nil {
		return fmt.Errorf("erro ao buscar destinatários do alerta: %w", err)
	}
	if len(phones) == 0 {
		d.logger.Warn("alerta de estoque baixo sem destinatários", "product", productName)
		return nil
	}

	message := fmt.Sprintf("Alerta de estoque baixo: %s está com %d unidade(s), mínimo configurado %d.",
		productName, currentStock, minLevel)

	for _, phone := range phones {
		if err := d.insertLog(ctx, phone, message, notification.TypeLowStockAlert, ""); err != nil {
			return fmt.Errorf("erro ao registrar alerta de estoque: %w", err)
		}
	}

	d.logger.Info("alerta de estoque baixo registrado", "product", productName, "recipients", len(phones))
	return nil
}

func (d *LogDispatcher) insertLog(ctx context.Context, phone, message, notifType, referenceID string) error {
	var ref *string
	if referenceID != "" {
		ref = &referenceID
	}

	_, err := d.db.Exec(ctx,
		`INSERT INTO notification_logs (
			id, phone, message, type, status, reference_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), phone, message, notifType, "pending", ref, time.Now())

	return err
}
