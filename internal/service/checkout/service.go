package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hugohenrick/pos-joalheria/internal/domain/customer"
	"github.com/hugohenrick/pos-joalheria/internal/domain/inventory"
	"github.com/hugohenrick/pos-joalheria/internal/domain/notification"
	"github.com/hugohenrick/pos-joalheria/internal/domain/product"
	"github.com/hugohenrick/pos-joalheria/internal/domain/sale"
	"github.com/hugohenrick/pos-joalheria/pkg/logger"
)

// Config contém as políticas do checkout vindas da configuração externa
type Config struct {
	// AllowNegativeStock permite concluir vendas com estoque insuficiente
	AllowNegativeStock bool
	// DefaultMemoDays é o prazo padrão de vencimento de um memo, em dias
	DefaultMemoDays int
}

// Service coordena o fechamento de uma venda ou memo: valida as
// pré-condições, calcula os preços, confere o estoque linha a linha,
// persiste o documento e aplica as baixas de estoque, nessa ordem.
// Não há transação envolvendo todas as escritas; o ponto sem retorno é a
// gravação do cabeçalho, e falhas depois dele são reportadas com a etapa.
type Service struct {
	products  product.Repository
	customers customer.Repository
	sales     sale.Repository
	logs      inventory.Repository
	notifier  notification.Dispatcher
	logger    logger.Logger
	cfg       Config
}

// NewService cria uma nova instância do serviço de checkout
func NewService(
	products product.Repository,
	customers customer.Repository,
	sales sale.Repository,
	logs inventory.Repository,
	notifier notification.Dispatcher,
	logger logger.Logger,
	cfg Config,
) *Service {
	if cfg.DefaultMemoDays <= 0 {
		cfg.DefaultMemoDays = 7
	}
	return &Service{
		products:  products,
		customers: customers,
		sales:     sales,
		logs:      logs,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// CheckoutItem é uma linha do carrinho enviada ao checkout
type CheckoutItem struct {
	ProductID       string
	Quantity        int
	DiscountPercent decimal.Decimal
}

// CheckoutRequest contém os dados de um fechamento de venda ou memo
type CheckoutRequest struct {
	ActorID         string
	DocumentType    sale.DocumentType
	CustomerID      string
	Items           []CheckoutItem
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	PaymentMethod   string
	Notes           string
	MemoDays        int  // Prazo do memo em dias; 0 usa o padrão da configuração
	SendReceipt     bool // Envia o recibo ao cliente após o fechamento
}

// appliedDecrement registra uma baixa de estoque já aplicada, para
// compensação caso uma linha posterior falhe
type appliedDecrement struct {
	product  *product.Product
	quantity int
	newStock int
}

// Checkout fecha uma venda ou memo. Todas as pré-condições são verificadas
// antes de qualquer escrita: uma falha de validação ou de estoque nesta fase
// não deixa rastro no banco. A ordem de persistência é fixa: cabeçalho,
// itens, baixas de estoque, trilha de auditoria.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*sale.SaleDocument, error) {
	if req.ActorID == "" {
		return nil, ErrUnauthenticated
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if req.DocumentType != sale.DocumentTypeInvoice && req.DocumentType != sale.DocumentTypeMemo {
		return nil, sale.ErrInvalidDocType
	}
	if req.DocumentType == sale.DocumentTypeMemo && req.CustomerID == "" {
		return nil, ErrMissingCustomer
	}

	var cust *customer.Customer
	if req.CustomerID != "" {
		var err error
		cust, err = s.customers.FindByID(ctx, req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("erro ao carregar cliente: %w", err)
		}
	}

	// Carregar os produtos e montar as linhas de precificação com o
	// estoque e o preço atuais, não os do momento em que o item entrou no
	// carrinho: o carrinho é apenas uma dica de interface.
	products := make([]*product.Product, 0, len(req.Items))
	cartLines := make([]sale.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("erro ao carregar produto %s: %w", item.ProductID, err)
		}
		products = append(products, p)
		cartLines = append(cartLines, sale.CartLine{
			UnitPrice:       p.Price,
			Quantity:        item.Quantity,
			DiscountPercent: item.DiscountPercent,
		})
	}

	breakdown, err := sale.Calculate(cartLines, req.DiscountPercent, req.TaxPercent)
	if err != nil {
		return nil, err
	}

	// Conferência de estoque linha a linha antes de qualquer escrita.
	// A baixa definitiva é atômica no repositório; esta fase garante o
	// tudo-ou-nada do ponto de vista do chamador.
	for i, item := range req.Items {
		if _, err := inventory.Reserve(products[i].StockQuantity, item.Quantity, s.cfg.AllowNegativeStock); err != nil {
			var stockErr *inventory.StockError
			if errors.As(err, &stockErr) {
				stockErr.ProductID = products[i].ID
				stockErr.ProductName = products[i].Name
				return nil, stockErr
			}
			return nil, err
		}
	}

	now := time.Now()

	var memoDueDate *time.Time
	if req.DocumentType == sale.DocumentTypeMemo {
		days := req.MemoDays
		if days <= 0 {
			days = s.cfg.DefaultMemoDays
		}
		due := now.AddDate(0, 0, days).Truncate(24 * time.Hour)
		memoDueDate = &due
	}

	paymentStatus := sale.PaymentStatusCompleted
	doc, err := sale.NewSaleDocument(
		req.DocumentType,
		req.CustomerID,
		breakdown,
		req.PaymentMethod,
		paymentStatus,
		memoDueDate,
		req.Notes,
		req.ActorID,
		now,
	)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUniqueNumber(ctx, doc); err != nil {
		return nil, err
	}

	items, err := buildLineItems(doc.ID, req.Items, products, breakdown)
	if err != nil {
		return nil, err
	}

	// Ponto sem retorno: depois desta gravação, falhas são reportadas com
	// a etapa para reconciliação, e baixas já aplicadas são compensadas.
	// Uma colisão de número que escape à verificação prévia e apareça na
	// gravação não escreve nada, então ganha um número novo e uma nova
	// tentativa antes de virar conflito.
	for attempt := 1; ; attempt++ {
		err := s.sales.Create(ctx, doc)
		if err == nil {
			break
		}
		if !errors.Is(err, sale.ErrDuplicateNumber) {
			return nil, newStorageError("criação do cabeçalho", err)
		}
		if attempt >= maxNumberAttempts {
			return nil, ErrDuplicateNumber
		}
		time.Sleep(time.Millisecond)
		doc.InvoiceNumber = sale.NewDocumentNumber(doc.DocumentType, time.Now())
	}

	if err := s.sales.AddLineItems(ctx, doc.ID, items); err != nil {
		s.logger.Error("falha ao gravar itens após o cabeçalho", "sale_id", doc.ID, "error", err)
		return nil, newStorageError("gravação dos itens", err)
	}

	applied := make([]appliedDecrement, 0, len(req.Items))
	for i, item := range req.Items {
		newStock, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity, s.cfg.AllowNegativeStock)
		if err != nil {
			s.compensateDecrements(ctx, applied, doc.ID, req.ActorID)

			var stockErr *inventory.StockError
			if errors.As(err, &stockErr) {
				stockErr.ProductID = products[i].ID
				stockErr.ProductName = products[i].Name
				return nil, stockErr
			}
			return nil, newStorageError("baixa de estoque", err)
		}
		applied = append(applied, appliedDecrement{product: products[i], quantity: item.Quantity, newStock: newStock})
	}

	for _, a := range applied {
		entry := inventory.NewSoldEntry(a.product.ID, a.quantity, a.newStock+a.quantity, a.newStock, doc.ID, req.ActorID)
		if err := s.logs.Append(ctx, entry); err != nil {
			// A trilha pode atrasar em relação à baixa, mas a falha é
			// reportada com a etapa para o job de reconciliação.
			s.logger.Error("falha ao gravar trilha de estoque", "sale_id", doc.ID, "product_id", a.product.ID, "error", err)
			return nil, newStorageError("trilha de auditoria de estoque", err)
		}
	}

	doc.Items = items

	s.notifyAfterCommit(ctx, doc, cust, applied, req.SendReceipt)

	return doc, nil
}

// Preview calcula o detalhamento de preços de um carrinho sem persistir
// nada, para os totais ao vivo da interface
func (s *Service) Preview(lines []sale.CartLine, discountPercent, taxPercent decimal.Decimal) (*sale.Breakdown, error) {
	return sale.Calculate(lines, discountPercent, taxPercent)
}

// maxNumberAttempts limita as tentativas de geração de um número de
// documento livre de colisão, tanto na verificação prévia quanto na
// gravação do cabeçalho
const maxNumberAttempts = 3

// ensureUniqueNumber garante um número de documento livre de colisão.
// Colisões são raras (o sufixo é o timestamp em milissegundos) e resolvidas
// com nova tentativa, nunca com sobrescrita. A verificação é apenas uma
// antecipação: a garantia final é a restrição de unicidade na gravação.
func (s *Service) ensureUniqueNumber(ctx context.Context, doc *sale.SaleDocument) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		exists, err := s.sales.ExistsByNumber(ctx, doc.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("erro ao verificar número do documento: %w", err)
		}
		if !exists {
			return nil
		}
		time.Sleep(time.Millisecond)
		doc.InvoiceNumber = sale.NewDocumentNumber(doc.DocumentType, time.Now())
	}

	return ErrDuplicateNumber
}

// compensateDecrements repõe as baixas de estoque já aplicadas por um
// checkout que falhou no meio, registrando a reposição na trilha.
// Falhas de compensação são apenas registradas: a reconciliação manual usa
// a trilha para fechar a conta.
func (s *Service) compensateDecrements(ctx context.Context, applied []appliedDecrement, saleID, actorID string) {
	for _, a := range applied {
		newStock, err := s.products.IncrementStock(ctx, a.product.ID, a.quantity)
		if err != nil {
			s.logger.Error("falha crítica ao compensar baixa de estoque", "sale_id", saleID, "product_id", a.product.ID, "quantity", a.quantity, "error", err)
			continue
		}
		entry := inventory.NewRestockEntry(a.product.ID, a.quantity, newStock-a.quantity, newStock, saleID, actorID)
		if err := s.logs.Append(ctx, entry); err != nil {
			s.logger.Error("falha ao registrar compensação na trilha", "sale_id", saleID, "product_id", a.product.ID, "error", err)
		}
	}
}

// notifyAfterCommit dispara as notificações pós-commit em melhor esforço.
// Nenhuma falha aqui desfaz ou falha o checkout.
func (s *Service) notifyAfterCommit(ctx context.Context, doc *sale.SaleDocument, cust *customer.Customer, applied []appliedDecrement, sendReceipt bool) {
	if sendReceipt && cust != nil && cust.Phone != "" {
		if doc.IsMemo() && doc.MemoDueDate != nil {
			// Memo ainda não é compra fechada: o cliente recebe o
			// lembrete das peças em aberto e do vencimento
			reminder := notification.MemoReminder{
				CustomerName:  cust.FullName,
				CustomerPhone: cust.Phone,
				MemoNumber:    doc.InvoiceNumber,
				TotalAmount:   doc.TotalAmount,
				DueDate:       *doc.MemoDueDate,
			}
			if err := s.notifier.SendMemoReminder(ctx, reminder); err != nil {
				s.logger.Warn("falha ao enviar lembrete de memo", "sale_id", doc.ID, "error", err)
			}
		} else {
			receipt := notification.Receipt{
				CustomerName:  cust.FullName,
				CustomerPhone: cust.Phone,
				InvoiceNumber: doc.InvoiceNumber,
				TotalAmount:   doc.TotalAmount,
				PaymentMethod: doc.PaymentMethod,
			}
			for _, item := range doc.Items {
				receipt.Items = append(receipt.Items, notification.ReceiptItem{
					Name:     item.ProductName,
					Quantity: item.Quantity,
					Price:    item.UnitPrice,
				})
			}
			if err := s.notifier.SendSaleReceipt(ctx, receipt); err != nil {
				s.logger.Warn("falha ao enviar recibo", "sale_id", doc.ID, "error", err)
			}
		}
	}

	for _, a := range applied {
		if a.newStock <= a.product.MinStockLevel {
			if err := s.notifier.SendLowStockAlert(ctx, a.product.Name, a.newStock, a.product.MinStockLevel); err != nil {
				s.logger.Warn("falha ao enviar alerta de estoque baixo", "product_id", a.product.ID, "error", err)
			}
		}
	}
}
