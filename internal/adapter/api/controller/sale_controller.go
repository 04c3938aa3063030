package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pos-joalheria/internal/adapter/api/dto"
	"github.com/hugohenrick/pos-joalheria/internal/adapter/repository"
	"github.com/hugohenrick/pos-joalheria/internal/domain/inventory"
	saledomain "github.com/hugohenrick/pos-joalheria/internal/domain/sale"
	"github.com/hugohenrick/pos-joalheria/internal/service/checkout"
	"github.com/hugohenrick/pos-joalheria/pkg/logger"
)

// SaleController gerencia as requisições de vendas, memos e prévia de preços
type SaleController struct {
	checkoutService *checkout.Service
	saleRepo        saledomain.Repository
	logger          logger.Logger
}

// NewSaleController cria uma nova instância de SaleController
func NewSaleController(checkoutService *checkout.Service, saleRepo saledomain.Repository, logger logger.Logger) *SaleController {
	return &SaleController{
		checkoutService: checkoutService,
		saleRepo:        saleRepo,
		logger:          logger,
	}
}

// Checkout fecha uma venda ou memo
// @Summary Fechar venda ou memo
// @Description Valida o carrinho, calcula os preços, baixa o estoque e persiste o documento
// @Tags sales
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param sale body dto.CheckoutRequest true "Dados do checkout"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales [post]
func (c *SaleController) Checkout(ctx *gin.Context) {
	var req dto.CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	actorID := ctx.GetString("user_id")
	if actorID == "" {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, "usuário não autenticado", ""))
		return
	}

	doc, err := c.checkoutService.Checkout(ctx, req.ToCheckoutRequest(actorID))
	if err != nil {
		c.respondServiceError(ctx, err, "erro ao fechar a venda")
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSaleResponse(doc))
}

// Preview calcula o detalhamento de preços de um carrinho
// @Summary Prévia de preços
// @Description Calcula subtotal, descontos, imposto e total sem persistir nada
// @Tags sales
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param preview body dto.PreviewRequest true "Linhas do carrinho"
// @Success 200 {object} dto.BreakdownResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /sales/preview [post]
func (c *SaleController) Preview(ctx *gin.Context) {
	var req dto.PreviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	breakdown, err := c.checkoutService.Preview(req.ToCartLines(), req.DiscountPercent, req.TaxPercent)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "erro ao calcular a prévia", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBreakdownResponse(breakdown))
}

// List lista os documentos de venda
// @Summary Listar vendas
// @Description Lista os documentos de venda com filtros e paginação
// @Tags sales
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param document_type query string false "Tipo do documento (invoice ou memo)"
// @Param customer_id query string false "ID do cliente"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {object} dto.SaleListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales [get]
func (c *SaleController) List(ctx *gin.Context) {
	filter := saledomain.ListFilter{
		DocumentType: saledomain.DocumentType(ctx.Query("document_type")),
		CustomerID:   ctx.Query("customer_id"),
	}

	c.listWithFilter(ctx, filter)
}

// ListMemos lista os memos, com o status efetivo derivado do vencimento
// @Summary Listar memos
// @Description Lista os memos; o status retornado considera a expiração pelo vencimento
// @Tags memos
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param status query string false "Status do memo (pending, confirmed, partially_returned, fully_returned ou expired)"
// @Param customer_id query string false "ID do cliente"
// @Param page query int false "Página"
// @Param page_size query int false "Tamanho da página"
// @Success 200 {object} dto.SaleListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /memos [get]
func (c *SaleController) ListMemos(ctx *gin.Context) {
	filter := saledomain.ListFilter{
		DocumentType: saledomain.DocumentTypeMemo,
		CustomerID:   ctx.Query("customer_id"),
	}

	// "expired" nunca é persistido: vira filtro por vencimento sobre os
	// memos ainda em aberto
	if status := saledomain.MemoStatus(ctx.Query("status")); status == saledomain.MemoStatusExpired {
		filter.DueBefore = time.Now()
	} else {
		filter.MemoStatus = status
	}

	c.listWithFilter(ctx, filter)
}

func (c *SaleController) listWithFilter(ctx *gin.Context, filter saledomain.ListFilter) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "10"))
	pagination := dto.GetPagination(page, pageSize)

	offset := (pagination.Page - 1) * pagination.PageSize

	sales, err := c.saleRepo.List(ctx, filter, pagination.PageSize, offset)
	if err != nil {
		c.logger.Error("erro ao listar vendas", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao listar vendas", err.Error()))
		return
	}

	total, err := c.saleRepo.Count(ctx, filter)
	if err != nil {
		c.logger.Error("erro ao contar vendas", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao contar vendas", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSaleListResponse(sales, total, pagination.Page, pagination.PageSize))
}

// Get retorna um documento de venda pelo ID, com seus itens
// @Summary Buscar venda
// @Description Retorna um documento de venda pelo ID
// @Tags sales
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do documento"
// @Success 200 {object} dto.SaleResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sales/{id} [get]
func (c *SaleController) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	doc, err := c.saleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "venda não encontrada", err.Error()))
			return
		}
		c.logger.Error("erro ao buscar venda", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao buscar venda", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSaleResponse(doc))
}

// Convert converte um memo pendente em fatura
// @Summary Converter memo em fatura
// @Description Cria a fatura com os valores do memo e marca o memo como confirmado
// @Tags memos
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do memo"
// @Success 201 {object} dto.SaleResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /memos/{id}/convert [post]
func (c *SaleController) Convert(ctx *gin.Context) {
	actorID := ctx.GetString("user_id")
	if actorID == "" {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, "usuário não autenticado", ""))
		return
	}

	invoice, err := c.checkoutService.Convert(ctx, ctx.Param("id"), actorID)
	if err != nil {
		c.respondServiceError(ctx, err, "erro ao converter o memo")
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSaleResponse(invoice))
}

// Return processa a devolução parcial ou total de um memo
// @Summary Devolver itens de um memo
// @Description Repõe o estoque dos itens devolvidos e atualiza o status do memo
// @Tags memos
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do memo"
// @Param return body dto.ReturnRequest true "Itens devolvidos"
// @Success 200 {object} dto.SaleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /memos/{id}/return [post]
func (c *SaleController) Return(ctx *gin.Context) {
	var req dto.ReturnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		return
	}

	actorID := ctx.GetString("user_id")
	if actorID == "" {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, "usuário não autenticado", ""))
		return
	}

	memo, err := c.checkoutService.ProcessReturn(ctx, ctx.Param("id"), req.ToReturnLines(), actorID)
	if err != nil {
		c.respondServiceError(ctx, err, "erro ao processar a devolução")
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSaleResponse(memo))
}

// respondServiceError mapeia os erros do serviço de checkout para o status
// HTTP correspondente: validação em 400, ausência em 404, conflitos de
// estoque, estado ou número em 409 e falhas de armazenamento em 500.
func (c *SaleController) respondServiceError(ctx *gin.Context, err error, fallback string) {
	var stockErr *inventory.StockError
	var storageErr *checkout.StorageError

	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, "usuário não autenticado", err.Error()))

	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingCustomer),
		errors.Is(err, checkout.ErrEmptyReturn),
		errors.Is(err, checkout.ErrInvalidReturn),
		errors.Is(err, saledomain.ErrInvalidInput),
		errors.Is(err, saledomain.ErrInvalidDocType):
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "requisição inválida", err.Error()))

	case errors.Is(err, repository.ErrSaleNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCustomerNotFound):
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "registro não encontrado", err.Error()))

	case errors.As(err, &stockErr):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "estoque insuficiente", err.Error()))

	case errors.Is(err, saledomain.ErrInvalidTransition),
		errors.Is(err, saledomain.ErrNotAMemo),
		errors.Is(err, checkout.ErrDuplicateNumber):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "conflito de estado", err.Error()))

	case errors.As(err, &storageErr):
		c.logger.Error("falha de armazenamento no checkout", "step", storageErr.Step, "error", storageErr.Err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, fallback, err.Error()))

	default:
		c.logger.Error(fallback, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, fallback, err.Error()))
	}
}
