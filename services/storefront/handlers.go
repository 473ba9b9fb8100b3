package main

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chainfit/storefront/coordinator"
	"github.com/chainfit/storefront/ledger"
	"github.com/chainfit/storefront/views"
)

// StorefrontUseCaseInterface define a interface para o use case
type StorefrontUseCaseInterface interface {
	ListProducts(ctx context.Context, category int) ([]ledger.Product, error)
	AddToCart(ctx context.Context, productID uint64) error
	UpdateCartQuantity(ctx context.Context, productID uint64, quantity int)
	RemoveFromCart(ctx context.Context, productID uint64)
	ClearCart(ctx context.Context)
	Cart(ctx context.Context) CartResponse
	Checkout(ctx context.Context) (*coordinator.Result, error)
	MyOrders(ctx context.Context) ([]ledger.Order, error)
	AddProduct(ctx context.Context, req AddProductRequest) (*coordinator.Result, error)
	UpdateStock(ctx context.Context, productID, stock uint64) (*coordinator.Result, error)
	UpdateProduct(ctx context.Context, productID uint64, req UpdateProductRequest) (*coordinator.Result, error)
	AllOrders(ctx context.Context) ([]ledger.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint64, status int) (*coordinator.Result, error)
	Balance(ctx context.Context) (*big.Int, error)
	Withdraw(ctx context.Context) (*coordinator.Result, error)
}

// StorefrontHandler contém os handlers HTTP
type StorefrontHandler struct {
	useCase StorefrontUseCaseInterface
	tracer  trace.Tracer
}

// NewStorefrontHandler cria uma nova instância de StorefrontHandler
func NewStorefrontHandler(useCase StorefrontUseCaseInterface, tracer trace.Tracer) *StorefrontHandler {
	return &StorefrontHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// HealthCheck verifica a saúde do serviço
func (h *StorefrontHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront",
	})
}

// ListProducts devolve o catálogo, com filtro opcional ?category=
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	category := views.CategoryAll
	if raw := c.Query("category"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		category = parsed
	}

	products, err := h.useCase.ListProducts(c.Request.Context(), category)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
}

// GetCart devolve o conteúdo corrente do carrinho
func (h *StorefrontHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.useCase.Cart(c.Request.Context()))
}

// AddCartItem adiciona um produto ao carrinho
func (h *StorefrontHandler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.useCase.AddToCart(c.Request.Context(), req.ProductID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.useCase.Cart(c.Request.Context()))
}

// UpdateCartItem fixa a quantidade de um item do carrinho
func (h *StorefrontHandler) UpdateCartItem(c *gin.Context) {
	productID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.useCase.UpdateCartQuantity(c.Request.Context(), productID, *req.Quantity)
	c.JSON(http.StatusOK, h.useCase.Cart(c.Request.Context()))
}

// RemoveCartItem remove um item do carrinho
func (h *StorefrontHandler) RemoveCartItem(c *gin.Context) {
	productID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	h.useCase.RemoveFromCart(c.Request.Context(), productID)
	c.JSON(http.StatusOK, h.useCase.Cart(c.Request.Context()))
}

// ClearCart esvazia o carrinho
func (h *StorefrontHandler) ClearCart(c *gin.Context) {
	h.useCase.ClearCart(c.Request.Context())
	c.JSON(http.StatusOK, h.useCase.Cart(c.Request.Context()))
}

// Checkout submete o pedido montado a partir do carrinho e espera a
// confirmação do ledger
func (h *StorefrontHandler) Checkout(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "checkout")
	defer span.End()

	result, err := h.useCase.Checkout(ctx)
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("intent.id", result.Intent.ID),
		attribute.String("tx.hash", string(result.Hash)),
	)

	c.JSON(http.StatusOK, CheckoutResponse{
		IntentID: result.Intent.ID,
		TxHash:   string(result.Hash),
		Message:  "Order placed successfully",
	})
}

// MyOrders devolve os pedidos da carteira conectada
func (h *StorefrontHandler) MyOrders(c *gin.Context) {
	orders, err := h.useCase.MyOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
}

// AddProduct cadastra um produto novo (somente dono)
func (h *StorefrontHandler) AddProduct(c *gin.Context) {
	var req AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "add_product")
	defer span.End()
	span.SetAttributes(attribute.String("product.name", req.Name))

	result, err := h.useCase.AddProduct(ctx, req)
	if err != nil {
		span.RecordError(err)
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tx_hash": result.Hash, "message": "Product added successfully"})
}

// UpdateStock ajusta o estoque de um produto (somente dono)
func (h *StorefrontHandler) UpdateStock(c *gin.Context) {
	productID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.useCase.UpdateStock(c.Request.Context(), productID, *req.Stock)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tx_hash": result.Hash, "message": "Stock updated successfully"})
}

// UpdateProduct ajusta preço, estoque e flag de ativo (somente dono)
func (h *StorefrontHandler) UpdateProduct(c *gin.Context) {
	productID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.useCase.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tx_hash": result.Hash, "message": "Product updated successfully"})
}

// AllOrders devolve todos os pedidos (somente dono)
func (h *StorefrontHandler) AllOrders(c *gin.Context) {
	orders, err := h.useCase.AllOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
}

// UpdateOrderStatus move um pedido para um novo status (somente dono)
func (h *StorefrontHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.useCase.UpdateOrderStatus(c.Request.Context(), orderID, *req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tx_hash": result.Hash, "message": "Order status updated successfully"})
}

// Balance devolve o saldo do contrato (somente dono)
func (h *StorefrontHandler) Balance(c *gin.Context) {
	balance, err := h.useCase.Balance(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance_wei":   balance.String(),
		"balance_ether": ledger.FormatUnits(balance),
	})
}

// Withdraw saca o saldo do contrato (somente dono)
func (h *StorefrontHandler) Withdraw(c *gin.Context) {
	result, err := h.useCase.Withdraw(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tx_hash": result.Hash, "message": "Withdrawal confirmed"})
}

// writeError mapeia os erros de negócio e de transação para HTTP
func (h *StorefrontHandler) writeError(c *gin.Context, err error) {
	var txErr *coordinator.TxError
	if errors.As(err, &txErr) {
		status := http.StatusBadGateway
		if txErr.Kind == coordinator.ErrorKindUserRejected || txErr.Kind == coordinator.ErrorKindSubmission {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": txErr.Error(), "kind": string(txErr.Kind)})
		return
	}

	switch {
	case errors.Is(err, coordinator.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotConnected):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrOutOfStock), errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}
