package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/chainfit/storefront/cart"
	"github.com/chainfit/storefront/coordinator"
	"github.com/chainfit/storefront/ledger"
)

// Erros de negócio do storefront
var (
	ErrNotConnected    = errors.New("no wallet connected")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrNotOwner        = errors.New("connected wallet is not the contract owner")
	ErrInvalidStatus   = errors.New("invalid order status")
)

// TxCoordinator abstrai o coordenador de transações para o use case
type TxCoordinator interface {
	Submit(ctx context.Context, intent coordinator.Intent) (*coordinator.Result, error)
}

// Catalog abstrai a view de catálogo
type Catalog interface {
	Products(ctx context.Context, category int) ([]ledger.Product, error)
	Product(ctx context.Context, id uint64) (*ledger.Product, error)
}

// Orders abstrai as views de pedidos, saldo e dono
type Orders interface {
	AllOrders(ctx context.Context) ([]ledger.Order, error)
	UserOrders(ctx context.Context, address string) ([]ledger.Order, error)
	Balance(ctx context.Context) (*big.Int, error)
	Owner(ctx context.Context) (string, error)
}

// StorefrontUseCase amarra carrinho, views reconciliadas e coordenador
// de transações na lógica de negócio do storefront
type StorefrontUseCase struct {
	cart        *cart.Store
	catalog     Catalog
	orders      Orders
	coordinator TxCoordinator
	wallet      ledger.Wallet
}

// NewStorefrontUseCase cria uma nova instância de StorefrontUseCase
func NewStorefrontUseCase(
	cartStore *cart.Store,
	catalog Catalog,
	orders Orders,
	txCoordinator TxCoordinator,
	wallet ledger.Wallet,
) *StorefrontUseCase {
	return &StorefrontUseCase{
		cart:        cartStore,
		catalog:     catalog,
		orders:      orders,
		coordinator: txCoordinator,
		wallet:      wallet,
	}
}

// ListProducts devolve o catálogo ativo filtrado por categoria
func (uc *StorefrontUseCase) ListProducts(ctx context.Context, category int) ([]ledger.Product, error) {
	return uc.catalog.Products(ctx, category)
}

// AddToCart tira um snapshot do produto e o adiciona ao carrinho
func (uc *StorefrontUseCase) AddToCart(ctx context.Context, productID uint64) error {
	product, err := uc.catalog.Product(ctx, productID)
	if err != nil {
		return fmt.Errorf("looking up product %d: %w", productID, err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	if product.Stock == 0 {
		return ErrOutOfStock
	}

	uc.cart.AddItem(ctx, cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     ledger.FormatUnits(product.Price),
		Image:     product.Image,
		Category:  ledger.CategoryLabel(product.Category),
	})
	return nil
}

// UpdateCartQuantity fixa a quantidade de um item (<= 0 remove)
func (uc *StorefrontUseCase) UpdateCartQuantity(ctx context.Context, productID uint64, quantity int) {
	uc.cart.UpdateQuantity(ctx, productID, quantity)
}

// RemoveFromCart remove um item do carrinho
func (uc *StorefrontUseCase) RemoveFromCart(ctx context.Context, productID uint64) {
	uc.cart.RemoveItem(ctx, productID)
}

// ClearCart esvazia o carrinho
func (uc *StorefrontUseCase) ClearCart(ctx context.Context) {
	uc.cart.Clear(ctx)
}

// Cart devolve o conteúdo corrente do carrinho com os agregados
func (uc *StorefrontUseCase) Cart(ctx context.Context) CartResponse {
	items := uc.cart.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{
		Items:     items,
		Total:     uc.cart.Total(),
		ItemCount: uc.cart.ItemCount(),
	}
}

// Checkout monta a intenção placeOrder a partir do carrinho e a conduz
// até a confirmação. O carrinho só é limpo depois de confirmada; a view
// de pedidos do comprador é invalidada pelo coordenador e rebuscada
// exatamente uma vez aqui.
func (uc *StorefrontUseCase) Checkout(ctx context.Context) (*coordinator.Result, error) {
	if !uc.wallet.Connected() {
		return nil, ErrNotConnected
	}

	items := uc.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	productIDs := make([]uint64, 0, len(items))
	quantities := make([]uint64, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
		quantities = append(quantities, uint64(item.Quantity))
	}

	total, err := ledger.ParseUnits(uc.cart.Total())
	if err != nil {
		return nil, fmt.Errorf("computing order total: %w", err)
	}

	intent := coordinator.NewIntent(coordinator.OpPlaceOrder, []any{productIDs, quantities}, total)
	result, err := uc.coordinator.Submit(ctx, intent)
	if err != nil {
		return nil, err
	}

	uc.cart.Clear(ctx)

	// Rebusca única da view de pedidos do comprador, já invalidada
	// pela confirmação
	if _, err := uc.orders.UserOrders(ctx, uc.wallet.Address()); err != nil {
		log.Printf("⚠️ Failed to refetch orders after checkout: %v", err)
	}

	return result, nil
}

// MyOrders devolve os pedidos da carteira conectada, mais recentes primeiro
func (uc *StorefrontUseCase) MyOrders(ctx context.Context) ([]ledger.Order, error) {
	if !uc.wallet.Connected() {
		return nil, ErrNotConnected
	}
	return uc.orders.UserOrders(ctx, uc.wallet.Address())
}

// ensureOwner aplica o portão administrativo: a carteira conectada deve
// ser o dono reportado pelo ledger (comparação sem caixa). A checagem é
// consultiva; o contrato reforça do lado dele de qualquer forma.
func (uc *StorefrontUseCase) ensureOwner(ctx context.Context) error {
	if !uc.wallet.Connected() {
		return ErrNotConnected
	}
	owner, err := uc.orders.Owner(ctx)
	if err != nil {
		return fmt.Errorf("reading contract owner: %w", err)
	}
	if !strings.EqualFold(owner, uc.wallet.Address()) {
		return ErrNotOwner
	}
	return nil
}

// AddProduct cadastra um produto novo (somente dono)
func (uc *StorefrontUseCase) AddProduct(ctx context.Context, req AddProductRequest) (*coordinator.Result, error) {
	if err := uc.ensureOwner(ctx); err != nil {
		return nil, err
	}

	priceWei, err := ledger.ParseUnits(req.Price)
	if err != nil {
		return nil, err
	}

	intent := coordinator.NewIntent(coordinator.OpAddProduct, []any{
		req.Name, req.Description, req.Category, priceWei.String(), req.Stock, req.Image,
	}, nil)
	return uc.coordinator.Submit(ctx, intent)
}

// UpdateStock ajusta o estoque de um produto (somente dono)
func (uc *StorefrontUseCase) UpdateStock(ctx context.Context, productID, stock uint64) (*coordinator.Result, error) {
	if err := uc.ensureOwner(ctx); err != nil {
		return nil, err
	}

	intent := coordinator.NewIntent(coordinator.OpUpdateStock, []any{productID, stock}, nil)
	return uc.coordinator.Submit(ctx, intent)
}

// UpdateProduct ajusta preço, estoque e flag de ativo (somente dono)
func (uc *StorefrontUseCase) UpdateProduct(ctx context.Context, productID uint64, req UpdateProductRequest) (*coordinator.Result, error) {
	if err := uc.ensureOwner(ctx); err != nil {
		return nil, err
	}

	priceWei, err := ledger.ParseUnits(req.Price)
	if err != nil {
		return nil, err
	}

	intent := coordinator.NewIntent(coordinator.OpUpdateProduct, []any{
		productID, priceWei.String(), req.Stock, *req.Active,
	}, nil)
	return uc.coordinator.Submit(ctx, intent)
}

// AllOrders devolve todos os pedidos (somente dono), mais recentes primeiro
func (uc *StorefrontUseCase) AllOrders(ctx context.Context) ([]ledger.Order, error) {
	if err := uc.ensureOwner(ctx); err != nil {
		return nil, err
	}
	return uc.orders.AllOrders(ctx)
}

// UpdateOrderStatus move um pedido para um novo status (somente dono)
func (uc *StorefrontUseCase) UpdateOrderStatus(ctx context.Context, orderID uint64, status int) (*coordinator.Result, error) {
	if err := uc.ensureOwner(ctx); err != nil {
		return nil, err
	}
	if !ledger.OrderStatus(status).Valid() {
		return nil, ErrInvalidStatus
	}

	intent := coordinator.NewIntent(coordinator.OpUpdateOrderStatus, []any{orderID, status}, nil)
	return uc.coordinator.Submit(ctx, intent)
}

// Balance devolve o saldo acumulado no contrato (somente dono)
func (uc *StorefrontUseCase) Balance(ctx context.Context) (*big.Int, error) {
	if err := uc.ensureOwner(ctx); err != nil {
		return nil, err
	}
	return uc.orders.Balance(ctx)
}

// Withdraw saca o saldo do contrato para o dono (somente dono)
func (uc *StorefrontUseCase) Withdraw(ctx context.Context) (*coordinator.Result, error) {
	if err := uc.ensureOwner(ctx); err != nil {
		return nil, err
	}

	intent := coordinator.NewIntent(coordinator.OpWithdraw, []any{}, nil)
	return uc.coordinator.Submit(ctx, intent)
}
