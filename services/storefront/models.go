package main

import (
	"github.com/chainfit/storefront/cart"
	"github.com/chainfit/storefront/ledger"
)

// AddCartItemRequest adiciona um produto do catálogo ao carrinho
type AddCartItemRequest struct {
	ProductID uint64 `json:"product_id" binding:"required"`
}

// UpdateCartItemRequest fixa a quantidade de um item do carrinho.
// Quantidade <= 0 remove o item, então o campo é ponteiro: zero é válido.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// AddProductRequest cadastra um produto novo no contrato
type AddProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    int    `json:"category" binding:"gte=0"`
	Price       string `json:"price" binding:"required"` // ether decimal
	Stock       uint64 `json:"stock"`
	Image       string `json:"image"`
}

// UpdateStockRequest ajusta o estoque de um produto
type UpdateStockRequest struct {
	Stock *uint64 `json:"stock" binding:"required"`
}

// UpdateProductRequest ajusta preço, estoque e flag de ativo
type UpdateProductRequest struct {
	Price  string `json:"price" binding:"required"` // ether decimal
	Stock  uint64 `json:"stock"`
	Active *bool  `json:"active" binding:"required"`
}

// UpdateOrderStatusRequest move um pedido para um novo status
type UpdateOrderStatusRequest struct {
	Status *int `json:"status" binding:"required"`
}

// ProductResponse é o produto com o preço formatado para exibição
type ProductResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    int    `json:"category"`
	Label       string `json:"category_label"`
	Price       string `json:"price"` // ether decimal
	Stock       uint64 `json:"stock"`
	Image       string `json:"image"`
	Active      bool   `json:"active"`
}

func toProductResponse(p ledger.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Label:       ledger.CategoryLabel(p.Category),
		Price:       ledger.FormatUnits(p.Price),
		Stock:       p.Stock,
		Image:       p.Image,
		Active:      p.Active,
	}
}

func toProductResponses(products []ledger.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

// OrderResponse é o pedido com total formatado e rótulo de status
type OrderResponse struct {
	ID          uint64             `json:"id"`
	Customer    string             `json:"customer"`
	Lines       []ledger.OrderLine `json:"lines"`
	Total       string             `json:"total"` // ether decimal
	Status      int                `json:"status"`
	StatusLabel string             `json:"status_label"`
	Timestamp   int64              `json:"timestamp"`
	ItemCount   uint64             `json:"item_count"`
}

func toOrderResponse(o ledger.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		Customer:    o.Customer,
		Lines:       o.Lines,
		Total:       ledger.FormatUnits(o.Total),
		Status:      int(o.Status),
		StatusLabel: o.Status.String(),
		Timestamp:   o.Timestamp,
		ItemCount:   o.ItemCount(),
	}
}

func toOrderResponses(orders []ledger.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// CartResponse é o conteúdo corrente do carrinho com os agregados
type CartResponse struct {
	Items     []cart.Item `json:"items"`
	Total     string      `json:"total"` // ether decimal, 4 casas
	ItemCount int         `json:"item_count"`
}

// CheckoutResponse é o desfecho de um checkout confirmado
type CheckoutResponse struct {
	IntentID string `json:"intent_id"`
	TxHash   string `json:"tx_hash"`
	Message  string `json:"message"`
}
