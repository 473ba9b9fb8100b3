package ledger

import "math/big"

// Categorias de produto definidas pelo contrato (índices fixos)
const (
	CategoryShirts   = 0
	CategoryTrousers = 1
	CategoryShoes    = 2
)

// CategoryLabels mapeia o índice da categoria para o rótulo exibido
var CategoryLabels = map[int]string{
	CategoryShirts:   "shirts",
	CategoryTrousers: "trousers",
	CategoryShoes:    "shoes",
}

// CategoryLabel retorna o rótulo da categoria ou "unknown"
func CategoryLabel(category int) string {
	if label, ok := CategoryLabels[category]; ok {
		return label
	}
	return "unknown"
}

// OrderStatus representa o status de um pedido no contrato
type OrderStatus int

const (
	OrderStatusPending OrderStatus = iota
	OrderStatusConfirmed
	OrderStatusShipped
	OrderStatusDelivered
	OrderStatusCancelled
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusConfirmed: "Confirmed",
	OrderStatusShipped:   "Shipped",
	OrderStatusDelivered: "Delivered",
	OrderStatusCancelled: "Cancelled",
}

func (s OrderStatus) String() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// Valid informa se o valor corresponde a um status conhecido
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Terminal informa se o status não admite mais transições
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Product é o registro canônico de produto mantido pelo contrato.
// O cliente nunca o altera diretamente: toda leitura é um snapshot
// que pode estar defasado.
type Product struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    int      `json:"category"`
	Price       *big.Int `json:"price"` // wei
	Stock       uint64   `json:"stock"`
	Image       string   `json:"image"`
	Active      bool     `json:"active"`
}

// OrderLine é uma linha (produto, quantidade) de um pedido
type OrderLine struct {
	ProductID uint64 `json:"productId"`
	Quantity  uint64 `json:"quantity"`
}

// Order é o registro canônico de pedido mantido pelo contrato.
// O status só é autoritativo no ledger; a cópia local é cache.
type Order struct {
	ID        uint64      `json:"id"`
	Customer  string      `json:"customer"`
	Lines     []OrderLine `json:"lines"`
	Total     *big.Int    `json:"total"` // wei
	Status    OrderStatus `json:"status"`
	Timestamp int64       `json:"timestamp"` // unix seconds
}

// ItemCount soma as quantidades de todas as linhas do pedido
func (o *Order) ItemCount() uint64 {
	var count uint64
	for _, line := range o.Lines {
		count += line.Quantity
	}
	return count
}
