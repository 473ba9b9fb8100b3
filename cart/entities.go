package cart

import (
	"github.com/shopspring/decimal"
)

// StorageKey é o namespace fixo sob o qual o carrinho é persistido
const StorageKey = "chainfit-cart"

// Item é uma intenção de compra local: snapshot do produto no momento
// em que entrou no carrinho. O preço não é atualizado automaticamente.
type Item struct {
	ProductID uint64 `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"` // ether decimal, snapshot do add
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category"`
}

// Subtotal calcula preço × quantidade do item
func (i Item) Subtotal() decimal.Decimal {
	price, err := decimal.NewFromString(i.Price)
	if err != nil {
		// Snapshot corrompido não derruba o total do carrinho
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
