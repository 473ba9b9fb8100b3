package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// weiAmount decodifica um valor em wei vindo do ledger, que pode chegar
// como número JSON ou como string (valores acima de 2^53 não cabem em
// float64, então alguns gateways serializam como string).
type weiAmount struct {
	*big.Int
}

func (w *weiAmount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		w.Int = new(big.Int)
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid wei amount %q", s)
	}
	w.Int = v
	return nil
}

// rawProduct cobre as duas variantes de schema observadas no contrato:
// o campo de imagem aparece como "image" ou "imageUrl" dependendo da versão.
type rawProduct struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    int       `json:"category"`
	Price       weiAmount `json:"price"`
	Stock       uint64    `json:"stock"`
	Image       string    `json:"image"`
	ImageURL    string    `json:"imageUrl"`
	Active      bool      `json:"active"`
}

// rawOrder cobre as duas variantes de pedido: plana (um produto por pedido)
// e com linhas (arrays de produtos e quantidades).
type rawOrder struct {
	ID          uint64    `json:"id"`
	Customer    string    `json:"customer"`
	Buyer       string    `json:"buyer"`
	ProductID   *uint64   `json:"productId"`
	Quantity    *uint64   `json:"quantity"`
	ProductIDs  []uint64  `json:"productIds"`
	Quantities  []uint64  `json:"quantities"`
	TotalAmount weiAmount `json:"totalAmount"`
	Status      int       `json:"status"`
	Timestamp   int64     `json:"timestamp"`
}

// DecodeProduct normaliza um produto bruto do ledger para o registro canônico
func DecodeProduct(data json.RawMessage) (*Product, error) {
	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding product: %w", err)
	}
	image := raw.Image
	if image == "" {
		image = raw.ImageURL
	}
	price := raw.Price.Int
	if price == nil {
		price = new(big.Int)
	}
	return &Product{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Category:    raw.Category,
		Price:       price,
		Stock:       raw.Stock,
		Image:       image,
		Active:      raw.Active,
	}, nil
}

// DecodeOrder normaliza um pedido bruto do ledger para a forma canônica
// com linhas. Um pedido plano vira um pedido de linha única.
func DecodeOrder(data json.RawMessage) (*Order, error) {
	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding order: %w", err)
	}

	customer := raw.Customer
	if customer == "" {
		customer = raw.Buyer
	}

	var lines []OrderLine
	switch {
	case len(raw.ProductIDs) > 0:
		if len(raw.ProductIDs) != len(raw.Quantities) {
			return nil, fmt.Errorf("order %d: %d product ids but %d quantities",
				raw.ID, len(raw.ProductIDs), len(raw.Quantities))
		}
		lines = make([]OrderLine, len(raw.ProductIDs))
		for i := range raw.ProductIDs {
			lines[i] = OrderLine{ProductID: raw.ProductIDs[i], Quantity: raw.Quantities[i]}
		}
	case raw.ProductID != nil:
		qty := uint64(1)
		if raw.Quantity != nil {
			qty = *raw.Quantity
		}
		lines = []OrderLine{{ProductID: *raw.ProductID, Quantity: qty}}
	}

	total := raw.TotalAmount.Int
	if total == nil {
		total = new(big.Int)
	}
	return &Order{
		ID:        raw.ID,
		Customer:  customer,
		Lines:     lines,
		Total:     total,
		Status:    OrderStatus(raw.Status),
		Timestamp: raw.Timestamp,
	}, nil
}

// DecodeOrderList normaliza uma lista de pedidos brutos
func DecodeOrderList(data json.RawMessage) ([]Order, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decoding order list: %w", err)
	}
	orders := make([]Order, 0, len(raws))
	for _, r := range raws {
		order, err := DecodeOrder(r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// DecodeUint decodifica um escalar inteiro (contagens, ids)
func DecodeUint(data json.RawMessage) (uint64, error) {
	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decoding uint: %w", err)
	}
	return v, nil
}

// DecodeAddress decodifica um endereço retornado pelo ledger
func DecodeAddress(data json.RawMessage) (string, error) {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("decoding address: %w", err)
	}
	return v, nil
}

// DecodeWei decodifica um valor monetário em wei (número ou string)
func DecodeWei(data json.RawMessage) (*big.Int, error) {
	var v weiAmount
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v.Int == nil {
		return new(big.Int), nil
	}
	return v.Int, nil
}
