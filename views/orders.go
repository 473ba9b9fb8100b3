package views

import (
	"context"
	"encoding/json"
	"log"
	"math/big"
	"sort"
	"strings"

	"github.com/chainfit/storefront/gateway"
	"github.com/chainfit/storefront/ledger"
)

// OrdersView materializa as views de pedidos e saldo. A ordenação
// mais-recente-primeiro é responsabilidade do cliente: o ledger não
// garante ordem nenhuma.
type OrdersView struct {
	gw *gateway.Gateway
}

// NewOrdersView cria a view de pedidos sobre o gateway de leitura
func NewOrdersView(gw *gateway.Gateway) *OrdersView {
	return &OrdersView{gw: gw}
}

// AllOrders devolve todos os pedidos (visão do administrador), do mais
// recente para o mais antigo
func (v *OrdersView) AllOrders(ctx context.Context) ([]ledger.Order, error) {
	if raw, ok := v.gw.Cached(ctx, gateway.KeyAllOrders); ok {
		var orders []ledger.Order
		if err := json.Unmarshal(raw, &orders); err == nil {
			return orders, nil
		}
		v.gw.Invalidate(ctx, gateway.KeyAllOrders)
	}

	countRaw, err := v.gw.Scalar(ctx, gateway.KeyOrderCount, "orderCount")
	if err != nil {
		return nil, err
	}
	count, err := ledger.DecodeUint(countRaw)
	if err != nil {
		return nil, err
	}

	results := v.gw.BatchIDs(ctx, "getOrder", count)
	orders := make([]ledger.Order, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			log.Printf("⚠️ Skipping order slot %d: %v", result.Index+1, result.Err)
			continue
		}
		order, err := ledger.DecodeOrder(result.Raw)
		if err != nil {
			log.Printf("⚠️ Skipping undecodable order slot %d: %v", result.Index+1, err)
			continue
		}
		orders = append(orders, *order)
	}

	sortNewestFirst(orders)

	if raw, err := json.Marshal(orders); err == nil {
		v.gw.StoreCached(ctx, gateway.KeyAllOrders, raw)
	}
	return orders, nil
}

// UserOrders devolve os pedidos do endereço, do mais recente para o
// mais antigo
func (v *OrdersView) UserOrders(ctx context.Context, address string) ([]ledger.Order, error) {
	key := gateway.UserOrdersKey(address)

	raw, err := v.gw.Scalar(ctx, key, "getUserOrders", strings.ToLower(address))
	if err != nil {
		return nil, err
	}
	orders, err := ledger.DecodeOrderList(raw)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(orders)
	return orders, nil
}

// Balance devolve o saldo acumulado no contrato, em wei
func (v *OrdersView) Balance(ctx context.Context) (*big.Int, error) {
	raw, err := v.gw.Scalar(ctx, gateway.KeyBalance, "getContractBalance")
	if err != nil {
		return nil, err
	}
	return ledger.DecodeWei(raw)
}

// Owner devolve o endereço do dono do contrato (cacheado: não muda)
func (v *OrdersView) Owner(ctx context.Context) (string, error) {
	raw, err := v.gw.Scalar(ctx, gateway.KeyOwner, "owner")
	if err != nil {
		return "", err
	}
	return ledger.DecodeAddress(raw)
}

func sortNewestFirst(orders []ledger.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Timestamp != orders[j].Timestamp {
			return orders[i].Timestamp > orders[j].Timestamp
		}
		return orders[i].ID > orders[j].ID
	})
}
