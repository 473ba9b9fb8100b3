package coordinator

import "github.com/chainfit/storefront/gateway"

// Operações de escrita expostas pelo contrato
const (
	OpAddProduct        = "addProduct"
	OpUpdateStock       = "updateStock"
	OpUpdateProduct     = "updateProduct"
	OpPlaceOrder        = "placeOrder"
	OpUpdateOrderStatus = "updateOrderStatus"
	OpWithdraw          = "withdraw"
)

// Invalidations é o contrato de invalidação: a função pura que mapeia
// uma operação confirmada para o conjunto de chaves de consulta cujos
// dados ela pode ter mudado. O endereço é o da carteira que submeteu,
// usado para a view de pedidos do próprio comprador.
func Invalidations(op, address string) []gateway.QueryKey {
	switch op {
	case OpAddProduct:
		return []gateway.QueryKey{gateway.KeyProductCount, gateway.KeyCatalog}

	case OpUpdateStock, OpUpdateProduct:
		return []gateway.QueryKey{gateway.KeyCatalog}

	case OpPlaceOrder:
		// Um pedido novo muda estoque, contagem e listas de pedidos,
		// e deposita o pagamento no contrato
		return []gateway.QueryKey{
			gateway.KeyCatalog,
			gateway.KeyOrderCount,
			gateway.KeyAllOrders,
			gateway.UserOrdersKey(address),
			gateway.KeyBalance,
		}

	case OpUpdateOrderStatus:
		return []gateway.QueryKey{
			gateway.KeyAllOrders,
			gateway.UserOrdersKey(address),
		}

	case OpWithdraw:
		return []gateway.QueryKey{gateway.KeyBalance}

	default:
		return nil
	}
}
