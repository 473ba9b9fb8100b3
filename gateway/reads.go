package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/chainfit/storefront/ledger"
)

// QueryKey identifica uma consulta cacheável e invalidável
type QueryKey string

// Chaves das views reconciliadas. O coordenador de transações invalida
// estas chaves quando uma escrita confirmada pode tê-las afetado.
const (
	KeyOwner        QueryKey = "owner"
	KeyProductCount QueryKey = "productCount"
	KeyCatalog      QueryKey = "catalog"
	KeyOrderCount   QueryKey = "orderCount"
	KeyAllOrders    QueryKey = "allOrders"
	KeyBalance      QueryKey = "contractBalance"
)

// UserOrdersKey devolve a chave da view de pedidos de um endereço
func UserOrdersKey(address string) QueryKey {
	return QueryKey("userOrders:" + strings.ToLower(address))
}

// BatchResult é o resultado independente de um item de uma leitura em
// lote: falha em um slot não invalida os demais.
type BatchResult struct {
	Index int
	Raw   json.RawMessage
	Err   error
}

// Gateway é a camada de leitura sobre o ledger: leituras escalares
// cacheáveis e leituras de detalhe em lote com resultado por item.
type Gateway struct {
	client ledger.Client
	cache  Cache
}

// New cria o gateway de leitura sobre o cliente e o cache informados
func New(client ledger.Client, cache Cache) *Gateway {
	return &Gateway{
		client: client,
		cache:  cache,
	}
}

// Scalar lê um resultado nomeado, servindo do cache quando possível.
// Um valor ausente no cache nunca é tratado como zero: a leitura é
// reemitida contra o ledger.
func (g *Gateway) Scalar(ctx context.Context, key QueryKey, method string, params ...any) (json.RawMessage, error) {
	if raw, ok := g.cache.Get(ctx, key); ok {
		return raw, nil
	}

	raw, err := g.client.Call(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	g.cache.Set(ctx, key, raw)
	return raw, nil
}

// Batch emite uma leitura por tupla de argumentos e devolve um resultado
// independente por slot. Lote de tamanho zero resolve imediatamente para
// um lote vazio bem-sucedido, nunca para um estado pendente.
func (g *Gateway) Batch(ctx context.Context, method string, argLists [][]any) []BatchResult {
	results := make([]BatchResult, 0, len(argLists))
	for i, params := range argLists {
		raw, err := g.client.Call(ctx, method, params...)
		results = append(results, BatchResult{Index: i, Raw: raw, Err: err})
	}
	return results
}

// BatchIDs é o atalho para o lote denso de ids 1..count
func (g *Gateway) BatchIDs(ctx context.Context, method string, count uint64) []BatchResult {
	argLists := make([][]any, 0, count)
	for id := uint64(1); id <= count; id++ {
		argLists = append(argLists, []any{id})
	}
	return g.Batch(ctx, method, argLists)
}

// Cached lê um valor materializado do cache
func (g *Gateway) Cached(ctx context.Context, key QueryKey) (json.RawMessage, bool) {
	return g.cache.Get(ctx, key)
}

// StoreCached grava um valor materializado no cache
func (g *Gateway) StoreCached(ctx context.Context, key QueryKey, raw json.RawMessage) {
	g.cache.Set(ctx, key, raw)
}

// Invalidate descarta as consultas indicadas; a próxima leitura busca
// dados frescos do ledger
func (g *Gateway) Invalidate(ctx context.Context, keys ...QueryKey) {
	g.cache.Invalidate(ctx, keys...)
}
