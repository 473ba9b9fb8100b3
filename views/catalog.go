package views

import (
	"context"
	"encoding/json"
	"log"

	"github.com/chainfit/storefront/gateway"
	"github.com/chainfit/storefront/ledger"
)

// CategoryAll desliga o filtro de categoria
const CategoryAll = -1

// CatalogView materializa o catálogo a partir do ledger: lê a contagem
// de produtos, busca os detalhes de 1..count em lote e descarta os
// inativos. A contagem é a autoridade sobre quantos detalhes buscar.
type CatalogView struct {
	gw *gateway.Gateway
}

// NewCatalogView cria a view de catálogo sobre o gateway de leitura
func NewCatalogView(gw *gateway.Gateway) *CatalogView {
	return &CatalogView{gw: gw}
}

// Products devolve o catálogo ativo, opcionalmente filtrado por
// categoria, em ordem ascendente de id (ordem de busca).
func (v *CatalogView) Products(ctx context.Context, category int) ([]ledger.Product, error) {
	products, err := v.activeProducts(ctx)
	if err != nil {
		return nil, err
	}
	if category == CategoryAll {
		return products, nil
	}

	filtered := make([]ledger.Product, 0, len(products))
	for _, product := range products {
		if product.Category == category {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

// Product localiza um produto ativo pelo id no catálogo materializado
func (v *CatalogView) Product(ctx context.Context, id uint64) (*ledger.Product, error) {
	products, err := v.activeProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, nil
}

// activeProducts reconcilia a lista de produtos ativos, servindo a
// versão materializada do cache quando ainda válida
func (v *CatalogView) activeProducts(ctx context.Context) ([]ledger.Product, error) {
	if raw, ok := v.gw.Cached(ctx, gateway.KeyCatalog); ok {
		var products []ledger.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
		// Cache corrompido: descarta e reconstrói do ledger
		v.gw.Invalidate(ctx, gateway.KeyCatalog)
	}

	countRaw, err := v.gw.Scalar(ctx, gateway.KeyProductCount, "productCount")
	if err != nil {
		return nil, err
	}
	count, err := ledger.DecodeUint(countRaw)
	if err != nil {
		return nil, err
	}

	// A contagem pode ter mudado entre a leitura e o lote de detalhes:
	// slots que falham são descartados em vez de derrubar a view
	results := v.gw.BatchIDs(ctx, "getProduct", count)
	products := make([]ledger.Product, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			log.Printf("⚠️ Skipping product slot %d: %v", result.Index+1, result.Err)
			continue
		}
		product, err := ledger.DecodeProduct(result.Raw)
		if err != nil {
			log.Printf("⚠️ Skipping undecodable product slot %d: %v", result.Index+1, err)
			continue
		}
		if !product.Active {
			continue
		}
		products = append(products, *product)
	}

	if raw, err := json.Marshal(products); err == nil {
		v.gw.StoreCached(ctx, gateway.KeyCatalog, raw)
	}
	return products, nil
}
