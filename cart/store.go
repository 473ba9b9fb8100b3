package cart

import (
	"context"
	"log"
	"sync"

	"github.com/shopspring/decimal"
)

// Store guarda as intenções de compra locais antes de qualquer interação
// com o ledger. No máximo um item por produto; quantidade nunca fica <= 0.
// Toda mutação persiste o carrinho inteiro; falha de persistência não é
// fatal e o carrinho continua funcionando em memória na sessão corrente.
type Store struct {
	mu        sync.Mutex
	items     []Item
	persister Persister
}

// NewStore cria o carrinho recarregando o conteúdo persistido
func NewStore(ctx context.Context, persister Persister) *Store {
	store := &Store{persister: persister}

	items, err := persister.Load(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to load persisted cart, starting empty: %v", err)
		return store
	}
	store.items = items
	return store
}

// AddItem insere o snapshot no carrinho. Se o produto já está presente,
// incrementa a quantidade em 1; a quantidade do snapshot é ignorada.
func (s *Store) AddItem(ctx context.Context, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Quantity++
			s.persist(ctx)
			return
		}
	}

	item.Quantity = 1
	s.items = append(s.items, item)
	s.persist(ctx)
}

// RemoveItem remove o item do produto, se presente
func (s *Store) RemoveItem(ctx context.Context, productID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, productID)
}

// UpdateQuantity fixa a quantidade exata do item. Quantidade <= 0
// equivale a remover o item.
func (s *Store) UpdateQuantity(ctx context.Context, productID uint64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(ctx, productID)
		return
	}

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// Clear esvazia o carrinho
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items devolve uma cópia dos itens na ordem de inserção
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Total soma preço × quantidade de todos os itens, como string decimal
// com 4 casas fixas. Nada de ponto flutuante binário em moeda.
func (s *Store) Total() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total.StringFixed(4)
}

// ItemCount soma as quantidades de todos os itens (contador do badge),
// não o número de produtos distintos
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) removeLocked(ctx context.Context, productID uint64) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// persist grava o carrinho inteiro; chamado com o lock já adquirido
func (s *Store) persist(ctx context.Context) {
	if err := s.persister.Save(ctx, s.items); err != nil {
		log.Printf("⚠️ Failed to persist cart: %v", err)
	}
}
