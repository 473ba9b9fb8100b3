package cart

import (
	"context"
	"sync"
)

// Persister é o adaptador de persistência durável do carrinho.
// O registro gravado é a lista inteira de itens sob o namespace fixo.
type Persister interface {
	// Load recarrega a lista de itens persistida (nil se nunca gravada)
	Load(ctx context.Context) ([]Item, error)

	// Save grava a lista inteira, substituindo o registro anterior
	Save(ctx context.Context, items []Item) error
}

// MemoryPersister guarda o carrinho apenas em memória. Serve para testes
// e para o modo degradado quando o armazenamento durável está fora.
type MemoryPersister struct {
	mu    sync.Mutex
	items []Item
}

// NewMemoryPersister cria um persister volátil vazio
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load(ctx context.Context) ([]Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.items == nil {
		return nil, nil
	}
	items := make([]Item, len(p.items))
	copy(items, p.items)
	return items, nil
}

func (p *MemoryPersister) Save(ctx context.Context, items []Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = make([]Item, len(items))
	copy(p.items, items)
	return nil
}
