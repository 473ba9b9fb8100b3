package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPersister implementa Persister usando PostgreSQL: uma linha por
// (namespace, dono) com a lista de itens serializada em JSON.
type PostgresPersister struct {
	db    *pgxpool.Pool
	owner string
}

// NewPostgresPersister cria o persister durável para o endereço dono do carrinho
func NewPostgresPersister(db *pgxpool.Pool, owner string) Persister {
	return &PostgresPersister{
		db:    db,
		owner: owner,
	}
}

// Load recarrega a lista de itens persistida
func (p *PostgresPersister) Load(ctx context.Context) ([]Item, error) {
	var payload []byte
	err := p.db.QueryRow(ctx, `
		SELECT items FROM carts WHERE namespace = $1 AND owner = $2
	`, StorageKey, p.owner).Scan(&payload)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decoding persisted cart: %w", err)
	}
	return items, nil
}

// Save grava a lista inteira, substituindo o registro anterior
func (p *PostgresPersister) Save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}

	_, err = p.db.Exec(ctx, `
		INSERT INTO carts (namespace, owner, items, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, owner)
		DO UPDATE SET items = $3, updated_at = NOW()
	`, StorageKey, p.owner, payload)
	if err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}
