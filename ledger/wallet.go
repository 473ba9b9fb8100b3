package ledger

import (
	"context"
	"errors"
	"math/big"
)

// ErrRejected sinaliza que o signatário recusou a transação.
// Recusa é recuperável localmente: nada foi transmitido ao ledger.
var ErrRejected = errors.New("transaction rejected by wallet")

// Wallet é a fronteira de capacidade da carteira conectada. A negociação
// de conexão acontece fora do core; aqui só consumimos o resultado.
type Wallet interface {
	// Address devolve o endereço da sessão conectada
	Address() string

	// Connected informa se há uma sessão ativa
	Connected() bool

	// Approve pede ao signatário autorização para a escrita. Um erro aqui
	// aborta a submissão antes de qualquer efeito no ledger.
	Approve(ctx context.Context, method string, params []any, value *big.Int) error
}

// StaticWallet é uma sessão fixa configurada no boot, usada pelo serviço
// headless: o endereço vem da configuração e toda escrita é aprovada.
type StaticWallet struct {
	address string
}

// NewStaticWallet cria uma sessão fixa para o endereço informado
func NewStaticWallet(address string) *StaticWallet {
	return &StaticWallet{address: address}
}

func (w *StaticWallet) Address() string {
	return w.address
}

func (w *StaticWallet) Connected() bool {
	return w.address != ""
}

func (w *StaticWallet) Approve(ctx context.Context, method string, params []any, value *big.Int) error {
	if !w.Connected() {
		return ErrRejected
	}
	return nil
}
