package coordinator

import (
	"context"
	"errors"
	"log"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/chainfit/storefront/gateway"
	"github.com/chainfit/storefront/ledger"
)

// State é o estado do ciclo de vida de uma intenção de escrita.
// A máquina é linear com uma bifurcação:
// idle → submitting → (submit_failed | submitted) → confirming → (confirmed | confirm_failed)
type State string

const (
	StateIdle          State = "idle"
	StateSubmitting    State = "submitting"
	StateSubmitFailed  State = "submit_failed"
	StateSubmitted     State = "submitted"
	StateConfirming    State = "confirming"
	StateConfirmed     State = "confirmed"
	StateConfirmFailed State = "confirm_failed"
)

// inFlight informa se o estado ainda está entre submissão e desfecho
func (s State) inFlight() bool {
	return s == StateSubmitting || s == StateSubmitted || s == StateConfirming
}

// Intent é uma operação de escrita pedida ao ledger mas ainda não
// confirmada. Descartada assim que o desfecho terminal é consumido.
type Intent struct {
	ID     string
	Op     string
	Params []any
	Value  *big.Int // valor nativo anexado, em wei
}

// NewIntent monta uma intenção identificada para a operação
func NewIntent(op string, params []any, value *big.Int) Intent {
	return Intent{
		ID:     uuid.New().String(),
		Op:     op,
		Params: params,
		Value:  value,
	}
}

// Result é o desfecho de uma intenção confirmada
type Result struct {
	Intent  Intent
	Hash    ledger.TxHash
	Receipt *ledger.Receipt
}

// ErrBusy sinaliza que já existe uma intenção em voo neste coordenador.
// Não há fila: o chamador deve desabilitar o gatilho enquanto espera.
var ErrBusy = errors.New("a transaction is already in flight")

// InvalidateFunc recebe as chaves de consulta afetadas por uma escrita
// confirmada
type InvalidateFunc func(ctx context.Context, keys ...gateway.QueryKey)

// Observer é notificado a cada transição de estado (testes e UI)
type Observer func(state State, intent Intent)

// Coordinator submete intenções de escrita ao ledger e as acompanha
// pelo ciclo de confirmação. No máximo uma intenção em voo por
// instância; cancelamento não é suportado depois de submitting.
type Coordinator struct {
	mu     sync.Mutex
	state  State
	client ledger.Client
	wallet ledger.Wallet

	invalidate InvalidateFunc
	observer   Observer
}

// New cria um coordenador ocioso para a carteira conectada
func New(client ledger.Client, wallet ledger.Wallet) *Coordinator {
	return &Coordinator{
		state:  StateIdle,
		client: client,
		wallet: wallet,
	}
}

// OnConfirmed registra a função de invalidação chamada quando uma
// escrita confirma
func (co *Coordinator) OnConfirmed(fn InvalidateFunc) {
	co.invalidate = fn
}

// Observe registra o observador de transições de estado
func (co *Coordinator) Observe(fn Observer) {
	co.observer = fn
}

// State devolve o estado corrente do coordenador
func (co *Coordinator) State() State {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

// Submit conduz a intenção por todo o ciclo: aprovação do signatário,
// transmissão e espera de confirmação. Bloqueia até o desfecho terminal.
// Uma nova submissão enquanto outra está em voo é rejeitada com ErrBusy.
func (co *Coordinator) Submit(ctx context.Context, intent Intent) (*Result, error) {
	co.mu.Lock()
	if co.state.inFlight() {
		co.mu.Unlock()
		return nil, ErrBusy
	}
	co.state = StateSubmitting
	co.mu.Unlock()
	co.notify(StateSubmitting, intent)

	tracer := otel.Tracer("tx-coordinator")
	ctx, span := tracer.Start(ctx, "submit_intent")
	defer span.End()

	span.SetAttributes(
		attribute.String("intent.id", intent.ID),
		attribute.String("intent.op", intent.Op),
	)

	log.Printf("🚀 Submitting %s | IntentID: %s", intent.Op, intent.ID)

	// Aprovação do signatário: recusa aborta antes de qualquer efeito
	if err := co.wallet.Approve(ctx, intent.Op, intent.Params, intent.Value); err != nil {
		co.setState(StateSubmitFailed, intent)
		span.RecordError(err)
		if errors.Is(err, ledger.ErrRejected) {
			log.Printf("ℹ️ %s rejected by wallet | IntentID: %s", intent.Op, intent.ID)
			return nil, &TxError{Kind: ErrorKindUserRejected, Err: err}
		}
		log.Printf("❌ %s approval failed: %v", intent.Op, err)
		return nil, &TxError{Kind: ErrorKindSubmission, Err: err}
	}

	hash, err := co.client.Submit(ctx, co.wallet.Address(), intent.Op, intent.Params, intent.Value)
	if err != nil {
		co.setState(StateSubmitFailed, intent)
		span.RecordError(err)
		log.Printf("❌ %s submission failed: %v", intent.Op, err)
		return nil, &TxError{Kind: ErrorKindSubmission, Err: err}
	}

	span.SetAttributes(attribute.String("tx.hash", string(hash)))
	co.setState(StateSubmitted, intent)
	co.setState(StateConfirming, intent)

	log.Printf("⏳ Confirming %s | TxHash: %s", intent.Op, hash)

	receipt, err := co.client.WaitReceipt(ctx, hash)
	if err != nil {
		co.setState(StateConfirmFailed, intent)
		span.RecordError(err)
		log.Printf("❌ %s confirmation failed: %v", intent.Op, err)
		return nil, &TxError{Kind: ErrorKindConfirmation, Err: err}
	}
	if receipt.Status != ledger.ReceiptStatusSuccess {
		co.setState(StateConfirmFailed, intent)
		reason := receipt.Reason
		if reason == "" {
			reason = "transaction reverted"
		}
		log.Printf("❌ %s reverted: %s | TxHash: %s", intent.Op, reason, hash)
		return nil, &TxError{Kind: ErrorKindConfirmation, Reason: reason}
	}

	co.setState(StateConfirmed, intent)
	log.Printf("✅ %s confirmed | TxHash: %s", intent.Op, hash)

	if co.invalidate != nil {
		keys := Invalidations(intent.Op, co.wallet.Address())
		if len(keys) > 0 {
			co.invalidate(ctx, keys...)
		}
	}

	return &Result{Intent: intent, Hash: hash, Receipt: receipt}, nil
}

func (co *Coordinator) setState(state State, intent Intent) {
	co.mu.Lock()
	co.state = state
	co.mu.Unlock()
	co.notify(state, intent)
}

func (co *Coordinator) notify(state State, intent Intent) {
	if co.observer != nil {
		co.observer(state, intent)
	}
}
