package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainfit/storefront/gateway"
	"github.com/chainfit/storefront/ledger"
)

// fakeClient roteiriza as respostas do ledger para os testes
type fakeClient struct {
	submitHash ledger.TxHash
	submitErr  error
	receipt    *ledger.Receipt
	receiptErr error
	waitGate   chan struct{} // se não-nulo, WaitReceipt bloqueia até fechar
}

func (f *fakeClient) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) Submit(ctx context.Context, from, method string, params []any, value *big.Int) (ledger.TxHash, error) {
	return f.submitHash, f.submitErr
}

func (f *fakeClient) WaitReceipt(ctx context.Context, hash ledger.TxHash) (*ledger.Receipt, error) {
	if f.waitGate != nil {
		<-f.waitGate
	}
	return f.receipt, f.receiptErr
}

// fakeWallet roteiriza a aprovação do signatário
type fakeWallet struct {
	address    string
	approveErr error
}

func (f *fakeWallet) Address() string  { return f.address }
func (f *fakeWallet) Connected() bool  { return f.address != "" }
func (f *fakeWallet) Approve(ctx context.Context, method string, params []any, value *big.Int) error {
	return f.approveErr
}

// recorder captura a sequência de estados observada
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(state State, intent Intent) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
}

func (r *recorder) sequence() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestSubmit_SuccessSequence(t *testing.T) {
	// Arrange
	client := &fakeClient{
		submitHash: "0xhash",
		receipt:    &ledger.Receipt{TxHash: "0xhash", Status: ledger.ReceiptStatusSuccess},
	}
	wallet := &fakeWallet{address: "0xBuyer"}
	co := New(client, wallet)

	rec := &recorder{}
	co.Observe(rec.observe)

	var invalidated []gateway.QueryKey
	co.OnConfirmed(func(ctx context.Context, keys ...gateway.QueryKey) {
		invalidated = append(invalidated, keys...)
	})

	// Act
	result, err := co.Submit(context.Background(), NewIntent(OpPlaceOrder, []any{[]uint64{7}, []uint64{2}}, big.NewInt(100)))

	// Assert: no state skipped, exact linear sequence
	require.NoError(t, err)
	assert.Equal(t, []State{StateSubmitting, StateSubmitted, StateConfirming, StateConfirmed}, rec.sequence())
	assert.Equal(t, ledger.TxHash("0xhash"), result.Hash)
	assert.Equal(t, StateConfirmed, co.State())

	// A escrita confirmada invalida as views afetadas
	assert.Equal(t, Invalidations(OpPlaceOrder, "0xBuyer"), invalidated)
}

func TestSubmit_UserRejected(t *testing.T) {
	// Arrange
	client := &fakeClient{}
	wallet := &fakeWallet{address: "0xBuyer", approveErr: ledger.ErrRejected}
	co := New(client, wallet)

	rec := &recorder{}
	co.Observe(rec.observe)

	// Act
	_, err := co.Submit(context.Background(), NewIntent(OpWithdraw, []any{}, nil))

	// Assert: terminal right after submitting, nothing reached the ledger
	assert.Equal(t, []State{StateSubmitting, StateSubmitFailed}, rec.sequence())

	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, ErrorKindUserRejected, txErr.Kind)
	assert.ErrorIs(t, err, ledger.ErrRejected)
}

func TestSubmit_SubmissionError(t *testing.T) {
	client := &fakeClient{submitErr: errors.New("invalid argument encoding")}
	wallet := &fakeWallet{address: "0xBuyer"}
	co := New(client, wallet)

	rec := &recorder{}
	co.Observe(rec.observe)

	_, err := co.Submit(context.Background(), NewIntent(OpAddProduct, []any{"shirt"}, nil))

	assert.Equal(t, []State{StateSubmitting, StateSubmitFailed}, rec.sequence())

	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, ErrorKindSubmission, txErr.Kind)
}

func TestSubmit_RevertedExecution(t *testing.T) {
	// Arrange
	client := &fakeClient{
		submitHash: "0xhash",
		receipt:    &ledger.Receipt{TxHash: "0xhash", Status: ledger.ReceiptStatusReverted, Reason: "insufficient stock"},
	}
	wallet := &fakeWallet{address: "0xBuyer"}
	co := New(client, wallet)

	rec := &recorder{}
	co.Observe(rec.observe)

	var invalidations int
	co.OnConfirmed(func(ctx context.Context, keys ...gateway.QueryKey) {
		invalidations++
	})

	// Act
	_, err := co.Submit(context.Background(), NewIntent(OpPlaceOrder, []any{}, nil))

	// Assert: surfaced with the ledger's failure reason, no invalidation
	assert.Equal(t, []State{StateSubmitting, StateSubmitted, StateConfirming, StateConfirmFailed}, rec.sequence())

	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, ErrorKindConfirmation, txErr.Kind)
	assert.Equal(t, "insufficient stock", txErr.Reason)
	assert.Zero(t, invalidations)
}

func TestSubmit_ConfirmationError(t *testing.T) {
	client := &fakeClient{
		submitHash: "0xhash",
		receiptErr: errors.New("connection lost"),
	}
	wallet := &fakeWallet{address: "0xBuyer"}
	co := New(client, wallet)

	_, err := co.Submit(context.Background(), NewIntent(OpUpdateStock, []any{uint64(1), uint64(5)}, nil))

	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, ErrorKindConfirmation, txErr.Kind)
	assert.Equal(t, StateConfirmFailed, co.State())
}

func TestSubmit_RejectsConcurrentIntent(t *testing.T) {
	// Arrange: first intent parks in confirming until the gate opens
	gate := make(chan struct{})
	client := &fakeClient{
		submitHash: "0xhash",
		receipt:    &ledger.Receipt{TxHash: "0xhash", Status: ledger.ReceiptStatusSuccess},
		waitGate:   gate,
	}
	wallet := &fakeWallet{address: "0xBuyer"}
	co := New(client, wallet)

	confirming := make(chan struct{})
	co.Observe(func(state State, intent Intent) {
		if state == StateConfirming {
			close(confirming)
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := co.Submit(context.Background(), NewIntent(OpWithdraw, []any{}, nil))
		done <- err
	}()
	<-confirming

	// Act: a second submission while one is in flight
	_, err := co.Submit(context.Background(), NewIntent(OpWithdraw, []any{}, nil))

	// Assert
	assert.ErrorIs(t, err, ErrBusy)

	close(gate)
	require.NoError(t, <-done)

	// Terminal state accepts a fresh submission
	client.waitGate = nil
	_, err = co.Submit(context.Background(), NewIntent(OpWithdraw, []any{}, nil))
	assert.NoError(t, err)
}

func TestInvalidations(t *testing.T) {
	buyer := "0xBuyer"

	tests := []struct {
		op   string
		keys []gateway.QueryKey
	}{
		{OpAddProduct, []gateway.QueryKey{gateway.KeyProductCount, gateway.KeyCatalog}},
		{OpUpdateStock, []gateway.QueryKey{gateway.KeyCatalog}},
		{OpUpdateProduct, []gateway.QueryKey{gateway.KeyCatalog}},
		{OpPlaceOrder, []gateway.QueryKey{
			gateway.KeyCatalog, gateway.KeyOrderCount, gateway.KeyAllOrders,
			gateway.UserOrdersKey(buyer), gateway.KeyBalance,
		}},
		{OpUpdateOrderStatus, []gateway.QueryKey{gateway.KeyAllOrders, gateway.UserOrdersKey(buyer)}},
		{OpWithdraw, []gateway.QueryKey{gateway.KeyBalance}},
		{"unknownOp", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.keys, Invalidations(tt.op, buyer), "op %s", tt.op)
	}
}
