package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-resty/resty/v2"
)

// TxHash identifica uma transação submetida ao ledger
type TxHash string

// Status possíveis de um recibo de transação
const (
	ReceiptStatusPending  = "pending"
	ReceiptStatusSuccess  = "success"
	ReceiptStatusReverted = "reverted"
)

// Receipt é o recibo de inclusão de uma transação no ledger
type Receipt struct {
	TxHash TxHash `json:"tx_hash"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Client abstrai o contrato remoto: leituras nomeadas com argumentos
// posicionais e escritas com valor nativo opcional anexado. O ledger é
// a única fonte de verdade; tudo que o cliente lê é snapshot.
type Client interface {
	// Call executa uma leitura e devolve o resultado bruto em JSON
	Call(ctx context.Context, method string, params ...any) (json.RawMessage, error)

	// Submit transmite uma escrita assinada e devolve o hash da transação
	Submit(ctx context.Context, from, method string, params []any, value *big.Int) (TxHash, error)

	// WaitReceipt bloqueia até a transação ser incluída ou revertida.
	// A fronteira do ledger é dona da política de timeout e retry.
	WaitReceipt(ctx context.Context, hash TxHash) (*Receipt, error)
}

// HTTPClient implementa Client falando JSON com o gateway do nó
type HTTPClient struct {
	http         *resty.Client
	pollInterval time.Duration
}

// NewHTTPClient cria um cliente para o gateway do ledger em baseURL
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
		pollInterval: 2 * time.Second,
	}
}

type callRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

type submitRequest struct {
	From   string `json:"from"`
	Method string `json:"method"`
	Params []any  `json:"params"`
	Value  string `json:"value,omitempty"` // wei decimal string
}

type submitResponse struct {
	TxHash TxHash `json:"tx_hash"`
	Error  string `json:"error,omitempty"`
}

// Call executa uma leitura no contrato
func (c *HTTPClient) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	var out callResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(callRequest{Method: method, Params: params}).
		SetResult(&out).
		Post("/api/ledger/call")
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("calling %s: ledger returned status %d", method, resp.StatusCode())
	}
	if out.Error != "" {
		return nil, fmt.Errorf("calling %s: %s", method, out.Error)
	}
	return out.Result, nil
}

// Submit transmite uma escrita para o ledger
func (c *HTTPClient) Submit(ctx context.Context, from, method string, params []any, value *big.Int) (TxHash, error) {
	if params == nil {
		params = []any{}
	}
	req := submitRequest{From: from, Method: method, Params: params}
	if value != nil && value.Sign() > 0 {
		req.Value = value.String()
	}

	var out submitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/ledger/transactions")
	if err != nil {
		return "", fmt.Errorf("submitting %s: %w", method, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("submitting %s: ledger returned status %d", method, resp.StatusCode())
	}
	if out.Error != "" {
		return "", fmt.Errorf("submitting %s: %s", method, out.Error)
	}
	if out.TxHash == "" {
		return "", fmt.Errorf("submitting %s: ledger returned no transaction hash", method)
	}
	return out.TxHash, nil
}

// WaitReceipt consulta o recibo até a transação sair do estado pendente
func (c *HTTPClient) WaitReceipt(ctx context.Context, hash TxHash) (*Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var receipt Receipt
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&receipt).
			Get("/api/ledger/transactions/" + string(hash))
		if err != nil {
			return nil, fmt.Errorf("fetching receipt for %s: %w", hash, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetching receipt for %s: ledger returned status %d", hash, resp.StatusCode())
		}
		if receipt.Status != ReceiptStatusPending {
			return &receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// ErrEmptyResult indica que o ledger devolveu um resultado vazio
var ErrEmptyResult = errors.New("ledger returned empty result")

// Owner lê o endereço do dono do contrato
func Owner(ctx context.Context, c Client) (string, error) {
	raw, err := c.Call(ctx, "owner")
	if err != nil {
		return "", err
	}
	return DecodeAddress(raw)
}

// ProductCount lê o total de produtos cadastrados (ids densos 1..count)
func ProductCount(ctx context.Context, c Client) (uint64, error) {
	raw, err := c.Call(ctx, "productCount")
	if err != nil {
		return 0, err
	}
	return DecodeUint(raw)
}

// OrderCount lê o total de pedidos registrados (ids densos 1..count)
func OrderCount(ctx context.Context, c Client) (uint64, error) {
	raw, err := c.Call(ctx, "orderCount")
	if err != nil {
		return 0, err
	}
	return DecodeUint(raw)
}

// GetProduct lê um produto pelo id
func GetProduct(ctx context.Context, c Client, id uint64) (*Product, error) {
	raw, err := c.Call(ctx, "getProduct", id)
	if err != nil {
		return nil, err
	}
	return DecodeProduct(raw)
}

// GetOrder lê um pedido pelo id
func GetOrder(ctx context.Context, c Client, id uint64) (*Order, error) {
	raw, err := c.Call(ctx, "getOrder", id)
	if err != nil {
		return nil, err
	}
	return DecodeOrder(raw)
}

// GetUserOrders lê os pedidos pertencentes a um endereço
func GetUserOrders(ctx context.Context, c Client, address string) ([]Order, error) {
	raw, err := c.Call(ctx, "getUserOrders", address)
	if err != nil {
		return nil, err
	}
	return DecodeOrderList(raw)
}

// ContractBalance lê o saldo acumulado no contrato, em wei
func ContractBalance(ctx context.Context, c Client) (*big.Int, error) {
	raw, err := c.Call(ctx, "getContractBalance")
	if err != nil {
		return nil, err
	}
	return DecodeWei(raw)
}
