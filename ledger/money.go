package ledger

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// etherDecimals é a escala do ponto fixo usado pelo ledger (wei)
const etherDecimals = 18

// FormatUnits converte um valor em wei para a string decimal em ether.
// Nenhuma aritmética monetária acontece em ponto flutuante.
func FormatUnits(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}

// FormatUnitsFixed converte wei para ether com exatamente 4 casas decimais,
// o arredondamento usado em toda a camada de exibição.
func FormatUnitsFixed(wei *big.Int) string {
	if wei == nil {
		return "0.0000"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).StringFixed(4)
}

// ParseUnits converte uma string decimal em ether para o inteiro em wei
func ParseUnits(ether string) (*big.Int, error) {
	d, err := decimal.NewFromString(ether)
	if err != nil {
		return nil, fmt.Errorf("invalid ether amount %q: %w", ether, err)
	}
	scaled := d.Shift(etherDecimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", ether, etherDecimals)
	}
	if scaled.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", ether)
	}
	return scaled.BigInt(), nil
}
