package coordinator

import "fmt"

// ErrorKind classifica as falhas do caminho de escrita
type ErrorKind string

const (
	// ErrorKindUserRejected: o signatário recusou durante submitting.
	// Nada chegou ao ledger; mensagem informativa, sem retry.
	ErrorKindUserRejected ErrorKind = "user_rejected"

	// ErrorKindSubmission: argumentos malformados ou falha de preflight
	// antes da transmissão
	ErrorKindSubmission ErrorKind = "submission_error"

	// ErrorKindConfirmation: a transmissão funcionou mas a execução
	// reverteu no ledger
	ErrorKindConfirmation ErrorKind = "confirmation_failure"
)

// TxError é a falha terminal de uma intenção, com a razão do ledger
// quando disponível. Nenhuma falha é repetida automaticamente pelo
// core: retry é uma ressubmissão iniciada pelo usuário.
type TxError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *TxError) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *TxError) Unwrap() error {
	return e.Err
}
