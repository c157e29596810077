package service

import (
	"errors"
	"fmt"

	"autopecas/internal/documento"
	"autopecas/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNaoEncontrado: the referenced receipt, line, product or supplier does not exist.
	ErrNaoEncontrado = errors.New("registro não encontrado")
	// ErrValidacao: missing required data or a blocked state transition.
	ErrValidacao = errors.New("operação inválida")
	// ErrImportacaoDuplicada: the document identifier belongs to a live receipt.
	ErrImportacaoDuplicada = errors.New("documento já importado")
	// ErrDocumentoInvalido: the parser could not extract a usable document.
	ErrDocumentoInvalido = errors.New("documento inválido")
)

// mensagemError carries a user-facing message and matches its base sentinel
// through errors.Is.
type mensagemError struct {
	base error
	msg  string
}

func (e *mensagemError) Error() string { return e.msg }
func (e *mensagemError) Unwrap() error { return e.base }

func erroValidacao(format string, args ...any) error {
	return &mensagemError{base: ErrValidacao, msg: fmt.Sprintf(format, args...)}
}

func erroNaoEncontrado(format string, args ...any) error {
	return &mensagemError{base: ErrNaoEncontrado, msg: fmt.Sprintf(format, args...)}
}

// ImportacaoDuplicadaError names the receipt that already owns the identifier.
type ImportacaoDuplicadaError struct {
	NotaID        uuid.UUID
	Status        model.StatusNota
	Identificador string
}

func (e *ImportacaoDuplicadaError) Error() string {
	return fmt.Sprintf("documento %s já importado na nota %s (status %s)", e.Identificador, e.NotaID, e.Status)
}

func (e *ImportacaoDuplicadaError) Is(target error) bool { return target == ErrImportacaoDuplicada }

// DocumentoInvalidoError carries the parser output so the caller can show
// every error and warning.
type DocumentoInvalidoError struct {
	Resultado *documento.Resultado
}

func (e *DocumentoInvalidoError) Error() string {
	if e.Resultado != nil && len(e.Resultado.Erros) > 0 {
		return "documento inválido: " + e.Resultado.Erros[0]
	}
	return ErrDocumentoInvalido.Error()
}

func (e *DocumentoInvalidoError) Is(target error) bool { return target == ErrDocumentoInvalido }
