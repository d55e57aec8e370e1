package syncing

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
	"github.com/vfg2006/sales-manager-api/pkg/validation"
)

// Kind é o conjunto fechado de falhas reportadas pelos serviços de sincronização
type Kind int

const (
	KindAuthenticationRequired Kind = iota + 1
	KindNotFound
	KindValidation
	KindTransport
)

var (
	ErrAuthenticationRequired = errors.New("usuário não autenticado")
	ErrNotFound               = errors.New("registro não encontrado")
	ErrValidation             = errors.New("dados inválidos")
	ErrTransport              = errors.New("falha de comunicação com o banco de dados")

	// ErrStreamClosed indica o fim normal de um Stream cancelado
	ErrStreamClosed = errors.New("stream encerrado")
)

// Operações, usadas nas mensagens
const (
	opAdd        = "adicionar"
	opUpdate     = "atualizar"
	opDelete     = "remover"
	opList       = "listar"
	opGet        = "buscar"
	opSubscribe  = "assinar"
	opInitialize = "inicializar"
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindAuthenticationRequired:
		return ErrAuthenticationRequired
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	default:
		return ErrTransport
	}
}

func (k Kind) code() string {
	switch k {
	case KindAuthenticationRequired:
		return apiErrors.ErrAuthRequired
	case KindNotFound:
		return apiErrors.ErrDocumentNotFound
	case KindValidation:
		return apiErrors.ErrValidation
	default:
		return apiErrors.ErrSubscription
	}
}

// SyncError é o erro entregue pelos serviços: escritas rejeitadas e falhas de
// assinatura
type SyncError struct {
	Kind    Kind   // Tipo da falha
	Code    string // Código de erro para API
	Entity  string // Rótulo da entidade (cliente, companhia aérea, venda)
	Op      string // Operação que falhou
	Details any    // Campos inválidos, quando houver
	Err     error  // Erro de origem
}

// Error retorna a mensagem legível exibida ao usuário
func (e *SyncError) Error() string {
	msg := fmt.Sprintf("erro ao %s %s: %s", e.Op, e.Entity, e.Kind.sentinel().Error())
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is permite errors.Is(err, syncing.ErrNotFound) e afins
func (e *SyncError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newError(kind Kind, entity, op string, err error) *SyncError {
	return &SyncError{
		Kind:   kind,
		Code:   kind.code(),
		Entity: entity,
		Op:     op,
		Err:    err,
	}
}

func authenticationRequired(entity, op string) *SyncError {
	return newError(KindAuthenticationRequired, entity, op, nil)
}

func validationFailed(entity, op string, err error) *SyncError {
	e := newError(KindValidation, entity, op, err)
	if fields := validation.Fields(err); len(fields) > 0 {
		e.Details = fields
	}
	return e
}

// classify converte erros do docstore para o tipo correspondente
func classify(entity, op string, err error) error {
	if err == nil {
		return nil
	}

	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}

	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return newError(KindNotFound, entity, op, nil)
	case errors.Is(err, docstore.ErrInvalidPath):
		return newError(KindValidation, entity, op, err)
	default:
		return newError(KindTransport, entity, op, err)
	}
}

// KindOf retorna o tipo do erro, ou zero quando não é um SyncError
func KindOf(err error) Kind {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Kind
	}
	return 0
}
