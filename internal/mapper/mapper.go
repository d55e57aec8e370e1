// Package mapper converte documentos do banco em registros de domínio e
// registros de domínio em payloads de escrita.
//
// A leitura é total: campos ausentes ou ilegíveis recebem valores padrão em
// vez de erro. Referências de vendas são aceitas tanto como ID simples quanto
// como docstore.Ref.
package mapper

import (
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/pkg/utils"
)

// UnnamedPlaceholder substitui nomes ausentes
const UnnamedPlaceholder = "(sem nome)"

type ReferenceMode string

const (
	// ReferenceRef grava clientes e companhias como docstore.Ref
	ReferenceRef ReferenceMode = "ref"
	// ReferenceID grava o ID simples, formato das primeiras versões do schema
	ReferenceID ReferenceMode = "id"
)

type Mapper struct {
	clock   func() time.Time
	refMode ReferenceMode
}

type Option func(*Mapper)

func WithClock(clock func() time.Time) Option {
	return func(m *Mapper) {
		m.clock = clock
	}
}

func WithReferenceMode(mode ReferenceMode) Option {
	return func(m *Mapper) {
		if mode == ReferenceID || mode == ReferenceRef {
			m.refMode = mode
		}
	}
}

func New(opts ...Option) *Mapper {
	m := &Mapper{
		clock:   time.Now,
		refMode: ReferenceRef,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mapper) ReferenceMode() ReferenceMode {
	return m.refMode
}

// decode preenche out com os campos do documento. Erros de tipo são apenas
// registrados: os campos válidos continuam sendo decodificados.
func decode(doc docstore.Document, out any) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToTimeHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar decoder de documentos")
		return
	}

	if err := decoder.Decode(doc.Fields); err != nil {
		logrus.WithError(err).WithField("path", doc.Path).Warn("Documento com campos inválidos, usando valores padrão")
	}
}

var timeType = reflect.TypeOf(time.Time{})

// stringToTimeHook aceita datas gravadas como texto por versões antigas.
// Texto ilegível vira o tempo zero, tratado depois como ausente.
func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}

	parsed, err := utils.ParseDate(data.(string))
	if err != nil || parsed == nil {
		return time.Time{}, nil
	}
	return *parsed, nil
}

// resolveID normaliza uma referência para o ID simples
func resolveID(v any) string {
	switch ref := v.(type) {
	case string:
		return ref
	case docstore.Ref:
		return ref.ID()
	case *docstore.Ref:
		if ref == nil {
			return ""
		}
		return ref.ID()
	default:
		return ""
	}
}

func (m *Mapper) orNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return m.clock()
	}
	return *t
}

func nonZero(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}

func orPlaceholder(name string) string {
	if name == "" {
		return UnnamedPlaceholder
	}
	return name
}

// timestamp converte para a precisão do banco; o valor zero vira o relógio
// do servidor
func timestamp(t time.Time) any {
	if t.IsZero() {
		return docstore.ServerTimestamp
	}
	return utils.TruncateToMicros(t.UTC())
}

// reference monta o valor gravado em customerId/airlineId conforme o modo
func (m *Mapper) reference(ownerID, collection, id string) (any, error) {
	if m.refMode == ReferenceID {
		return id, nil
	}

	path, err := docstore.DocumentPath(domain.OwnersCollection, ownerID, collection, id)
	if err != nil {
		return nil, err
	}
	return docstore.Ref{Path: path}, nil
}
