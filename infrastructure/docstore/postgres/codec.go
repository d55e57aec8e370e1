package postgres

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	timestampKey = "__ts"
	referenceKey = "__ref"

	// Largura fixa para que a ordenação textual coincida com a cronológica
	timestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// encodeFields converte timestamps e referências em objetos marcados antes
// de gravar no jsonb
func encodeFields(fields map[string]any) ([]byte, error) {
	data, err := json.Marshal(encodeValue(fields))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao codificar campos do documento")
	}
	return data, nil
}

func decodeFields(data []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if len(data) == 0 {
		return fields, nil
	}

	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar campos do documento")
	}

	decoded, _ := decodeValue(fields).(map[string]any)
	return decoded, nil
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return map[string]any{timestampKey: val.UTC().Format(timestampLayout)}
	case *time.Time:
		if val == nil {
			return nil
		}
		return encodeValue(*val)
	case docstore.Ref:
		return map[string]any{referenceKey: val.Path}
	case *docstore.Ref:
		if val == nil {
			return nil
		}
		return map[string]any{referenceKey: val.Path}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = encodeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

func decodeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			if ts, ok := val[timestampKey].(string); ok {
				if t, err := time.Parse(timestampLayout, ts); err == nil {
					return t
				}
			}
			if path, ok := val[referenceKey].(string); ok {
				return docstore.Ref{Path: path}
			}
		}

		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = decodeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = decodeValue(item)
		}
		return out
	default:
		return v
	}
}

// resolveTimestamps troca docstore.ServerTimestamp pelo relógio do banco
func resolveTimestamps(fields map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if docstore.IsServerTimestamp(v) {
			out[k] = now
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = resolveTimestamps(nested, now)
			continue
		}
		out[k] = v
	}
	return out
}
