package docstore

import (
	"sort"
	"strings"
	"time"
)

// SortDocuments ordena em memória pelo campo da consulta. Documentos sem o
// campo vão para o fim; empates mantêm a ordem de inserção.
func SortDocuments(docs []Document, q Query) {
	if q.OrderBy == "" {
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, aok := docs[i].Fields[q.OrderBy]
		b, bok := docs[j].Fields[q.OrderBy]
		if !aok || !bok {
			return aok && !bok
		}

		c := compare(a, b)
		if q.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
