package docstore

import (
	"strings"

	"github.com/pkg/errors"
)

// CollectionPath monta caminhos no formato colecao/doc/colecao. O número de
// segmentos precisa ser ímpar.
func CollectionPath(segments ...string) (string, error) {
	if len(segments)%2 == 0 {
		return "", errors.Wrapf(ErrInvalidPath, "coleção com %d segmentos", len(segments))
	}
	return join(segments)
}

// DocumentPath monta caminhos no formato colecao/doc. O número de segmentos
// precisa ser par.
func DocumentPath(segments ...string) (string, error) {
	if len(segments) == 0 || len(segments)%2 != 0 {
		return "", errors.Wrapf(ErrInvalidPath, "documento com %d segmentos", len(segments))
	}
	return join(segments)
}

// ParentCollection retorna o caminho da coleção e o ID de um documento
func ParentCollection(docPath string) (string, string) {
	return splitLast(docPath)
}

func join(segments []string) (string, error) {
	for _, s := range segments {
		if s == "" || strings.Contains(s, "/") {
			return "", errors.Wrapf(ErrInvalidPath, "segmento %q", s)
		}
	}
	return strings.Join(segments, "/"), nil
}

func splitLast(path string) (string, string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
