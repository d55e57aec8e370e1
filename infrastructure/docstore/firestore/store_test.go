package firestore

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "owners/u1/customers/c1",
		relativePath("projects/p/databases/(default)/documents/owners/u1/customers/c1"))
	assert.Equal(t, "owners/u1", relativePath("owners/u1"))
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil, "x"))
	assert.True(t, errors.Is(translateError(status.Error(codes.NotFound, "no"), "x"), docstore.ErrNotFound))
	assert.True(t, errors.Is(translateError(status.Error(codes.PermissionDenied, "no"), "x"), docstore.ErrPermissionDenied))

	err := translateError(status.Error(codes.Unavailable, "down"), "x")
	assert.False(t, errors.Is(err, docstore.ErrNotFound))
	assert.Contains(t, err.Error(), "Firestore")
}

func TestFromFirestoreValueNested(t *testing.T) {
	v := fromFirestoreValue(map[string]any{"a": []any{int64(1), "b"}})
	assert.Equal(t, map[string]any{"a": []any{int64(1), "b"}}, v)
}
