package docstore

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionPath(t *testing.T) {
	path, err := CollectionPath("owners", "u1", "customers")
	require.NoError(t, err)
	assert.Equal(t, "owners/u1/customers", path)

	_, err = CollectionPath("owners", "u1")
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = CollectionPath("owners", "", "customers")
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = CollectionPath("owners", "a/b", "customers")
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestDocumentPath(t *testing.T) {
	path, err := DocumentPath("owners", "u1")
	require.NoError(t, err)
	assert.Equal(t, "owners/u1", path)

	_, err = DocumentPath()
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = DocumentPath("owners")
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestParentCollectionAndRefID(t *testing.T) {
	collection, id := ParentCollection("owners/u1/customers/c1")
	assert.Equal(t, "owners/u1/customers", collection)
	assert.Equal(t, "c1", id)

	assert.Equal(t, "c1", Ref{Path: "owners/u1/customers/c1"}.ID())
	assert.Equal(t, "c1", Ref{Path: "c1"}.ID())
}
