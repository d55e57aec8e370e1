package postgres

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-manager-api/infrastructure/docstore"
)

func TestCodec_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 10, 12, 30, 0, 123456000, time.UTC)
	fields := map[string]any{
		"name":       "Ana",
		"value":      1500.5,
		"date":       ts,
		"customerId": docstore.Ref{Path: "owners/u1/customers/c1"},
		"nested":     map[string]any{"at": ts},
	}

	data, err := encodeFields(fields)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"__ref":"owners/u1/customers/c1"`)
	assert.Contains(t, string(data), `"__ts":"2024-03-10T12:30:00.123456Z"`)

	decoded, err := decodeFields(data)
	require.NoError(t, err)
	if diff := cmp.Diff(fields, decoded); diff != "" {
		t.Errorf("campos divergentes (-esperado +obtido):\n%s", diff)
	}
}

func TestCodec_PlainObjectsSurvive(t *testing.T) {
	decoded, err := decodeFields([]byte(`{"meta":{"__ts":"x","other":1},"empty":{}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"__ts": "x", "other": float64(1)}, decoded["meta"])
	assert.Equal(t, map[string]any{}, decoded["empty"])
}

func TestResolveTimestamps(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := resolveTimestamps(map[string]any{
		"createdAt": docstore.ServerTimestamp,
		"name":      "Ana",
		"audit":     map[string]any{"updatedAt": docstore.ServerTimestamp},
	}, now)

	assert.Equal(t, now, out["createdAt"])
	assert.Equal(t, "Ana", out["name"])
	assert.Equal(t, now, out["audit"].(map[string]any)["updatedAt"])
}

func TestDecodeFields_Empty(t *testing.T) {
	fields, err := decodeFields(nil)
	require.NoError(t, err)
	assert.Empty(t, fields)
}
