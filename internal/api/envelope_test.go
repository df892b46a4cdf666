package api

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalMap(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "b1"})
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, map[string]any{
		"v":       float64(1),
		"success": true,
		"data":    map[string]any{"id": "b1"},
	}, out)
}

func TestEnvelopeTransformer_NilDataKeepsField(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Contains(t, out, "data")
	assert.Nil(t, out["data"])
	assert.Equal(t, true, out["success"])
}

func TestEnvelopeTransformer_APIError(t *testing.T) {
	apiErr := &APIError{status: 400, Code: "REVIEW_EXISTS", Message: "you have already reviewed this book", Details: map[string]string{"review_id": "r1"}}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "REVIEW_EXISTS", out["code"])
	assert.Equal(t, "you have already reviewed this book", out["error"])
	assert.Equal(t, map[string]any{"review_id": "r1"}, out["details"])
}

func TestEnvelopeTransformer_PlainError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", errors.New("gone"))
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, "NOT_FOUND", out["code"])
	assert.Equal(t, "gone", out["error"])
	assert.NotContains(t, out, "details")
}

func TestEnvelopeTransformer_PassesEnvelopeThrough(t *testing.T) {
	in := APIEnvelope{Version: EnvelopeVersion, Success: true, Data: "x"}
	result, err := EnvelopeTransformer(nil, "200", in)
	require.NoError(t, err)
	assert.Equal(t, in, result)
}
