package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
)

func marshalMap(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "content-abc"})
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, float64(EnvelopeVersion), out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"id": "content-abc"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformer_NilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "data")
}

func TestEnvelopeTransformer_CodedError(t *testing.T) {
	apiErr := fromDomain(domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"link": "must be an https link",
	}), nil)

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	out := marshalMap(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "VALIDATION", out["code"])
	assert.Equal(t, "validation failed", out["message"])
	assert.Equal(t, "validation failed", out["error"])
	assert.Equal(t, map[string]any{"link": "must be an https link"}, out["details"])
}

func TestEnvelopeTransformer_PlainErrors(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "500", errors.New("boom"))
	require.NoError(t, err)
	out := marshalMap(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "boom", out["error"])
	assert.NotContains(t, out, "code")

	result, err = EnvelopeTransformer(nil, "400", &APIError{status: http.StatusBadRequest, Message: "bad"})
	require.NoError(t, err)
	out = marshalMap(t, result)
	assert.Equal(t, "bad", out["error"])
	assert.NotContains(t, out, "code")
}

func TestEnvelopeTransformer_AlreadyWrapped(t *testing.T) {
	in := APIEnvelope{Version: EnvelopeVersion, Success: true, Data: "x"}
	result, err := EnvelopeTransformer(nil, "200", in)
	require.NoError(t, err)
	assert.Equal(t, in, result)
}

func TestFromDomain_Overrides(t *testing.T) {
	err := domainerrors.NotFound("link is invalid")

	assert.Equal(t, http.StatusNotFound, fromDomain(err, nil).GetStatus())
	assert.Equal(t, http.StatusForbidden, fromDomain(err, resolveShareStatus).GetStatus())
	assert.Equal(t, http.StatusNotFound, fromDomain(err, signupStatus).GetStatus(), "unrelated codes keep their default")
}

func TestStatusToCode(t *testing.T) {
	tests := []struct {
		status int
		want   domainerrors.Code
	}{
		{http.StatusBadRequest, domainerrors.CodeValidation},
		{http.StatusLengthRequired, domainerrors.CodeValidation},
		{http.StatusUnauthorized, domainerrors.CodeUnauthorized},
		{http.StatusForbidden, domainerrors.CodeForbidden},
		{http.StatusNotFound, domainerrors.CodeNotFound},
		{http.StatusConflict, domainerrors.CodeAlreadyExists},
		{http.StatusTooManyRequests, domainerrors.CodeRateLimited},
		{http.StatusBadGateway, domainerrors.CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), statusToCode(tt.status), "status %d", tt.status)
	}
}
