package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the wire version of the response envelope.
const EnvelopeVersion = 1

// APIEnvelope wraps every successful response and plain failures.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope is the failure envelope for coded errors.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies.
// Coded errors keep their code and details; any other error becomes a plain
// failure envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case APIEnvelope, *APIEnvelope, APIErrorEnvelope, *APIErrorEnvelope:
		return v, nil
	case *APIError:
		if body.Code == "" {
			return APIEnvelope{Version: EnvelopeVersion, Error: body.Message}, nil
		}
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Error:   body.Message,
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Error: body.Error()}, nil
	}

	if code, err := strconv.Atoi(status); err == nil && code >= 400 {
		return APIEnvelope{Version: EnvelopeVersion, Data: v, Error: "request failed"}, nil
	}

	return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}
