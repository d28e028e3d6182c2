package api

import (
	"errors"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookly/bookly-server/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope.
const EnvelopeVersion = response.Version

// APIEnvelope wraps successful responses and uncoded errors.
type APIEnvelope = response.Envelope

// APIErrorEnvelope wraps errors that carry a machine-readable code.
type APIErrorEnvelope = response.ErrorEnvelope

// EnvelopeTransformer wraps every huma response body in the envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	var apiErr *APIError
	if err, ok := v.(error); ok && errors.As(err, &apiErr) && apiErr.Code != "" {
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if err, ok := v.(error); ok {
		return APIEnvelope{Version: EnvelopeVersion, Success: false, Error: err.Error()}, nil
	}

	code, _ := strconv.Atoi(status)
	return APIEnvelope{Version: EnvelopeVersion, Success: code < 400, Data: v}, nil
}
