package errors

import (
	"net/http"
	"testing"

	"pgregory.net/rapid"
)

var sentinelErrors = []*APIError{
	ErrInvalidCredentialsError,
	ErrTokenExpiredError,
	ErrForbiddenError,
	ErrTradeNotFoundError,
	ErrOfferNotFoundError,
	ErrUserNotFoundError,
	ErrEvaluationNotFoundError,
	ErrProductNotFoundError,
	ErrInternalServerError,
}

func TestSentinelErrors_CodeMatchesStatus(t *testing.T) {
	for _, e := range sentinelErrors {
		if e.Code == "" || e.Message == "" || e.HTTPStatus == 0 {
			t.Errorf("Sentinel %q is missing code, message or status", e.Code)
		}

		// Codes are the HTTP status followed by a two-digit suffix
		wantPrefix := byte('0' + e.HTTPStatus/100)
		if e.Code[0] != wantPrefix {
			t.Errorf("Code %q does not match HTTP status %d", e.Code, e.HTTPStatus)
		}
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err        *APIError
		wantCode   ErrorCode
		wantStatus int
	}{
		{NewValidationError("bad field"), ErrValidationFailed, http.StatusBadRequest},
		{NewInvalidRequestError("bad request"), ErrInvalidRequest, http.StatusBadRequest},
		{NewInvalidOperationError("wrong state"), ErrInvalidOperation, http.StatusBadRequest},
		{NewConflictError("duplicate"), ErrConflict, http.StatusConflict},
		{NewForbiddenError("not yours"), ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		if tt.err.Code != tt.wantCode {
			t.Errorf("Expected code %q, got %q", tt.wantCode, tt.err.Code)
		}
		if tt.err.HTTPStatus != tt.wantStatus {
			t.Errorf("Expected status %d for %q, got %d", tt.wantStatus, tt.err.Code, tt.err.HTTPStatus)
		}
		if tt.err.Error() != tt.err.Message {
			t.Errorf("Error() should return the message")
		}
	}
}

// TestProperty_ErrorResponse_StandardFormat tests that every error response
// carries a code, a message and the request ID it was built with.
func TestProperty_ErrorResponse_StandardFormat(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		idx := rapid.IntRange(0, len(sentinelErrors)-1).Draw(rt, "idx")
		requestID := rapid.StringMatching(`[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`).Draw(rt, "requestID")

		response := NewErrorResponse(sentinelErrors[idx], requestID)

		if response.Error.Code == "" {
			t.Fatal("PROPERTY VIOLATION: Error response must have error code")
		}
		if response.Error.Message == "" {
			t.Fatal("PROPERTY VIOLATION: Error response must have message")
		}
		if response.RequestID != requestID {
			t.Fatalf("PROPERTY VIOLATION: request_id %q does not round-trip", requestID)
		}
	})
}
