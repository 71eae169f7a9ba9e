package shipper_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

func TestShipperError_Error(t *testing.T) {
	err := shipper.NewShipperError("ups", "120100", "Missing shipper number")
	assert.Equal(t, "ups error (120100): Missing shipper number", err.Error())
}

func TestShipperError_ErrorWithCause(t *testing.T) {
	cause := errors.New("network timeout")
	err := shipper.NewShipperError("ups", "http_request_failed", "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "network timeout")
}

func TestShipperError_ErrorJoinsEntries(t *testing.T) {
	err := shipper.NewShipperError("ups", "error", "unknown").WithEntries([]shipper.ErrorEntry{
		{Code: "120100", Message: "Missing shipper number"},
		{Code: "120802", Message: "Bad address"},
	})
	assert.Equal(t, "ups error (120100): Missing shipper number; Bad address", err.Error())
}

func TestShipperError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := shipper.NewShipperError("ups", "API_ERROR", "API call failed").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestShipperError_Is(t *testing.T) {
	err1 := shipper.NewShipperError("ups", "INVALID_ADDRESS", "Invalid postal code")
	err2 := shipper.NewShipperError("mock", "INVALID_ADDRESS", "Different message")

	// Same code should match
	assert.True(t, errors.Is(err1, err2))
}

func TestShipperError_IsNot(t *testing.T) {
	err1 := shipper.NewShipperError("ups", "INVALID_ADDRESS", "Invalid postal code")
	err2 := shipper.NewShipperError("ups", "DIFFERENT_CODE", "Different error")

	// Different codes should not match
	assert.False(t, errors.Is(err1, err2))
}

func TestShipperError_KindSentinels(t *testing.T) {
	auth := shipper.NewAuthError("ups", "rejected")
	conn := shipper.NewConnectivityError("ups", "unreachable")
	artifact := shipper.NewArtifactError("ups", "pdf failed")
	carrier := shipper.NewShipperError("ups", "120100", "bad")

	assert.ErrorIs(t, auth, shipper.ErrAuthenticationFailed)
	assert.ErrorIs(t, conn, shipper.ErrServiceUnavailable)
	assert.ErrorIs(t, artifact, shipper.ErrLabelNotAvailable)

	for _, err := range []error{auth, conn, carrier} {
		assert.NotErrorIs(t, err, shipper.ErrLabelNotAvailable)
	}
	assert.NotErrorIs(t, carrier, shipper.ErrAuthenticationFailed)
	assert.NotErrorIs(t, carrier, shipper.ErrServiceUnavailable)

	throttled := shipper.NewShipperError("ups", "429", "Too many requests").WithStatusCode(429)
	assert.ErrorIs(t, throttled, shipper.ErrRateLimitExceeded)
	assert.NotErrorIs(t, carrier.WithStatusCode(400), shipper.ErrRateLimitExceeded)

	assert.Equal(t, shipper.KindCarrier, carrier.Kind)
	assert.Equal(t, "auth", auth.Code)
	assert.Equal(t, "upload", artifact.Code)
}

func TestShipperError_WithStatusCode(t *testing.T) {
	err := shipper.NewShipperError("ups", "AUTH_ERROR", "Unauthorized").WithStatusCode(401)
	assert.Equal(t, 401, err.StatusCode)
}

func TestShipperError_WithEntries(t *testing.T) {
	err := shipper.NewShipperError("ups", "error", "fallback")

	err.WithEntries(nil)
	assert.Equal(t, []string{"fallback"}, err.Messages())
	assert.Equal(t, "error", err.Code)

	err.WithEntries([]shipper.ErrorEntry{{Code: "9370701", Message: "Invalid tracking number"}})
	assert.Equal(t, "9370701", err.Code)
	assert.Equal(t, "Invalid tracking number", err.Message)
	assert.Equal(t, []string{"Invalid tracking number"}, err.Messages())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable shipper error", shipper.NewShipperError("ups", "RATE_LIMIT", "Too many requests").WithRetryable(true), true},
		{"non retryable shipper error", shipper.NewShipperError("ups", "INVALID_ADDRESS", "Bad address"), false},
		{"connectivity", shipper.NewConnectivityError("ups", "timeout"), true},
		{"wrapped connectivity", fmt.Errorf("booking: %w", shipper.NewConnectivityError("ups", "timeout")), true},
		{"auth", shipper.NewAuthError("ups", "rejected"), false},
		{"service unavailable", shipper.ErrServiceUnavailable, true},
		{"rate limit", shipper.ErrRateLimitExceeded, true},
		{"throttled", shipper.NewShipperError("ups", "429", "Too many requests").WithStatusCode(429).WithRetryable(true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shipper.IsRetryable(tt.err))
		})
	}
}

func TestIsArtifactError(t *testing.T) {
	assert.True(t, shipper.IsArtifactError(shipper.NewArtifactError("ups", "merge failed")))
	assert.True(t, shipper.IsArtifactError(fmt.Errorf("label: %w", shipper.NewArtifactError("ups", "merge failed"))))
	assert.False(t, shipper.IsArtifactError(shipper.NewShipperError("ups", "upload", "carrier")))
	assert.False(t, shipper.IsArtifactError(errors.New("plain")))
	assert.False(t, shipper.IsArtifactError(nil))
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrServiceUnavailable", shipper.ErrServiceUnavailable, "service unavailable"},
		{"ErrLabelNotAvailable", shipper.ErrLabelNotAvailable, "label not available"},
		{"ErrAuthenticationFailed", shipper.ErrAuthenticationFailed, "authentication failed"},
		{"ErrRateLimitExceeded", shipper.ErrRateLimitExceeded, "rate limit exceeded"},
		{"ErrCarrierNotFound", shipper.ErrCarrierNotFound, "carrier not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}
