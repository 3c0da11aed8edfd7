package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator().
		ValidateRequired("", "BOT_TOKEN").
		ValidatePositive(0, "MAX_CONCURRENT_DOWNLOADS").
		ValidateNonNegative(3, "RETRIES_REQUEST").
		ValidatePositiveDuration(-time.Second, "UPLOAD_READ_TIMEOUT").
		ValidateOneOf("xml", "LOG_FORMAT", []string{"text", "json"})

	require.True(t, v.HasErrors())
	assert.Equal(t, []string{"BOT_TOKEN", "MAX_CONCURRENT_DOWNLOADS", "UPLOAD_READ_TIMEOUT", "LOG_FORMAT"}, v.Fields())
	assert.ErrorContains(t, v.Err(), "BOT_TOKEN is required")
	assert.ErrorContains(t, v.Err(), "LOG_FORMAT must be one of: text, json")
}

func TestValidatorNoErrors(t *testing.T) {
	v := NewValidator().
		ValidateRequired("x", "A").
		ValidateOneOf("", "B", []string{"c"}).
		ValidateConditional(false, func(v *Validator) *Validator {
			return v.ValidateRequired("", "C")
		})

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Err())
	assert.Empty(t, v.Fields())
}

func TestValidateBotToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		valid bool
	}{
		{"Valid token", "123456789:ABCdef_GHI-jkl", true},
		{"Missing token", "", false},
		{"No colon", "123456789ABCdef", false},
		{"Non-numeric id", "abc:def", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator().ValidateBotToken(tt.token)
			assert.Equal(t, !tt.valid, cv.HasErrors())
		})
	}
}

func TestValidateLogSettings(t *testing.T) {
	assert.False(t, NewConfigValidator().ValidateLogLevel("DEBUG").ValidateLogFormat("json").HasErrors())
	assert.True(t, NewConfigValidator().ValidateLogLevel("verbose").HasErrors())
}
