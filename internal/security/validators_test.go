package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manv6/trumps-dashboard/internal/models"
	"github.com/manv6/trumps-dashboard/internal/security"
)

func TestIsValidMessageType(t *testing.T) {
	assert.True(t, security.IsValidMessageType(models.MsgTypeJoinGame))
	assert.True(t, security.IsValidMessageType(models.MsgTypeGameAction))
	assert.False(t, security.IsValidMessageType("shutdown"))
	assert.False(t, security.IsValidMessageType(""))
	// Server-to-client types are not accepted inbound.
	assert.False(t, security.IsValidMessageType(models.MsgTypeGameState))
}

func TestValidateSessionCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"uppercase hex", "A1B2C3D4", false},
		{"all letters", "ABCDEFGH", false},
		{"all digits", "12345678", false},
		{"empty", "", true},
		{"too short", "ABC123", true},
		{"too long", "ABC123456", true},
		{"lowercase", "a1b2c3d4", true},
		{"punctuation", "ABC-1234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := security.ValidateSessionCode(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateParticipantName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "Alice", "Alice", false},
		{"trims whitespace", "  Alice  ", "Alice", false},
		{"accented", "Андрій", "Андрій", false},
		{"greek", "Παίκτης 2", "Παίκτης 2", false},
		{"apostrophe", "O'Brien", "O'Brien", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"too long", strings.Repeat("a", 51), "", true},
		{"angle brackets", "<script>", "", true},
		{"shell metacharacters", "x; rm -rf", "", true},
		{"control characters", "Ali\x00ce", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := security.ValidateParticipantName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
