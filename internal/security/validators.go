package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/manv6/trumps-dashboard/internal/models"
)

// Input length constraints
const (
	MaxParticipantNameLength = 50
	MinNameLength            = 1
)

var (
	// Session codes are the first 8 hex characters of a UUID, uppercased.
	sessionCodeRegex = regexp.MustCompile(`^[A-Z0-9]{8}$`)
	// Name validation regex - Unicode letters, digits, spaces, apostrophes,
	// hyphens, underscores, dots. \p{L} covers accented and Greek names.
	nameRegex = regexp.MustCompile(`^[\p{L}\p{N}\s'\-_.]+$`)
	// Dangerous characters that could be used for injection attacks
	dangerousCharsRegex = regexp.MustCompile(`[<>{}[\]\\;|&$()` + "`" + `]`)
)

var validMessageTypes = map[string]bool{
	models.MsgTypeJoinGame:   true,
	models.MsgTypeGameAction: true,
}

// IsValidMessageType checks if a WebSocket message type is valid.
func IsValidMessageType(msgType string) bool {
	return validMessageTypes[msgType]
}

// ValidateSessionCode validates the shape of a session join code.
func ValidateSessionCode(code string) error {
	if code == "" {
		return fmt.Errorf("session code cannot be empty")
	}
	if !sessionCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid session code format")
	}
	return nil
}

// ValidateParticipantName validates a display name with length and
// character constraints. Returns the sanitized name.
func ValidateParticipantName(name string) (string, error) {
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}
	if len(name) < MinNameLength {
		return "", fmt.Errorf("name too short (min %d characters)", MinNameLength)
	}
	if len(name) > MaxParticipantNameLength {
		return "", fmt.Errorf("name too long (max %d characters)", MaxParticipantNameLength)
	}
	if !nameRegex.MatchString(name) {
		return "", fmt.Errorf("name contains invalid characters (allowed: letters, numbers, spaces, apostrophes, hyphens, underscores, dots)")
	}
	if dangerousCharsRegex.MatchString(name) {
		return "", fmt.Errorf("name contains potentially dangerous characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return "", fmt.Errorf("name contains control characters")
		}
	}

	return name, nil
}
