package messaging

import (
	"strings"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

func validateLen(field, value string, min, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < min || len(trimmed) > max {
		return "", chatcore.Invalid("%s must be between %d and %d characters", field, min, max)
	}
	return trimmed, nil
}

func validateSender(sender string) (string, error) {
	return validateLen("sender", sender, 1, 100)
}

func validateContent(content string) (string, error) {
	return validateLen("content", content, 1, 10000)
}
