package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docuvault/internal/config"
)

func TestSMTPSender_DisabledIsNoop(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{Enabled: false})
	assert.NoError(t, s.SendVerificationCode("user@example.com", "Pat", "123456"))
}

func TestSMTPSender_EnabledRequiresConfig(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{Enabled: true})
	err := s.SendVerificationCode("user@example.com", "Pat", "123456")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "smtp not configured")
}
