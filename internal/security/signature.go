package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider  = errors.New("no webhook secret for provider")
	ErrInvalidSignature = errors.New("signature mismatch")
)

// SignatureService computes and checks the hex HMAC-SHA256 signatures the
// payment providers put on their webhooks. The construction is theirs, not
// ours: HMAC over the raw, unparsed body, hex-encoded, compared in constant
// time.
type SignatureService struct {
	secrets map[string][]byte
}

// NewSignatureService takes provider kind -> shared webhook secret. Providers
// with an empty secret are left out; verification for them fails closed.
func NewSignatureService(secrets map[string]string) *SignatureService {
	s := &SignatureService{secrets: make(map[string][]byte, len(secrets))}
	for provider, secret := range secrets {
		if secret != "" {
			s.secrets[provider] = []byte(secret)
		}
	}
	return s
}

// Sign returns the hex HMAC-SHA256 of payload under the provider's secret.
// Used by tests and by the back-office tooling that replays webhooks.
func (s *SignatureService) Sign(provider string, payload []byte) (string, error) {
	key, ok := s.secrets[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the expected signature over the raw payload bytes and
// compares constant-time. Any failure is ErrInvalidSignature or
// ErrUnknownProvider; no detail beyond that leaves this package.
func (s *SignatureService) Verify(provider string, payload []byte, signature string) error {
	expected, err := s.Sign(provider, payload)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
