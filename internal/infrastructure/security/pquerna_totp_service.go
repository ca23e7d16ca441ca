package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// pquernaTOTPService implements service.TOTPService with the pquerna/otp
// library: 6 digits, SHA1, 30-second period, the authenticator-app defaults.
type pquernaTOTPService struct {
	defaultIssuerName string
	skew              uint // accepted clock drift in 30s periods on each side
	now               func() time.Time
}

// NewPquernaTOTPService creates the production TOTP engine. skew is the
// verification window in time steps (1 accepts the previous and next step).
func NewPquernaTOTPService(defaultIssuerName string, skew uint) *pquernaTOTPService {
	if strings.TrimSpace(defaultIssuerName) == "" {
		defaultIssuerName = "GamingPlatform"
	}
	return &pquernaTOTPService{
		defaultIssuerName: defaultIssuerName,
		skew:              skew,
		now:               time.Now,
	}
}

func (s *pquernaTOTPService) GenerateSecret(accountName string, issuerNameOverride string) (string, string, error) {
	issuer := s.defaultIssuerName
	if strings.TrimSpace(issuerNameOverride) != "" {
		issuer = issuerNameOverride
	}
	if strings.TrimSpace(accountName) == "" {
		return "", "", fmt.Errorf("accountName cannot be empty for TOTP secret generation")
	}
	// The otpauth URI uses ':' as the issuer/account separator.
	if strings.Contains(accountName, ":") || strings.Contains(issuer, ":") {
		return "", "", fmt.Errorf("accountName and issuer cannot contain a colon character")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		SecretSize:  20,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

func (s *pquernaTOTPService) GenerateCode(secretBase32 string) (string, error) {
	if strings.TrimSpace(secretBase32) == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}
	code, err := totp.GenerateCodeCustom(secretBase32, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      s.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP code: %w", err)
	}
	return code, nil
}

func (s *pquernaTOTPService) ValidateCode(secretBase32 string, code string) (bool, error) {
	if strings.TrimSpace(secretBase32) == "" {
		return false, fmt.Errorf("secret cannot be empty")
	}
	if strings.TrimSpace(code) == "" {
		return false, fmt.Errorf("code cannot be empty")
	}

	valid, err := totp.ValidateCustom(code, secretBase32, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      s.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		// A malformed secret or code is a validation failure, not a crash.
		return false, fmt.Errorf("error during TOTP code validation: %w", err)
	}
	return valid, nil
}
