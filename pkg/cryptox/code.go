package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// OneTimeCode returns a fresh 6-digit numeric code for password-reset and
// verification flows. Each call draws a new random HOTP secret, so codes are
// single-use by construction; the issued token embeds the code as a claim.
func OneTimeCode() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate code secret: %w", err)
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)

	code, err := hotp.GenerateCodeCustom(secret, 0, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	return code, nil
}
