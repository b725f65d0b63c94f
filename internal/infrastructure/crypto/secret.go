package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/multidom/domainsync/pkg/errors"
)

// minSecretLength is the minimum accepted length for an externally
// configured secret.
const minSecretLength = 32

// SecretProvider resolves the token signing key. Precedence:
//  1. the configured override, if at least 32 bytes;
//  2. a secret read from (or generated into) a stable local file.
//
// The base secret is never used directly: the signing key is derived via
// HMAC of the session cookie name under the base, binding tokens to the
// deployment's cookie identity. The result is memoized for the process
// lifetime; rotating the secret requires a restart.
type SecretProvider struct {
	override   string
	file       string
	cookieName string

	once   sync.Once
	secret []byte
	err    error
}

// NewSecretProvider creates a provider. cookieName must match across all
// domains of the installation.
func NewSecretProvider(override, file, cookieName string) *SecretProvider {
	return &SecretProvider{
		override:   override,
		file:       file,
		cookieName: cookieName,
	}
}

// Resolve returns the derived signing key, computing it on first use.
func (p *SecretProvider) Resolve() ([]byte, error) {
	p.once.Do(func() {
		p.secret, p.err = p.resolve()
	})
	return p.secret, p.err
}

func (p *SecretProvider) resolve() ([]byte, error) {
	base := p.override
	if len(base) < minSecretLength {
		fileSecret, err := p.fileSecret()
		if err != nil {
			return nil, err
		}
		base = fileSecret
	}

	mac := hmac.New(sha256.New, []byte(base))
	mac.Write([]byte(p.cookieName))
	return mac.Sum(nil), nil
}

// fileSecret reads the persisted secret, generating one with an exclusive
// create if the file does not exist. Two processes racing the first create
// settle on whichever write lands; tokens only cross domains after one
// process has settled, so a lost login attempt simply retries.
func (p *SecretProvider) fileSecret() (string, error) {
	if raw, err := os.ReadFile(p.file); err == nil {
		return strings.TrimSpace(string(raw)), nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", apperrors.Wrap(err, "failed to read secret file")
	}

	if err := os.MkdirAll(filepath.Dir(p.file), 0o775); err != nil {
		return "", apperrors.Wrap(err, "failed to create secret dir")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Wrap(err, "failed to generate secret")
	}
	generated := hex.EncodeToString(buf)

	f, err := os.OpenFile(p.file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Lost the create race; use the winner's secret.
			raw, readErr := os.ReadFile(p.file)
			if readErr != nil {
				return "", apperrors.Wrap(readErr, "failed to read secret file")
			}
			return strings.TrimSpace(string(raw)), nil
		}
		return "", apperrors.Wrap(err, "failed to create secret file")
	}
	defer f.Close()

	if _, err := f.WriteString(generated); err != nil {
		return "", apperrors.Wrap(err, "failed to write secret file")
	}

	return generated, nil
}
