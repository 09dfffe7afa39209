package auth

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type KeyProvider interface {
	// VerificationKey returns the key checking a token signed with method.
	VerificationKey(kid string, method jwt.SigningMethod) (interface{}, error)
}

// SecretKeyProvider verifies HMAC signed tokens with a shared secret.
type SecretKeyProvider struct {
	Secret []byte
}

func (p *SecretKeyProvider) VerificationKey(_ string, method jwt.SigningMethod) (interface{}, error) {
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("token is not HMAC signed")
	}
	if len(p.Secret) == 0 {
		return nil, errors.New("no secret set")
	}
	return p.Secret, nil
}

// RSAKeyProvider verifies RSA signed tokens with a single public key.
type RSAKeyProvider struct {
	PublicKey *rsa.PublicKey
}

func (p *RSAKeyProvider) VerificationKey(_ string, method jwt.SigningMethod) (interface{}, error) {
	if _, ok := method.(*jwt.SigningMethodRSA); !ok {
		return nil, errors.New("token is not RSA signed")
	}
	if p.PublicKey == nil {
		return nil, errors.New("no public key set")
	}
	return p.PublicKey, nil
}
