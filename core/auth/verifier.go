package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"flightsurety/core/audit"
	"flightsurety/types/ids"
)

var ErrInvalidToken = errors.New("invalid caller token")

// CallerClaims identifies an API caller. The subject is the caller address.
type CallerClaims struct {
	ChainID string   `json:"chainID,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	KeyProvider KeyProvider
	// ChainID, when set, must match the token's chainID claim.
	ChainID     string
	AuditLogger audit.AuditLogger
}

// Authenticate verifies the token and returns the caller address in its
// subject.
func (v *Verifier) Authenticate(tokenString string) (ids.Address, *CallerClaims, error) {
	claims, err := v.verify(tokenString)
	if err != nil {
		v.log("failure", "", err.Error())
		return ids.Address{}, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	caller, err := ids.ParseAddress(claims.Subject)
	if err != nil {
		v.log("failure", claims.Subject, err.Error())
		return ids.Address{}, nil, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}
	return caller, claims, nil
}

func (v *Verifier) verify(tokenString string) (*CallerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CallerClaims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		return v.KeyProvider.VerificationKey(kid, token.Method)
	}, jwt.WithIssuedAt(), jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*CallerClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token or claims")
	}
	if v.ChainID != "" && claims.ChainID != v.ChainID {
		return nil, fmt.Errorf("token chainID %q, want %q", claims.ChainID, v.ChainID)
	}
	return claims, nil
}

func (v *Verifier) log(result, entity, reason string) {
	if v.AuditLogger == nil {
		return
	}
	v.AuditLogger.LogEvent(audit.AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: "TokenVerification",
		EntityID:  entity,
		Result:    result,
		Reason:    reason,
	})
}

// IssueToken signs an HS256 token for caller. A zero ttl means no expiry.
func IssueToken(secret []byte, caller ids.Address, chainID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CallerClaims{
		ChainID: chainID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  caller.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
