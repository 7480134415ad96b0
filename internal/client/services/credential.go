package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialInfo is what can be read out of a credential without the
// signing key. It is for display only.
type CredentialInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the credential carries an expiry that lies before now.
func (i CredentialInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// DescribeCredential decodes the registered claims of a JWT credential
// without verifying its signature.
func DescribeCredential(credential string) (CredentialInfo, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &claims); err != nil {
		return CredentialInfo{}, fmt.Errorf("decode credential: %w", err)
	}

	info := CredentialInfo{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
