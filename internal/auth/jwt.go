package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// decodeSelfIssuedToken extracts identity claims from a compact JWT
// without verifying its signature. Signature validity is assumed to be
// guaranteed by the layer that issued or forwarded the token; this path
// only recovers the identity it carries. Callers must treat the result
// as informational rather than proof of possession.
func decodeSelfIssuedToken(raw string) (*TokenRecord, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token payload: %w", err)
	}

	email := stringClaim(claims, "email")
	if email == "" {
		email = stringClaim(claims, "username")
	}
	if email == "" {
		return nil, fmt.Errorf("token carries no email or username claim")
	}

	rec := &TokenRecord{
		Token:     raw,
		ClientID:  stringClaim(claims, "client_id"),
		SessionID: sessionIDClaim(claims),
		Claims:    claims,
		Sub:       stringClaim(claims, "sub"),
		Email:     email,
	}
	if rec.ClientID == "" {
		rec.ClientID = stringClaim(claims, "aud")
	}
	if scope := stringClaim(claims, "scope"); scope != "" {
		rec.Scopes = strings.Fields(scope)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		rec.ExpiresAt = exp.Time
	} else {
		rec.ExpiresAt = time.Now().Add(time.Hour)
	}
	return rec, nil
}

// sessionIDClaim returns the provider session identifier, trying the
// claims that different issuers use for it.
func sessionIDClaim(claims jwt.MapClaims) string {
	for _, key := range []string{"sid", "jti", "session_id"} {
		if v := stringClaim(claims, key); v != "" {
			return v
		}
	}
	return ""
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return v
}
