package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the advisory identity carried in an id_token. Roles are
// opaque strings; this client performs no authorization evaluation.
type Identity struct {
	Subject   string
	Username  string
	Email     string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseIdentity parses an id_token WITHOUT signature validation, for claim
// inspection only. Returns an error only for malformed tokens, not for
// expired ones.
func ParseIdentity(idToken string) (*Identity, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(idToken, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse id_token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to extract claims from id_token")
	}

	ident := &Identity{}

	if sub, ok := claims["sub"].(string); ok {
		ident.Subject = sub
	}

	// Prefer preferred_username, fall back to username
	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		ident.Username = username
	} else if username, ok := claims["username"].(string); ok {
		ident.Username = username
	}

	if email, ok := claims["email"].(string); ok {
		ident.Email = email
	}

	if exp, ok := claims["exp"].(float64); ok {
		ident.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := claims["iat"].(float64); ok {
		ident.IssuedAt = time.Unix(int64(iat), 0)
	}

	ident.Roles = extractRoles(claims)

	return ident, nil
}

// extractRoles collects role strings from a flat "roles" claim or a
// Keycloak-style realm_access.roles claim.
func extractRoles(claims jwt.MapClaims) []string {
	var roles []string

	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	if realm, ok := claims["realm_access"].(map[string]interface{}); ok {
		if raw, ok := realm["roles"].([]interface{}); ok {
			for _, r := range raw {
				if s, ok := r.(string); ok {
					roles = append(roles, s)
				}
			}
		}
	}

	return roles
}
