package fieldlist

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultEditorRole is the role JWTGuard requires unless configured otherwise.
const DefaultEditorRole = "template_editor"

var (
	ErrMissingToken   = errors.New("fieldlist: missing bearer token")
	ErrInvalidToken   = errors.New("fieldlist: invalid token")
	ErrMissingRole    = errors.New("fieldlist: token lacks the editor role")
	ErrTemplateDenied = errors.New("fieldlist: token does not grant this template")
)

// JWTGuard accepts requests carrying an HS256 bearer token signed with
// secret whose "roles" claim includes role. An empty role selects
// DefaultEditorRole. When the token carries a "templates" claim, requests for
// a template id outside that list are refused. Missing or invalid tokens
// yield 401, a missing role or template grant 403.
func JWTGuard(secret []byte, role string) GuardFunc {
	if role == "" {
		role = DefaultEditorRole
	}
	return func(r *http.Request) error {
		raw, ok := bearerToken(r)
		if !ok {
			return StatusError{Code: http.StatusUnauthorized, Err: ErrMissingToken}
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return StatusError{Code: http.StatusUnauthorized, Err: fmt.Errorf("%w: %v", ErrInvalidToken, err)}
		}

		if !slices.Contains(claimRoles(claims), role) {
			return StatusError{Code: http.StatusForbidden, Err: ErrMissingRole}
		}
		if granted, scoped := claimTemplates(claims); scoped {
			if id := TemplateID(r); id != "" && !slices.Contains(granted, id) {
				return StatusError{Code: http.StatusForbidden, Err: fmt.Errorf("%w: %s", ErrTemplateDenied, id)}
			}
		}
		return nil
	}
}

// SignToken issues an HS256 token for subject carrying roles, valid for ttl.
// A zero ttl issues a token without expiry.
func SignToken(secret []byte, subject string, roles []string, ttl time.Duration) (string, error) {
	return SignScopedToken(secret, subject, roles, nil, ttl)
}

// SignScopedToken is SignToken restricted to the given template ids. An empty
// list leaves the token unscoped.
func SignScopedToken(secret []byte, subject string, roles, templates []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"iat":   now.Unix(),
	}
	if len(templates) > 0 {
		claims["templates"] = templates
	}
	if ttl != 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func claimRoles(claims jwt.MapClaims) []string {
	return claimStrings(claims["roles"])
}

// claimTemplates reports the granted template ids and whether the token is
// scoped at all.
func claimTemplates(claims jwt.MapClaims) ([]string, bool) {
	value, ok := claims["templates"]
	if !ok || value == nil {
		return nil, false
	}
	return claimStrings(value), true
}

func claimStrings(value any) []string {
	switch items := value.(type) {
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Fields(items)
	default:
		return nil
	}
}
