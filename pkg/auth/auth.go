// Package auth guards the per-organization routes.
//
// Organizations authenticate with an HS256 JWT handed out at registration,
// whose subject is their label. Registration itself is guarded by the
// tenant API key.
package auth

import (
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apierr "github.com/idtrace/traceability-controller/pkg/api/types/errors"
	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

var labelPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// FormatLabel lowercases an organization label and rejects characters
// that cannot appear in a did:web path segment.
func FormatLabel(label string) (string, error) {
	label = strings.ToLower(label)
	if !labelPattern.MatchString(label) {
		return "", xe.New(fmt.Sprintf("invalid organization label: %s", label))
	}
	return label, nil
}

type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue returns the bearer token for an organization. Tokens do not
// expire; they are revoked by rotating the tenant API key.
func (ti *TokenIssuer) Issue(label string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": label,
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", xe.Wrap(err)
	}
	return signed, nil
}

func (ti *TokenIssuer) parse(raw string) (string, error) {
	token, err := jwt.Parse(
		raw,
		func(t *jwt.Token) (any, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return "", xe.Wrap(err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", xe.Wrap(err)
	}
	return sub, nil
}

// Bearer is the middleware for /:namespace/:label/... routes. The token
// subject has to match the label path parameter.
func (ti *TokenIssuer) Bearer(labelParam string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return apierr.Unauthorized("set a bearer token", nil)
			}

			sub, err := ti.parse(raw)
			if err != nil {
				return apierr.Unauthorized("invalid token", err)
			}

			label, err := FormatLabel(c.Param(labelParam))
			if err != nil {
				return apierr.BadRequest(err.Error(), err)
			}
			if sub != label {
				return apierr.Unauthorized("token is not for this organization", nil)
			}

			return next(c)
		}
	}
}

// APIKey guards admin routes with the shared tenant API key passed in
// the X-API-KEY header.
func APIKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			given := c.Request().Header.Get("X-API-KEY")
			if subtle.ConstantTimeCompare([]byte(given), []byte(apiKey)) != 1 {
				return apierr.Unauthorized("invalid api key", nil)
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
