package web

import (
	"net/http"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie carrying the signed session reference.
const SessionCookieName = "formdesk_session"

// sessionClaims binds the opaque session ID into a signed token so a
// tampered cookie is rejected before any session lookup happens.
type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// CookieCodec signs and verifies the session cookie value (HS256).
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secretKey string) *CookieCodec {
	return &CookieCodec{secret: []byte(secretKey)}
}

// Issue returns the signed cookie value for sessionID.
func (c *CookieCodec) Issue(sessionID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sessionID,
	})
	return token.SignedString(c.secret)
}

// Parse extracts the session ID from a cookie value. Any signature or
// format problem yields common.ErrUnauthorized; the caller then starts a
// fresh anonymous session.
func (c *CookieCodec) Parse(value string) (string, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", common.ErrUnauthorized
	}

	return claims.SessionID, nil
}

// SetCookie writes the session cookie for sessionID onto the response.
func (c *CookieCodec) SetCookie(w http.ResponseWriter, sessionID string) error {
	value, err := c.Issue(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
