package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey = "session_id" // string
	CtxSessionKey   = "session"    // model.Session

	SessionCookieName = "qc_session"
	// Cookieを使わないクライアント向けに新しいトークンを返すヘッダ
	SessionTokenHeader = "X-Session-Token"
)

// セッショントークン（HS256, sid/iat/exp）
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

// DI
func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

func (t *SessionTokens) TTL() time.Duration {
	return t.ttl
}

func (t *SessionTokens) Issue(sessionID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse は検証済みトークンから sid を取り出す。
func (t *SessionTokens) Parse(raw string) (string, error) {
	//JWTをパースして検証する
	token, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		if tk.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	//claimsを取り出す
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sid, err := parseString(claims["sid"])
	if err != nil || sid == "" {
		return "", errors.New("invalid sid")
	}
	return sid, nil
}

type SessionConfig struct {
	Tokens       *SessionTokens
	CookieSecure bool
	Now          func() time.Time
}

// Session はCookieかBearerからセッションIDを取り出す。
// 無い・不正なら新しいセッションを発行する。
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if raw := rawToken(c); raw != "" {
				if parsed, err := cfg.Tokens.Parse(raw); err == nil {
					sid = parsed
				}
			}

			if sid == "" {
				sid = uuid.NewString()
				signed, exp, err := cfg.Tokens.Issue(sid, now())
				if err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
				}

				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    signed,
					Path:     "/",
					Expires:  exp,
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
				c.Response().Header().Set(SessionTokenHeader, signed)
			}

			//contextへ保存
			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

// Cookie優先、無ければ Authorization: Bearer
func rawToken(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}

	authz := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// handler用
func SessionID(c echo.Context) (string, bool) {
	sid, ok := c.Get(CtxSessionIDKey).(string)
	return sid, ok && sid != ""
}

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
