package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/forumhub/apiserver/internal/auth"
	"github.com/forumhub/apiserver/internal/logging"
	"github.com/go-chi/chi/v5"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// AuthHandler issues and clears the session cookie.
type AuthHandler struct {
	codec      *auth.TokenCodec
	production bool
	log        logging.Logger
}

// NewAuthHandler constructs an AuthHandler. In production the cookie is
// sent cross-site and only over TLS.
func NewAuthHandler(codec *auth.TokenCodec, production bool, log logging.Logger) *AuthHandler {
	return &AuthHandler{codec: codec, production: production, log: log}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/set-cookie", handler.SetCookie)
	r.Post("/clear-cookies", handler.ClearCookies)
}

// RequireAuth constructs the authentication gate: a missing cookie is
// rejected with 401, a token that fails verification with 403. On success
// the token's email is attached to the request context.
func RequireAuth(codec *auth.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			email, err := codec.Verify(cookie.Value)
			if err != nil {
				msg := "forbidden"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "session expired"
				}
				writeError(w, http.StatusForbidden, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), email)))
		})
	}
}

// SetCookie issues a session token for the posted email.
func (h *AuthHandler) SetCookie(w http.ResponseWriter, r *http.Request) {
	var req SetCookieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.codec.Issue(req.Email)
	if err != nil {
		h.log.Error(r.Context(), "issue session token failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	http.SetCookie(w, h.cookie(token, time.Now().Add(auth.SessionTTL), int(auth.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// ClearCookies expires the session cookie.
func (h *AuthHandler) ClearCookies(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.cookie("", time.Unix(0, 0), -1))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if h.production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

type SetCookieRequest struct {
	Email string `json:"email"`
}
