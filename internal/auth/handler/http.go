// Package handler exposes the auth and organization services over HTTP.
// The gRPC surface carries the generated service protos; this JSON surface
// serves browser and tooling clients.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"campus-control-plane/backend/internal/auth"
	"campus-control-plane/backend/internal/devotp"
	orgservice "campus-control-plane/backend/internal/organization/service"
	"campus-control-plane/backend/internal/passwordreset"
	"campus-control-plane/backend/internal/refreshtoken"
	"campus-control-plane/backend/internal/security"
	"campus-control-plane/backend/internal/tenant"
)

// Handler serves the JSON auth API.
type Handler struct {
	Auth      *auth.Service
	Registrar *orgservice.Registrar
	Tokens    *security.TokenProvider
	// TenantHeader is the inbound header carrying the tenant slug (e.g. X-Tenant-ID).
	TenantHeader string
	// DevOTP, when non-nil, enables GET /v1/dev/otp for test retrieval of
	// reset codes. Never set in production.
	DevOTP devotp.Store
}

// Register mounts the auth routes on r. Every route runs behind the tenant
// middleware so downstream code reads the tenant from the request context.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.tenantMiddleware)

		r.Post("/v1/auth/login", h.login)
		r.Post("/v1/auth/refresh", h.refresh)
		r.Post("/v1/auth/logout", h.logout)
		r.Post("/v1/auth/password-reset/request", h.requestReset)
		r.Post("/v1/auth/password-reset/confirm", h.confirmReset)
		r.Post("/v1/auth/password/change", h.changePassword)
		r.Post("/v1/orgs/register", h.registerOrg)

		if h.DevOTP != nil {
			r.Get("/v1/dev/otp", h.devOTP)
		}
	})
}

// tenantMiddleware binds the tenant slug from the configured header to the
// request context. The binding dies with the request.
func (h *Handler) tenantMiddleware(next http.Handler) http.Handler {
	key := h.TenantHeader
	if key == "" {
		key = "X-Tenant-ID"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tenant.WithTenant(r.Context(), r.Header.Get(key))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.Unix(),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}
	pair, err := h.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt.Unix(),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.Auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeAuthErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetRequestBody struct {
	Email string `json:"email"`
}

type resetRequestResponse struct {
	// DispatchWarning is set when the code was created but delivery failed.
	DispatchWarning string `json:"dispatch_warning,omitempty"`
}

func (h *Handler) requestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequestBody
	if !decode(w, r, &req) {
		return
	}
	outcome, err := h.Auth.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	resp := resetRequestResponse{}
	if outcome.DispatchErr != nil {
		resp.DispatchWarning = "reset code created but could not be delivered"
	}
	writeJSON(w, http.StatusAccepted, resp)
}

type resetConfirmBody struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) confirmReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmBody
	if !decode(w, r, &req) {
		return
	}
	if err := h.Auth.ConfirmPasswordReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeAuthErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordBody struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// changePassword requires a valid Bearer access token; the subject of the
// token is the account whose credential changes.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := h.bearerSubject(r)
	if !ok {
		writeErr(w, "unauthenticated", "missing or invalid authorization", http.StatusUnauthorized)
		return
	}
	var req changePasswordBody
	if !decode(w, r, &req) {
		return
	}
	if err := h.Auth.ChangePassword(r.Context(), username, req.OldPassword, req.NewPassword); err != nil {
		writeAuthErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) bearerSubject(r *http.Request) (string, bool) {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(v) < len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(v[len(prefix):])
	username, err := h.Tokens.ExtractUsername(token)
	if err != nil || !h.Tokens.Validate(token, username) {
		return "", false
	}
	return username, true
}

type registerOrgBody struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	AdminUsername string `json:"admin_username"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

type registerOrgResponse struct {
	OrgID       string `json:"org_id"`
	Slug        string `json:"slug"`
	AdminUserID int64  `json:"admin_user_id"`
}

func (h *Handler) registerOrg(w http.ResponseWriter, r *http.Request) {
	var req registerOrgBody
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Registrar.Register(r.Context(), req.Name, req.Slug, req.AdminUsername, req.AdminEmail, req.AdminPassword)
	if err != nil {
		writeAuthErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerOrgResponse{
		OrgID:       res.Org.ID,
		Slug:        res.Org.Slug,
		AdminUserID: res.Admin.ID,
	})
}

func (h *Handler) devOTP(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeErr(w, "invalid_request", "username query parameter is required", http.StatusBadRequest)
		return
	}
	otp, ok := h.DevOTP.Get(r.Context(), username)
	if !ok {
		writeErr(w, "not_found", "no live reset code for user", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"otp": otp})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, "invalid_request", "malformed JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code, desc string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": desc,
	})
}

// writeAuthErr maps service sentinels to HTTP failure codes. Unknown errors
// are reported as internal without leaking details.
func writeAuthErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErr(w, "invalid_credentials", "invalid username or password", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrAccountLocked):
		writeErr(w, "account_locked", "account temporarily locked; retry after the cooldown", http.StatusLocked)
	case errors.Is(err, auth.ErrEntityNotFound):
		writeErr(w, "not_found", "no account for that address", http.StatusNotFound)
	case errors.Is(err, refreshtoken.ErrTokenNotFound):
		writeErr(w, "token_not_found", "refresh token not recognized", http.StatusUnauthorized)
	case errors.Is(err, refreshtoken.ErrTokenExpired):
		writeErr(w, "token_expired", "refresh token expired; log in again", http.StatusUnauthorized)
	case errors.Is(err, passwordreset.ErrOTPNotFound):
		writeErr(w, "otp_not_found", "no live reset code; request a new one", http.StatusBadRequest)
	case errors.Is(err, passwordreset.ErrOTPExpired):
		writeErr(w, "otp_expired", "reset code expired; request a new one", http.StatusBadRequest)
	case errors.Is(err, passwordreset.ErrOTPMismatch):
		writeErr(w, "otp_mismatch", "reset code does not match", http.StatusBadRequest)
	case errors.Is(err, orgservice.ErrSlugTaken):
		writeErr(w, "slug_taken", "organization slug already registered", http.StatusConflict)
	case errors.Is(err, orgservice.ErrUsernameTaken):
		writeErr(w, "username_taken", "username already registered", http.StatusConflict)
	case errors.Is(err, orgservice.ErrInvalidSlug):
		writeErr(w, "invalid_slug", "organization slug is invalid", http.StatusBadRequest)
	default:
		writeErr(w, "internal", "internal error", http.StatusInternalServerError)
	}
}
