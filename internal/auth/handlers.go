package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/periodiq/periodiq/internal/httputil"
	"github.com/periodiq/periodiq/internal/repository"
)

type Handler struct {
	credentials *repository.CredentialRepository
	jwtSecret   string
}

func NewHandler(credentials *repository.CredentialRepository, jwtSecret string) *Handler {
	return &Handler{credentials: credentials, jwtSecret: jwtSecret}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.With(NewMiddleware(h.jwtSecret).RequireAuth).Post("/change-password", h.changePassword)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	cred, err := h.credentials.Get()
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
		return
	}

	if cred.Username != req.Username || !CheckPassword(cred.PasswordHash, req.Password) {
		httputil.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid username or password")
		return
	}

	token, err := GenerateToken(cred.Username, h.jwtSecret)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to issue session token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	username := UserFromContext(r.Context())
	if username == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	cred, err := h.credentials.Get()
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no credential configured")
		return
	}
	if !CheckPassword(cred.PasswordHash, req.CurrentPassword) {
		httputil.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "current password is incorrect")
		return
	}
	if err := ValidatePassword(req.NewPassword, 8); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "WEAK_PASSWORD", err.Error())
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to hash password")
		return
	}
	cred.PasswordHash = hash
	if err := h.credentials.Upsert(cred); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to update password")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
