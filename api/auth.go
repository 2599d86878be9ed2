package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evtimahovich/talentflow/internal/identity"
	"github.com/evtimahovich/talentflow/internal/models"
	"github.com/evtimahovich/talentflow/pkg/repository"
)

type AuthHandler struct {
	users         repository.UserRepo
	identity      *identity.Client // nil when no external identity service is configured
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(users repository.UserRepo, idc *identity.Client, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{users: users, identity: idc, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type signupRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

func (h *AuthHandler) issueToken(uid, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   uid,
		"email": email,
		"exp":   time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	role := models.RoleRecruiter
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			http.Error(w, "Unknown role", http.StatusBadRequest)
			return
		}
		role = parsed
	}
	// only clients carry a company link
	if role != models.RoleClient {
		req.CompanyID = ""
	}

	ctx := r.Context()

	existing, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		CompanyID:    req.CompanyID,
		PasswordHash: string(hash),
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	tokenStr, err := h.issueToken(user.ID, user.Email)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: user}, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(user.ID, user.Email)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: user}, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}

type exchangeRequest struct {
	Token string `json:"token"`
}

// ExchangeSession trades an external identity session token for a local JWT.
// If the remote profile is not ready even after the retry, the user comes in
// as a fresh unlinked client: they can sign in but see nothing until staff
// links them to a company.
func (h *AuthHandler) ExchangeSession(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		http.Error(w, "Identity service not configured", http.StatusServiceUnavailable)
		return
	}

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	profile, err := h.identity.ResolveWithRetry(ctx, req.Token)
	if err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			http.Error(w, "Unknown session", http.StatusUnauthorized)
			return
		}
		logger.Error("identity resolve", "err", err)
		http.Error(w, "Identity service unavailable", http.StatusBadGateway)
		return
	}

	var user *models.User
	if profile == nil {
		// the users.email column is unique and required, so the placeholder
		// gets a synthetic address until staff links the account
		uid := uuid.NewString()
		user = &models.User{
			ID:    uid,
			Name:  "New user",
			Email: uid + "@unlinked.local",
			Role:  models.RoleClient,
		}
		if err := h.users.CreateUser(ctx, user); err != nil {
			http.Error(w, "Error creating user", http.StatusInternalServerError)
			return
		}
	} else {
		user, err = h.syncProfile(r, profile)
		if err != nil {
			http.Error(w, "Error syncing user", http.StatusInternalServerError)
			return
		}
	}

	tokenStr, err := h.issueToken(user.ID, user.Email)
	if err != nil {
		http.Error(w, "Error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr, User: user}, http.StatusOK)
}

// syncProfile mirrors the remote profile into the local users table.
func (h *AuthHandler) syncProfile(r *http.Request, p *identity.Profile) (*models.User, error) {
	ctx := r.Context()

	role := p.Role
	if !role.Valid() {
		role = models.RoleClient
	}

	user, err := h.users.GetUserByID(ctx, p.UID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{ID: p.UID, Name: p.Name, Email: p.Email, Role: role, CompanyID: p.CompanyID}
		if err := h.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user.Name = p.Name
	user.Email = p.Email
	user.Role = role
	user.CompanyID = p.CompanyID
	if err := h.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type profileUpdateRequest struct {
	Name string `json:"name"`
}

// UpdateProfile renames the acting user. When an identity service is
// configured the remote profile is updated first; the local row only changes
// after the remote accepted the new name.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	if u == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.identity != nil {
		if err := h.identity.UpdateProfile(ctx, u.ID, identity.ProfileUpdate{Name: &req.Name}); err != nil {
			logger.Error("identity profile update", "err", err, "uid", u.ID)
			http.Error(w, "Identity service rejected the update", http.StatusBadGateway)
			return
		}
	}

	u.Name = req.Name
	if err := h.users.UpdateUser(ctx, u); err != nil {
		http.Error(w, "Error updating user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, u, http.StatusOK)
}

// Me returns the acting user as seen by the JWT middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	if u == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, u, http.StatusOK)
}
