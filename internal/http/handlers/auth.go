package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/http/middleware"
	"taskhub/internal/repositories"
	"taskhub/internal/services"
)

// AuthHandler issues and honors the bearer tokens the CRUD resources are
// gated behind.
type AuthHandler struct {
	Users    repositories.UserRepository
	Svc      services.Resource[*models.User]
	Secret   []byte
	TokenTTL time.Duration
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := h.Users.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if domain.IsNotFound(err) {
			RespondError(c, http.StatusUnauthorized, "invalid username or password", nil)
			return
		}
		RespondDomainError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		RespondError(c, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       user.ID,
		"username":  user.Username,
		"tenant_id": user.TenantID,
		"role":      user.Role,
		"exp":       time.Now().Add(h.TokenTTL).Unix(),
	})
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to sign token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": signed,
		"user":  user,
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		RespondDomainError(c, domain.ValidationError{Fields: registerViolations(req)})
		return
	}

	if _, err := h.Users.FindByUsername(c.Request.Context(), req.Username); err == nil {
		RespondDomainError(c, domain.ConflictError{Resource: "user", Msg: "username already registered"})
		return
	} else if !domain.IsNotFound(err) {
		RespondDomainError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	user := &models.User{Username: req.Username, Password: string(hash)}
	created, err := h.Svc.Create(c.Request.Context(), domain.RequestContext{}, user)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registered", "user": created})
}

// GET /api/users/me
func (h AuthHandler) Me(c *gin.Context) {
	rc := middleware.RequestContext(c)
	user, err := h.Users.FindByID(c.Request.Context(), rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func registerViolations(req registerRequest) []domain.FieldViolation {
	var out []domain.FieldViolation
	if req.Username == "" {
		out = append(out, domain.FieldViolation{Field: "username", Message: "field 'username' is required", Rule: "required"})
	}
	if req.Password == "" {
		out = append(out, domain.FieldViolation{Field: "password", Message: "field 'password' is required", Rule: "required"})
	}
	return out
}
