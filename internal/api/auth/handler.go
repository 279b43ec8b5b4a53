package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NekruzRakhimov/todo-list/internal/model"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/jwt"
	"github.com/NekruzRakhimov/todo-list/internal/service"
)

// identityKey is the gin context key holding the authenticated Identity
const identityKey = "identity"

// Handler serves the sign-up and sign-in endpoints
type Handler struct {
	auth    *service.AuthService
	limiter service.RateLimiter // nil disables rate limiting
}

// NewHandler creates an auth Handler
func NewHandler(auth *service.AuthService, limiter service.RateLimiter) *Handler {
	return &Handler{
		auth:    auth,
		limiter: limiter,
	}
}

// SignUp handles user registration
func (h *Handler) SignUp(c *gin.Context) {
	if !h.allow(c) {
		return
	}

	var req model.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if err := h.auth.Register(req.FullName, req.Username, req.Password); err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			c.JSON(http.StatusConflict, gin.H{"detail": "user already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully"})
}

// SignIn handles user login
func (h *Handler) SignIn(c *gin.Context) {
	if !h.allow(c) {
		return
	}

	var req model.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "incorrect username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// allow applies the per-IP rate limit to the auth endpoints
func (h *Handler) allow(c *gin.Context) bool {
	if h.limiter == nil {
		return true
	}
	if !h.limiter.Check(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"detail": "too many requests, try again later"})
		return false
	}
	return true
}

// Middleware resolves the bearer token to an Identity and stores it in
// the request context. Expired and malformed tokens are distinguished
// internally but both answer 401.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization header missing"})
			c.Abort()
			return
		}

		token, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header format"})
			c.Abort()
			return
		}

		identity, err := h.auth.Authenticate(token)
		if err != nil {
			zap.L().Debug("authentication failed",
				zap.Error(err))
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "token expired"})
			case errors.Is(err, service.ErrUserNotFound):
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "user not found"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			}
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the authenticated caller placed in the
// context by Middleware.
func CurrentIdentity(c *gin.Context) model.Identity {
	identity, _ := c.Get(identityKey)
	return identity.(model.Identity)
}
