package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/salesdash/internal/auth"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/middleware"
	"github.com/yourorg/salesdash/internal/models"
	"github.com/yourorg/salesdash/internal/store"
	"github.com/yourorg/salesdash/internal/validation"
)

type AuthHandler struct {
	gw       *store.Gateway
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	validate *validation.Validator
	log      logging.Logger

	// digest compared on unknown emails so both login failures cost one bcrypt
	dummyHash string
}

func NewAuthHandler(gw *store.Gateway, hasher *auth.PasswordHasher, tokens *auth.TokenService, v *validation.Validator, log logging.Logger) *AuthHandler {
	dummy, err := hasher.Hash("salesdash-unknown-user")
	if err != nil {
		log.Warn(context.Background(), "dummy password hash", "error", err)
	}
	return &AuthHandler{gw: gw, hasher: hasher, tokens: tokens, validate: v, log: log, dummyHash: dummy}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := h.validate.Bind(c.Body(), &req); err != nil {
		return writeError(c, h.log, err)
	}

	user, err := h.createUser(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: "User already exists"})
		}
		return writeError(c, h.log, err)
	}

	h.log.Info(c.UserContext(), "user registered", "user_id", user.ID)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusCreated).JSON(models.RegisterResponse{
		Message: "User created successfully",
		User:    user,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := h.validate.Bind(c.Body(), &req); err != nil {
		return writeError(c, h.log, err)
	}

	user, err := store.FindOne(c.UserContext(), h.gw, store.Users, "email", req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.hasher.Verify(req.Password, h.dummyHash)
			return invalidCredentials(c)
		}
		return writeError(c, h.log, err)
	}
	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		return invalidCredentials(c)
	}

	token, expiresAt, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return writeError(c, h.log, err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).JSON(models.LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

// GetUser handles GET /api/users and returns the caller's profile.
func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "Invalid or expired token"})
	}

	user, err := store.FindOne(c.UserContext(), h.gw, store.Users, "id", claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "User not found"})
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(models.UserResponse{User: user})
}

// CreateUser handles POST /api/users: register and sign in with one call.
func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := h.validate.Bind(c.Body(), &req); err != nil {
		return writeError(c, h.log, err)
	}

	user, err := h.createUser(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: "User already exists"})
		}
		return writeError(c, h.log, err)
	}

	token, expiresAt, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return writeError(c, h.log, err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).JSON(models.CreateUserResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// createUser stores a new user. The email lookup only skips hashing for
// obvious duplicates; the unique index is what guarantees uniqueness.
func (h *AuthHandler) createUser(ctx context.Context, req *models.RegisterRequest) (models.User, error) {
	_, err := store.FindOne(ctx, h.gw, store.Users, "email", req.Email)
	switch {
	case err == nil:
		return models.User{}, store.ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return models.User{}, err
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return models.User{}, err
	}
	return store.Insert(ctx, h.gw, store.Users, req.Fields(hash))
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "Invalid credentials"})
}
