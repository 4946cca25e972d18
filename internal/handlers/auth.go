package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/models"
	"github.com/monocle-dev/carbontrack/internal/store"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/monocle-dev/carbontrack/internal/utils"
)

type RegisterRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Name     string `form:"name"`
	City     string `form:"city"`
}

type LoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *Handler) ShowRegister(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "register.html", nil)
}

func (h *Handler) Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.ShouldBind(&body); err != nil {
		h.flashRedirect(ctx, "Please enter a valid email and password.", "/register")
		return
	}

	passwordHash, err := auth.HashPassword(body.Password)

	if err != nil {
		logging.Log.WithError(err).Error("failed to hash password")
		h.flashRedirect(ctx, types.FlashRegistrationFailed, "/register")
		return
	}

	user := models.User{
		Email:        normalizeEmail(body.Email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(body.Name),
		City:         strings.TrimSpace(body.City),
	}

	err = h.store.CreateUser(ctx.Request.Context(), &user)

	switch {
	case errors.Is(err, store.ErrEmailTaken):
		h.flashRedirect(ctx, types.FlashEmailTaken, "/register")
	case err != nil:
		logging.Log.WithError(err).Error("failed to create user")
		h.flashRedirect(ctx, types.FlashRegistrationFailed, "/register")
	default:
		h.flashRedirect(ctx, types.FlashRegistered, "/login")
	}
}

func (h *Handler) ShowLogin(ctx *gin.Context) {
	h.render(ctx, http.StatusOK, "login.html", nil)
}

// authenticate returns the user iff the email exists and the password
// matches its hash.
func (h *Handler) authenticate(ctx *gin.Context) (*models.User, error) {
	var body LoginRequest

	if err := ctx.ShouldBind(&body); err != nil {
		return nil, store.ErrNotFound
	}

	user, err := h.store.UserByEmail(ctx.Request.Context(), normalizeEmail(body.Email))

	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, body.Password) {
		return nil, store.ErrNotFound
	}

	return user, nil
}

func (h *Handler) Login(ctx *gin.Context) {
	user, err := h.authenticate(ctx)

	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logging.Log.WithError(err).Error("failed to look up user")
		}
		h.render(ctx, http.StatusUnauthorized, "login.html", gin.H{"Message": types.FlashBadCredentials})
		return
	}

	session := utils.GetSession(ctx)
	session.UserID = user.ID
	session.LoggedIn = true
	session.Name = user.Name
	session.City = user.City

	h.redirect(ctx, "/dashboard")
}

func (h *Handler) ShowAdminLogin(ctx *gin.Context) {
	if utils.GetSession(ctx).IsAdmin {
		h.redirect(ctx, "/dashboard")
		return
	}

	h.render(ctx, http.StatusOK, "login_admin.html", nil)
}

func (h *Handler) AdminLogin(ctx *gin.Context) {
	session := utils.GetSession(ctx)

	if session.IsAdmin {
		h.redirect(ctx, "/dashboard")
		return
	}

	user, err := h.authenticate(ctx)

	if err != nil || !user.IsAdmin {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logging.Log.WithError(err).Error("failed to look up admin")
		}
		h.flashRedirect(ctx, types.FlashNotAdmin, "/login_admin")
		return
	}

	session.UserID = user.ID
	session.IsAdmin = true
	session.Name = user.Name
	session.City = user.City

	h.flashRedirect(ctx, types.FlashAdminLoggedIn, "/dashboard")
}

func (h *Handler) Logout(ctx *gin.Context) {
	session := utils.GetSession(ctx)
	session.Clear()

	h.flashRedirect(ctx, types.FlashLoggedOut, "/")
}
