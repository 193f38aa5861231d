package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Cookie lifetime

	"matchday/internal/domain"     // Importing domain models
	"matchday/internal/ledger"     // Signup bonus
	"matchday/internal/middleware" // Session helpers
	"matchday/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=191"`
	Handle   string `json:"handle" binding:"required,alphanum,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt ignores bytes past 72
}

// LoginRequest accepts either the email or the handle as login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on login
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *domain.Account `json:"account"`
}

// SessionSettings controls how session tokens are minted and stored
type SessionSettings struct {
	Secret string
	TTL    time.Duration
	Secure bool // Send the cookie over HTTPS only
}

// RegisterHandler creates an account holding the starting balance
func RegisterHandler(db *gorm.DB, startingCoins int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		handle := strings.ToLower(req.Handle) // Handles are unique case-insensitively

		var taken int64
		if err := db.Model(&domain.Account{}).Where("email = ? OR handle = ?", email, handle).Count(&taken).Error; err != nil {
			respondError(c, domain.ErrInternal("check account", err))
			return
		}
		if taken > 0 {
			respondError(c, domain.ErrConflict("ACCOUNT_EXISTS", "email or handle already registered"))
			return
		}

		// Hash the password and create the account
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, domain.ErrInternal("hash password", err))
			return
		}
		acc := domain.NewAccount(email, handle, string(hash), 0)
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&acc).Error; err != nil {
				return err // Unique index catches a concurrent registration
			}
			if startingCoins <= 0 {
				return nil
			}
			balance, err := ledger.Apply(tx, acc.ID, startingCoins, domain.TxSignupBonus, "")
			acc.Coins = balance
			return err
		})
		if err != nil {
			var appErr *domain.AppError
			if errors.As(err, &appErr) {
				respondError(c, appErr)
				return
			}
			respondError(c, domain.ErrConflict("ACCOUNT_EXISTS", "email or handle already registered"))
			return
		}
		middleware.Logger(c).WithFields(logrus.Fields{
			"account_id": acc.ID,
			"handle":     acc.Handle,
			"coins":      acc.Coins,
		}).Info("Account registered")
		c.JSON(http.StatusCreated, gin.H{"account": acc})
	}
}

// LoginHandler authenticates an account and sets the session cookie
func LoginHandler(db *gorm.DB, session SessionSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}
		login := strings.ToLower(strings.TrimSpace(req.Login))
		var acc domain.Account // Fetch account by email or handle
		if err := db.Where("email = ? OR handle = ?", login, login).First(&acc).Error; err != nil {
			respondError(c, domain.ErrUnauthorized("invalid credentials"))
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
			respondError(c, domain.ErrUnauthorized("invalid credentials"))
			return
		}
		token, claims, err := utils.GenerateJWT(acc.ID, session.Secret, session.TTL)
		if err != nil {
			respondError(c, domain.ErrInternal("generate token", err))
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, token, int(session.TTL.Seconds()), "/", "", session.Secure, true)
		c.JSON(http.StatusOK, AuthResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, Account: &acc})
	}
}

// LogoutHandler revokes the current session token and clears the cookie
func LogoutHandler(revoked *utils.Revocations, session SessionSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			respondError(c, domain.ErrUnauthorized("missing session"))
			return
		}
		if err := revoked.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			respondError(c, domain.ErrInternal("revoke session", err))
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", session.Secure, true) // Expire the cookie
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}
