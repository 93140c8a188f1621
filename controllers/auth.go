package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"cropwise/config"
	"cropwise/middlewares"
	"cropwise/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DashboardRoute is where the client goes after a successful sign-in.
const DashboardRoute = "/dashboard"

type credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type sessionResponse struct {
	User     models.User `json:"user"`
	Token    string      `json:"token"`
	Redirect string      `json:"redirect"`
}

// SignUp registers a new user and signs them in. No profile is created.
func (h *Handler) SignUp(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var existing int64
	if err := config.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		h.logger().Error("signup lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User already registered"})
		return
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
		return
	}

	user := models.User{Email: email, Password: string(hashedPassword)}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already registered"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
		return
	}
	h.logger().Info("user signed up", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, sessionResponse{User: user, Token: token, Redirect: DashboardRoute})
}

// SignIn checks the credentials and returns a session token.
func (h *Handler) SignIn(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	var user models.User
	err := config.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login credentials"})
		return
	}
	if err != nil {
		h.logger().Error("signin lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login credentials"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: user, Token: token, Redirect: DashboardRoute})
}

// SignOut revokes the token the request was made with.
func (h *Handler) SignOut(c *gin.Context) {
	jti := c.GetString(middlewares.TokenIDKey)
	exp, _ := c.Get(middlewares.TokenExpKey)
	expiresAt, _ := exp.(time.Time)
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(h.tokenTTL())
	}

	revoked := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}
	if err := config.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&revoked).Error; err != nil {
		h.logger().Error("signout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out", "redirect": "/"})
}

// Me returns the signed-in user.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) issueToken(user models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(h.tokenTTL()).Unix(),
	})
	return token.SignedString(h.Secret)
}

func (h *Handler) tokenTTL() time.Duration {
	if h.TokenTTL <= 0 {
		return 24 * time.Hour
	}
	return h.TokenTTL
}
