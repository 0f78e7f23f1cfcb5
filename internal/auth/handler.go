package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yuditriaji/atelie-lacos/internal/config"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

// Development-only shortcut account, see Config.DevAdminEnabled
const (
	DevAdminEmail    = "admin@admin.com"
	DevAdminPassword = "123"
	devAdminName     = "Admin"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Handler struct {
	db           *gorm.DB
	jwt          *JWTManager
	hub          *session.Hub
	googleConfig *oauth2.Config
	frontendURL  string
}

func NewHandler(db *gorm.DB, jwt *JWTManager, hub *session.Hub, cfg config.Config) *Handler {
	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}

	return &Handler{
		db:           db,
		jwt:          jwt,
		hub:          hub,
		googleConfig: googleConfig,
		frontendURL:  strings.TrimSuffix(cfg.FrontendURL, "/"),
	}
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"`
	Account      database.Account `json:"account"`
	IsNewAccount bool             `json:"is_new_account,omitempty"`
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func accountSession(a database.Account) session.Session {
	return session.Session{AccountID: a.ID, Email: a.Email, Name: a.Name}
}

// GoogleLogin redirects to Google OAuth consent screen
func (h *Handler) GoogleLogin(c *gin.Context) {
	// Generate state token for CSRF protection
	state := uuid.New().String()
	c.SetCookie("oauth_state", state, 300, "/", "", false, true)

	c.Redirect(http.StatusTemporaryRedirect, h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

// GoogleCallback handles the OAuth callback from Google
func (h *Handler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie("oauth_state")
	if err != nil || state != storedState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state parameter"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No authorization code"})
		return
	}

	ctx := c.Request.Context()
	token, err := h.googleConfig.Exchange(ctx, code)
	if err != nil {
		log.Printf("google token exchange failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to exchange token"})
		return
	}

	userInfo, err := h.getGoogleUserInfo(ctx, token)
	if err != nil {
		log.Printf("google userinfo failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get user info"})
		return
	}

	account, isNew, err := h.findOrCreateGoogleAccount(userInfo)
	if err != nil {
		log.Printf("google account lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in with Google"})
		return
	}

	s := accountSession(account)
	accessToken, _, err := h.jwt.SignAccess(s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	refreshToken, _, err := h.jwt.SignRefresh(s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	kind := session.SignedIn
	if isNew {
		kind = session.SignedUp
	}
	h.hub.Publish(session.Event{Kind: kind, Session: s, IPAddress: c.ClientIP()})

	// Tokens travel in the query string because the SPA may live on another origin
	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("refresh_token", refreshToken)
	q.Set("is_new_account", fmt.Sprint(isNew))
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback?"+q.Encode())
}

func (h *Handler) getGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	resp, err := h.googleConfig.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, err
	}
	return &userInfo, nil
}

func (h *Handler) findOrCreateGoogleAccount(info *GoogleUserInfo) (database.Account, bool, error) {
	var account database.Account

	err := h.db.Where("google_id = ?", info.ID).First(&account).Error
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return account, false, err
	}

	email := normalizeEmail(info.Email)
	err = h.db.Where("email = ?", email).First(&account).Error
	switch {
	case err == nil:
		// Existing password account, link it to Google
		account.GoogleID = info.ID
		return account, false, h.db.Save(&account).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		account = database.Account{Email: email, GoogleID: info.ID, Name: info.Name}
		return account, true, h.db.Create(&account).Error
	default:
		return account, false, err
	}
}

// Register creates an account with email and password
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.createPasswordAccount(req.Name, req.Email, req.Password)
	if errors.Is(err, errEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != nil {
		log.Printf("register failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	h.respond(c, http.StatusCreated, account, session.SignedUp, true)
}

var errEmailTaken = errors.New("email already registered")

func (h *Handler) createPasswordAccount(name, email, password string) (database.Account, error) {
	email = normalizeEmail(email)

	var existing database.Account
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return existing, errEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return existing, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := database.Account{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(name),
	}
	if err := h.db.Create(&account).Error; err != nil {
		return database.Account{}, err
	}
	return account, nil
}

// Login authenticates an account with email/password
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var account database.Account
	if err := h.db.Where("email = ?", normalizeEmail(req.Email)).First(&account).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !checkPassword(account, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.respond(c, http.StatusOK, account, session.SignedIn, false)
}

// Google-only accounts have no password to compare against
func checkPassword(account database.Account, password string) bool {
	if account.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) == nil
}

// DevLogin signs in the default admin, creating it on first use.
// Only routed when Config.DevAdminEnabled is true.
func (h *Handler) DevLogin(c *gin.Context) {
	var account database.Account
	created := false

	err := h.db.Where("email = ?", DevAdminEmail).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account, err = h.createPasswordAccount(devAdminName, DevAdminEmail, DevAdminPassword)
		created = err == nil
	}
	if err != nil {
		log.Printf("dev admin provisioning failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in as admin"})
		return
	}

	kind := session.SignedIn
	if created {
		kind = session.SignedUp
	}
	h.respond(c, http.StatusOK, account, kind, created)
}

// RefreshToken generates new tokens from a refresh token
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.jwt.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token", "redirect": "/login"})
		return
	}

	var account database.Account
	if err := h.db.Where("id = ?", claims.AccountID).First(&account).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found", "redirect": "/login"})
		return
	}

	h.respond(c, http.StatusOK, account, session.TokenRefreshed, false)
}

// Logout ends the session. Tokens are stateless, the client drops them.
func (h *Handler) Logout(c *gin.Context) {
	s := session.Current(c)
	h.hub.Publish(session.Event{Kind: session.SignedOut, Session: s, IPAddress: c.ClientIP()})
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// GetMe returns the current account
func (h *Handler) GetMe(c *gin.Context) {
	s := session.Current(c)

	var account database.Account
	if err := h.db.Where("id = ?", s.AccountID).First(&account).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account, "session": s})
}

func (h *Handler) respond(c *gin.Context, status int, account database.Account, kind session.EventKind, isNew bool) {
	s := accountSession(account)

	accessToken, _, err := h.jwt.SignAccess(s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	refreshToken, _, err := h.jwt.SignRefresh(s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	h.hub.Publish(session.Event{Kind: kind, Session: s, IPAddress: c.ClientIP()})

	c.JSON(status, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.jwt.AccessTTL().Seconds()),
		Account:      account,
		IsNewAccount: isNew,
	})
}
