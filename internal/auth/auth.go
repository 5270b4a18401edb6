// Package auth keeps the cookie sessions of the site: admin sessions guarded by
// a password, viewer sessions carrying the contest username, and an anonymous
// device id that scopes preferences for visitors who never log in.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/hoopsboard/internal/errors"
)

const (
	CookieName       = "hoopsboard_session"
	ViewerCookieName = "hoopsboard_viewer"
	DeviceCookieName = "hoopsboard_device"
	SessionExpiry    = 24 * time.Hour
	ViewerExpiry     = 30 * 24 * time.Hour
	DeviceExpiry     = 365 * 24 * time.Hour

	maxUsernameLength = 64
)

// Basketball words for password generation
var hoopsWords = []string{
	"dunk", "layup", "rebound", "assist", "buzzer",
	"jumper", "hoop", "court", "dribble", "alley",
	"oop", "swish", "bank", "block", "steal",
	"fastbreak", "triple", "double", "playoff",
}

type viewerSession struct {
	username string
	expiry   time.Time
}

// Auth handles admin and viewer sessions
type Auth struct {
	password string
	sessions map[string]time.Time
	viewers  map[string]viewerSession
	mu       sync.RWMutex
}

// New creates a new Auth instance with the given admin password
func New(password string) *Auth {
	return &Auth{
		password: password,
		sessions: make(map[string]time.Time),
		viewers:  make(map[string]viewerSession),
	}
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		idx := randomInt(len(hoopsWords))
		words[i] = hoopsWords[idx]
	}
	return strings.Join(words, "-")
}

// Login validates the password and returns a session token if valid
func (a *Auth) Login(password string) (string, bool) {
	if a.password == "" || password != a.password {
		return "", false
	}

	token := generateToken()
	a.mu.Lock()
	a.sessions[token] = time.Now().Add(SessionExpiry)
	a.mu.Unlock()

	return token, true
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// ValidateSession checks if a session token is valid
func (a *Auth) ValidateSession(token string) bool {
	a.mu.RLock()
	expiry, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return false
	}

	if time.Now().After(expiry) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return false
	}

	return true
}

// GetSessionFromRequest extracts and validates the admin session from a request
func (a *Auth) GetSessionFromRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return a.ValidateSession(cookie.Value)
}

// RequireAuth middleware for admin pages (redirects to login)
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.GetSessionFromRequest(r) {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, "/admin/login", http.StatusFound)
	})
}

// RequireAuthAPI middleware for API endpoints (returns 401)
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.GetSessionFromRequest(r) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
	})
}

// ==================== Viewer sessions ====================

// LoginViewer starts a viewer session for a contest username
func (a *Auth) LoginViewer(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.InvalidInput("username is required")
	}
	if len(username) > maxUsernameLength {
		return "", errors.InvalidInputf("username may be at most %d characters", maxUsernameLength)
	}

	token := generateToken()
	a.mu.Lock()
	a.viewers[token] = viewerSession{username: username, expiry: time.Now().Add(ViewerExpiry)}
	a.mu.Unlock()
	return token, nil
}

// LogoutViewer ends a viewer session
func (a *Auth) LogoutViewer(token string) {
	a.mu.Lock()
	delete(a.viewers, token)
	a.mu.Unlock()
}

// Viewer returns the username of a viewer session, or "" when the token is
// unknown or expired
func (a *Auth) Viewer(token string) string {
	a.mu.RLock()
	s, ok := a.viewers[token]
	a.mu.RUnlock()
	if !ok {
		return ""
	}
	if time.Now().After(s.expiry) {
		a.mu.Lock()
		delete(a.viewers, token)
		a.mu.Unlock()
		return ""
	}
	return s.username
}

// ViewerFromRequest returns the logged-in username of a request, if any
func (a *Auth) ViewerFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(ViewerCookieName)
	if err != nil {
		return ""
	}
	return a.Viewer(cookie.Value)
}

// EnsureDevice returns the request's device id, issuing a new one when the
// cookie is missing or malformed
func EnsureDevice(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(DeviceCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(DeviceExpiry.Seconds()),
	})
	return id
}

// SetSessionCookie sets the admin session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	setCookie(w, CookieName, token, SessionExpiry)
}

// ClearSessionCookie removes the admin session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	clearCookie(w, CookieName)
}

// SetViewerCookie sets the viewer session cookie on the response
func SetViewerCookie(w http.ResponseWriter, token string) {
	setCookie(w, ViewerCookieName, token, ViewerExpiry)
}

// ClearViewerCookie removes the viewer session cookie
func ClearViewerCookie(w http.ResponseWriter) {
	clearCookie(w, ViewerCookieName)
}

func setCookie(w http.ResponseWriter, name, value string, expiry time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(expiry.Seconds()),
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateToken creates a random session token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
