package handlers

import (
	"net/http"
	"strings"

	"github.com/abrezinsky/hoopsboard/internal/auth"
)

// LoginPageData holds data for the login templates
type LoginPageData struct {
	Error    string
	Username string
	Next     string
}

// ==================== Admin sessions ====================

// handleLoginPage renders the admin login form
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to admin
	if h.Auth.GetSessionFromRequest(r) {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	h.templates.AdminLogin.Execute(w, LoginPageData{})
}

// handleLogin processes admin login form submission
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")

	token, ok := h.Auth.Login(password)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		h.templates.AdminLogin.Execute(w, LoginPageData{
			Error: "Invalid password",
		})
		return
	}

	auth.SetSessionCookie(w, token)
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// handleLogout clears the admin session and redirects to login
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

// ==================== Viewer sessions ====================

// handleViewerLoginPage renders the viewer sign-in form
func (h *Handlers) handleViewerLoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.Login.Execute(w, LoginPageData{
		Username: h.Auth.ViewerFromRequest(r),
		Next:     safeNext(r.URL.Query().Get("next")),
	})
}

// handleViewerLogin signs a viewer in. JSON clients get the identity back,
// form posts are redirected to the page they came from.
func (h *Handlers) handleViewerLogin(w http.ResponseWriter, r *http.Request) {
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	var req ViewerLoginRequest
	if isJSON {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
	} else {
		req.Username = r.FormValue("username")
	}

	token, err := h.Auth.LoginViewer(req.Username)
	if err != nil {
		if isJSON {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		h.templates.Login.Execute(w, LoginPageData{
			Error: ToAPIError(err).Message,
			Next:  safeNext(r.FormValue("next")),
		})
		return
	}

	auth.SetViewerCookie(w, token)
	if isJSON {
		respondOK(w, ViewerResponse{Username: h.Auth.Viewer(token), LoggedIn: true})
		return
	}
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusFound)
}

// handleViewerLogout ends the viewer session
func (h *Handlers) handleViewerLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.ViewerCookieName); err == nil {
		h.Auth.LogoutViewer(cookie.Value)
	}
	auth.ClearViewerCookie(w)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		respondOK(w, ViewerResponse{})
		return
	}
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusFound)
}

func (h *Handlers) handleGetViewer(w http.ResponseWriter, r *http.Request) {
	username := h.Auth.ViewerFromRequest(r)
	respondOK(w, ViewerResponse{Username: username, LoggedIn: username != ""})
}

// safeNext only allows redirects to local paths
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
