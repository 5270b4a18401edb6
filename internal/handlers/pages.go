package handlers

import (
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/hoopsboard/internal/auth"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/services"
	"github.com/abrezinsky/hoopsboard/internal/shell"
)

// LeaderboardPageData holds the data for the leaderboard template
type LeaderboardPageData struct {
	Season    string
	PageID    string
	Viewer    string
	View      page.View
	NoAnimate bool
}

// UnavailablePageData holds the data for the error view of a failed mount
type UnavailablePageData struct {
	Season  string
	Code    string
	Message string
}

// ==================== Public Pages ====================

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	season, err := h.Settings.GetDefaultSeason(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	http.Redirect(w, r, "/leaderboard/"+url.PathEscape(season), http.StatusFound)
}

func (h *Handlers) handleLeaderboardPage(w http.ResponseWriter, r *http.Request) {
	season := chi.URLParam(r, "season")
	req := h.mountRequest(w, r, season, r.URL.RawQuery, chi.URLParam(r, "userID"))

	p, err := h.Pages.Mount(r.Context(), req)
	if err != nil {
		apiErr := ToAPIError(err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(apiErr.Status)
		h.templates.Unavailable.Execute(w, UnavailablePageData{
			Season:  season,
			Code:    apiErr.Code,
			Message: apiErr.Message,
		})
		return
	}

	h.templates.Leaderboard.Execute(w, LeaderboardPageData{
		Season:    p.Season(),
		PageID:    p.ID(),
		Viewer:    req.Viewer,
		View:      p.View(),
		NoAnimate: h.UI.NoAnimate,
	})
}

// mountRequest describes the browser behind r
func (h *Handlers) mountRequest(w http.ResponseWriter, r *http.Request, season, rawQuery, initialUserID string) services.MountRequest {
	return services.MountRequest{
		Season:        season,
		RawQuery:      rawQuery,
		InitialUserID: initialUserID,
		Viewer:        h.Auth.ViewerFromRequest(r),
		DeviceID:      auth.EnsureDevice(w, r),
	}
}

// ==================== Page API ====================

func (h *Handlers) handleGetSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.Leaderboard.Seasons(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	def, err := h.Settings.GetDefaultSeason(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, SeasonsResponse{Seasons: seasons, Default: def})
}

func (h *Handlers) handleMountPage(w http.ResponseWriter, r *http.Request) {
	var req PageMountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	p, err := h.Pages.Mount(r.Context(), h.mountRequest(w, r, req.Season, req.Query, req.InitialUserID))
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, PageResponse{ID: p.ID(), View: p.View()})
}

func (h *Handlers) handleGetPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.page(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p.Touch()
	respondOK(w, PageResponse{ID: p.ID(), View: p.View()})
}

func (h *Handlers) handleUnmountPage(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Pages.Unmount(id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handlePageAction(w http.ResponseWriter, r *http.Request) {
	p, err := h.page(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var action page.Action
	if err := decodeJSON(r, &action); err != nil {
		respondError(w, err)
		return
	}

	view, err := p.Dispatch(action)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, PageResponse{ID: p.ID(), View: view})
}

func (h *Handlers) handleShareURL(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	link, err := h.Pages.ShareURL(r.Context(), id, requestBase(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ShareResponse{URL: link})
}

func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	png, err := h.Pages.ShareQR(r.Context(), id, requestBase(r))
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (h *Handlers) page(r *http.Request) (*page.Page, error) {
	id, err := requireParam(r, "id")
	if err != nil {
		return nil, err
	}
	return h.Pages.Get(id)
}

// requestBase is the scheme and host the request was addressed to
func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// ==================== Logos & sockets ====================

// handleLogo serves a team logo. The name is either a file name from a view or
// a team slug, which is resolved through the extension fallback chain.
func (h *Handlers) handleLogo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := fs.Stat(h.Logos, name); err != nil {
		name = h.Logos.Resolve(shell.TeamSlug(strings.TrimSuffix(name, path.Ext(name))))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFileFS(w, r, h.Logos, name)
}

func (h *Handlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		respondError(w, NewAPIError(http.StatusServiceUnavailable, ErrCodeInternalServer, "sockets are not available"))
		return
	}
	h.Hub.ServeWs(w, r, chi.URLParam(r, "id"))
}
