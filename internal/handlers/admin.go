package handlers

import (
	"net/http"

	"github.com/abrezinsky/hoopsboard/internal/services"
)

// ==================== Admin Pages ====================

func (h *Handlers) handleAdminHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/questions", http.StatusFound)
}

func (h *Handlers) handleAdminQuestions(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:     "Author Questions",
		PageTitle: "Author Questions",
		ActiveNav: "questions",
	}
	h.templates.AdminQuestions.ExecuteTemplate(w, "admin", data)
}

func (h *Handlers) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:     "Admin Settings",
		PageTitle: "Admin Settings",
		ActiveNav: "settings",
	}
	h.templates.AdminSettings.ExecuteTemplate(w, "admin", data)
}

// ==================== Question authoring ====================

func (h *Handlers) handlePreviewQuestions(w http.ResponseWriter, r *http.Request) {
	var req QuestionBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	items, err := h.Batch.Preview(req.Season, req.Questions)
	if err != nil {
		respondError(w, err)
		return
	}

	valid := true
	for _, item := range items {
		if item.Error != "" {
			valid = false
			break
		}
	}
	respondOK(w, QuestionPreviewResponse{Season: req.Season, Items: items, Valid: valid})
}

func (h *Handlers) handleSubmitQuestions(w http.ResponseWriter, r *http.Request) {
	var req QuestionBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Batch.Submit(r.Context(), req.Season, req.Questions)
	if err != nil {
		respondError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, result)
}

func (h *Handlers) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	items, err := h.Batch.Batch(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if len(items) == 0 {
		respondError(w, NotFound("batch not found"))
		return
	}
	respondOK(w, BatchRecordsResponse{BatchID: id, Items: items})
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.AllSettings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, settings)
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := h.Settings.UpdateSettings(r.Context(), services.Settings{
		BaseURL:       req.BaseURL,
		APIBaseURL:    req.APIBaseURL,
		DefaultSeason: req.DefaultSeason,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}
