package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"learnhub/internal/http/middleware"
	"learnhub/internal/service"
	"learnhub/internal/ws"
)

// ProgressHandler serves lesson progress reads and writes.
type ProgressHandler struct {
	progress  *service.ProgressService
	dashboard *ws.Hub
	logger    *zap.Logger
}

// NewProgressHandler builds handler.
func NewProgressHandler(progress *service.ProgressService, dashboard *ws.Hub, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress:  progress,
		dashboard: dashboard,
		logger:    logger,
	}
}

type timeSpentRequest struct {
	TimeSpentSeconds int `json:"time_spent_seconds"`
}

// MarkCompleted handles POST .../lessons/{lessonID}/complete.
func (h *ProgressHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	userID, courseID, lessonID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req timeSpentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body optional
	}

	rec, err := h.progress.MarkCompleted(r.Context(), userID, courseID, lessonID, req.TimeSpentSeconds)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.dashboard.Publish(userID, ws.Event{
		Type:    ws.EventLessonProgress,
		Payload: rec,
	})
	writeJSON(w, http.StatusOK, rec)
}

// UpdateTimeSpent handles POST .../lessons/{lessonID}/time-spent.
func (h *ProgressHandler) UpdateTimeSpent(w http.ResponseWriter, r *http.Request) {
	userID, courseID, lessonID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req timeSpentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	rec, err := h.progress.UpdateTimeSpent(r.Context(), userID, courseID, lessonID, req.TimeSpentSeconds)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// LessonStatus handles GET .../lessons/{lessonID}/progress.
func (h *ProgressHandler) LessonStatus(w http.ResponseWriter, r *http.Request) {
	userID, courseID, lessonID, ok := h.identify(w, r)
	if !ok {
		return
	}

	rec, err := h.progress.GetStatus(r.Context(), userID, courseID, lessonID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// CourseProgress handles GET /api/courses/{courseID}/progress.
func (h *ProgressHandler) CourseProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	courseID, err := strconv.ParseInt(r.PathValue("courseID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	rollup, err := h.progress.CourseProgress(r.Context(), userID, courseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rollup)
}

func (h *ProgressHandler) identify(w http.ResponseWriter, r *http.Request) (userID, courseID, lessonID int64, ok bool) {
	userID, found := middleware.UserIDFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return 0, 0, 0, false
	}

	courseID, err := strconv.ParseInt(r.PathValue("courseID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return 0, 0, 0, false
	}
	lessonID, err = strconv.ParseInt(r.PathValue("lessonID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lesson id")
		return 0, 0, 0, false
	}
	return userID, courseID, lessonID, true
}
