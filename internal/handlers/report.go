package handlers

import (
	"net/http"
	"strings"

	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// ReportHandler provides HTTP handlers for the moderation workflow.
type ReportHandler struct {
	reports *services.ReportService
	log     logging.Logger
}

func NewReportHandler(reports *services.ReportService, log logging.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// ReportRouter registers moderation routes. Submission is open but
// throttled; listing and actions require adminOnly, which must already
// include the authentication gate.
func ReportRouter(r chi.Router, handler *ReportHandler, adminOnly, throttle func(http.Handler) http.Handler) {
	r.Get("/report/{commentID}", handler.GetReport)
	r.With(throttle).Post("/reports", handler.SubmitReport)
	r.With(adminOnly).Get("/reports", handler.ListReports)
	r.With(adminOnly).Patch("/reports/action", handler.ApplyAction)
}

// GetReport returns the report filed against a comment.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.GetByComment(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		writeServiceError(w, r, h.log, err, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.reports.Submit(r.Context(), types.Report{
		CommentID:      strings.TrimSpace(req.CommentID),
		CommentText:    req.CommentText,
		CommenterEmail: req.CommenterEmail,
		ReporterEmail:  req.ReporterEmail,
		Feedback:       req.Feedback,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "comment not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reports))
}

func (h *ReportHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var req services.ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Action = types.ModerationAction(strings.TrimSpace(string(req.Action)))

	actor, _ := identityFromContext(r.Context())
	if err := h.reports.Apply(r.Context(), actor, req); err != nil {
		writeServiceError(w, r, h.log, err, "report target not found")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

type SubmitReportRequest struct {
	CommentID      string `json:"commentId"`
	CommentText    string `json:"commentText"`
	CommenterEmail string `json:"commenterEmail"`
	ReporterEmail  string `json:"reporterEmail"`
	Feedback       string `json:"feedback"`
}
