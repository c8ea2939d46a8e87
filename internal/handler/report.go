package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/planmailer/internal/store"
)

type reportSender interface {
	SendReport(ctx context.Context, to, programName, organizationName, htmlContent string) error
}

type deliveryLister interface {
	Recent(ctx context.Context, limit int) ([]store.Delivery, error)
}

// ReportRequest is the payload accepted by POST /send-report.
type ReportRequest struct {
	Email            string `json:"email"`
	ProgramName      string `json:"programName"`
	OrganizationName string `json:"organizationName"`
	HTMLContent      string `json:"htmlContent"`
}

// firstMissingField checks the required fields in their fixed order and
// returns the name of the first one that is absent or empty.
func (r ReportRequest) firstMissingField() string {
	switch {
	case r.Email == "":
		return "email"
	case r.ProgramName == "":
		return "programName"
	case r.OrganizationName == "":
		return "organizationName"
	case r.HTMLContent == "":
		return "htmlContent"
	}
	return ""
}

// ReportHandler handles report delivery and the delivery log listing.
type ReportHandler struct {
	BaseHandler
	mailer     reportSender
	deliveries deliveryLister
}

func NewReportHandler(logger *slog.Logger, mailer reportSender, deliveries deliveryLister) *ReportHandler {
	return &ReportHandler{
		BaseHandler: BaseHandler{Logger: logger},
		mailer:      mailer,
		deliveries:  deliveries,
	}
}

// Send validates the request and dispatches one email with the HTML content
// attached. Delivery failures surface as 500 with the underlying message.
func (h *ReportHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if field := req.firstMissingField(); field != "" {
		h.errorResponse(w, r, http.StatusBadRequest, "Missing required field: "+field)
		return
	}

	if err := h.mailer.SendReport(r.Context(), req.Email, req.ProgramName, req.OrganizationName, req.HTMLContent); err != nil {
		h.logError(r, err)
		h.errorResponse(w, r, http.StatusInternalServerError, "Failed to send email: "+err.Error())
		return
	}

	_ = h.writeJSON(w, http.StatusOK, envelope{
		"success":   true,
		"message":   "Email sent successfully to " + req.Email,
		"timestamp": time.Now().Format(time.RFC3339),
	}, nil)
}

// Deliveries lists recent delivery attempts, newest first.
func (h *ReportHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	deliveries, err := h.deliveries.Recent(r.Context(), limit)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	if deliveries == nil {
		deliveries = []store.Delivery{}
	}

	_ = h.writeJSON(w, http.StatusOK, envelope{"deliveries": deliveries}, nil)
}
