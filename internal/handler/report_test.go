package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/planmailer/internal/store"
)

type sentReport struct {
	to               string
	programName      string
	organizationName string
	htmlContent      string
}

type stubMailer struct {
	mu    sync.Mutex
	calls []sentReport
	err   error
}

func (s *stubMailer) SendReport(ctx context.Context, to, programName, organizationName, htmlContent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sentReport{to, programName, organizationName, htmlContent})
	return s.err
}

type stubDeliveries struct {
	rows []store.Delivery
	err  error
}

func (s *stubDeliveries) Recent(ctx context.Context, limit int) ([]store.Delivery, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func newTestHandler(m *stubMailer, d *stubDeliveries) *ReportHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReportHandler(logger, m, d)
}

func postReport(h *ReportHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/send-report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Send(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rr.Body.String())
	}
	return got
}

func TestSendReportMissingFields(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantField string
	}{
		{"all missing", `{}`, "email"},
		{"empty email", `{"email":"","programName":"Youth","organizationName":"Acme","htmlContent":"<p>x</p>"}`, "email"},
		{"missing programName", `{"email":"u@example.org","organizationName":"Acme","htmlContent":"<p>x</p>"}`, "programName"},
		{"empty organizationName", `{"email":"u@example.org","programName":"Youth","organizationName":"","htmlContent":"<p>x</p>"}`, "organizationName"},
		{"missing htmlContent", `{"email":"u@example.org","programName":"Youth","organizationName":"Acme"}`, "htmlContent"},
		{"email checked before later fields", `{"programName":"Youth"}`, "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &stubMailer{}
			rr := postReport(newTestHandler(m, &stubDeliveries{}), tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}

			got := decodeBody(t, rr)
			want := "Missing required field: " + tc.wantField
			if got["error"] != want {
				t.Errorf("error = %q, want %q", got["error"], want)
			}
			if len(m.calls) != 0 {
				t.Errorf("mailer invoked %d times for a rejected request", len(m.calls))
			}
		})
	}
}

func TestSendReportSuccess(t *testing.T) {
	m := &stubMailer{}
	html := "<html><body>Plan</body></html>"
	body := fmt.Sprintf(`{"email":"user@example.org","programName":"Youth","organizationName":"Acme","htmlContent":%q}`, html)

	rr := postReport(newTestHandler(m, &stubDeliveries{}), body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\n%s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	got := decodeBody(t, rr)
	if got["success"] != true {
		t.Errorf("success = %v, want true", got["success"])
	}
	if got["message"] != "Email sent successfully to user@example.org" {
		t.Errorf("unexpected message: %q", got["message"])
	}
	ts, _ := got["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}

	if len(m.calls) != 1 {
		t.Fatalf("mailer invoked %d times, want 1", len(m.calls))
	}
	call := m.calls[0]
	if call.to != "user@example.org" || call.programName != "Youth" || call.organizationName != "Acme" {
		t.Errorf("unexpected call: %+v", call)
	}
	if call.htmlContent != html {
		t.Errorf("htmlContent = %q, want %q", call.htmlContent, html)
	}
}

func TestSendReportMailerError(t *testing.T) {
	m := &stubMailer{err: fmt.Errorf("SMTP timeout")}
	body := `{"email":"user@example.org","programName":"Youth","organizationName":"Acme","htmlContent":"<p>x</p>"}`

	rr := postReport(newTestHandler(m, &stubDeliveries{}), body)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}

	got := decodeBody(t, rr)
	if got["error"] != "Failed to send email: SMTP timeout" {
		t.Errorf("error = %q, want %q", got["error"], "Failed to send email: SMTP timeout")
	}
}

func TestSendReportMalformedJSON(t *testing.T) {
	m := &stubMailer{}
	rr := postReport(newTestHandler(m, &stubDeliveries{}), `{"email":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if len(m.calls) != 0 {
		t.Errorf("mailer invoked for malformed JSON")
	}
}

func TestSendReportConcurrentRequests(t *testing.T) {
	m := &stubMailer{}
	h := newTestHandler(m, &stubDeliveries{})

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan string, n)

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			email := fmt.Sprintf("user%d@example.org", i)
			body := fmt.Sprintf(`{"email":%q,"programName":"Program %d","organizationName":"Acme","htmlContent":"<p>%d</p>"}`, email, i, i)

			rr := postReport(h, body)
			if rr.Code != http.StatusOK {
				errs <- fmt.Sprintf("request %d: status %d", i, rr.Code)
				return
			}
			var got map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				errs <- fmt.Sprintf("request %d: bad JSON: %v", i, err)
				return
			}
			if got["message"] != "Email sent successfully to "+email {
				errs <- fmt.Sprintf("request %d: cross-attributed message %q", i, got["message"])
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}

	if len(m.calls) != n {
		t.Errorf("mailer invoked %d times, want %d", len(m.calls), n)
	}
	seen := make(map[string]bool, n)
	for _, call := range m.calls {
		if seen[call.to] {
			t.Errorf("duplicate send to %s", call.to)
		}
		seen[call.to] = true
	}
}

func TestDeliveriesListing(t *testing.T) {
	rows := []store.Delivery{
		{ID: 2, Recipient: "b@example.org", Subject: "Evaluation Plan for B - Org", Status: "sent", SentAt: time.Now()},
		{ID: 1, Recipient: "a@example.org", Subject: "Evaluation Plan for A - Org", Status: "failed", SentAt: time.Now().Add(-time.Hour)},
	}
	h := newTestHandler(&stubMailer{}, &stubDeliveries{rows: rows})

	req := httptest.NewRequest(http.MethodGet, "/deliveries", nil)
	rr := httptest.NewRecorder()
	h.Deliveries(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var got struct {
		Deliveries []store.Delivery `json:"deliveries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if len(got.Deliveries) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(got.Deliveries))
	}
	if got.Deliveries[0].Recipient != "b@example.org" {
		t.Errorf("first delivery = %q, want newest first", got.Deliveries[0].Recipient)
	}
}

func TestDeliveriesLimit(t *testing.T) {
	rows := make([]store.Delivery, 5)
	for i := range rows {
		rows[i] = store.Delivery{ID: int64(i), Recipient: fmt.Sprintf("u%d@example.org", i)}
	}
	h := newTestHandler(&stubMailer{}, &stubDeliveries{rows: rows})

	req := httptest.NewRequest(http.MethodGet, "/deliveries?limit=2", nil)
	rr := httptest.NewRecorder()
	h.Deliveries(rr, req)

	var got struct {
		Deliveries []store.Delivery `json:"deliveries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if len(got.Deliveries) != 2 {
		t.Errorf("got %d deliveries, want 2", len(got.Deliveries))
	}
}
