package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
)

func serve(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		RespondAppError(c, err)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return rec
}

func TestRespondAppErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperr.NewNotFound("topic"), http.StatusNotFound, "not_found"},
		{"provider down", apperr.NewProviderUnavailable(errors.New("timeout")), http.StatusServiceUnavailable, "provider_unavailable"},
		{"provider contract", apperr.NewProviderContract("2 topics"), http.StatusBadGateway, "provider_error"},
		{"internal", apperr.Internal(errors.New("db down")), http.StatusInternalServerError, "internal_error"},
		{"unclassified", errors.New("whatever"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, tc.err)
			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			var body ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tc.wantCode {
				t.Fatalf("unexpected code: got=%q want=%q", body.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestRespondAppErrorValidationListsFields(t *testing.T) {
	err := apperr.NewValidation(
		apperr.FieldViolation{Field: "title", Message: "is required"},
		apperr.FieldViolation{Field: "practice_links[0].url", Message: "must be a valid url"},
	)
	rec := serve(t, err)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Error.Fields) != 2 {
		t.Fatalf("unexpected field count: got=%d want=2", len(body.Error.Fields))
	}
	if body.Error.Fields[1].Field != "practice_links[0].url" {
		t.Fatalf("unexpected field path: got=%q", body.Error.Fields[1].Field)
	}
}

func TestRespondAppErrorQuotaCarriesRetryHint(t *testing.T) {
	rec := serve(t, apperr.NewQuotaExceeded(90*time.Second))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "90" {
		t.Fatalf("unexpected Retry-After header: got=%q want=%q", got, "90")
	}
	var body ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.RetryAfter == nil || *body.Error.RetryAfter != 90 {
		t.Fatalf("unexpected retry_after_seconds: got=%v", body.Error.RetryAfter)
	}
}

func TestInternalCauseIsNotEchoed(t *testing.T) {
	rec := serve(t, apperr.Internal(errors.New("pq: password authentication failed")))
	if got := rec.Body.String(); strings.Contains(got, "password") {
		t.Fatalf("internal cause leaked to client: %s", got)
	}
}
