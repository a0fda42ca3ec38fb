package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/symptodex/internal/catalog"
	"github.com/kailas-cloud/symptodex/internal/domain"
	diagnosisuc "github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
	healthuc "github.com/kailas-cloud/symptodex/internal/usecase/health"
)

// --- Mocks ---

type mockSource struct {
	inner catalog.EmbeddedSource
	err   error
}

func (m *mockSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.inner.Load(ctx)
}

func (m *mockSource) Name() string { return "mock" }

type mockExtractor struct {
	phrases []string
	err     error
}

func (m *mockExtractor) Extract(_ context.Context, _ string) ([]string, error) {
	return m.phrases, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Helpers ---

type testEnv struct {
	router http.Handler
	svc    *diagnosisuc.Service
	source *mockSource
}

func newTestEnv(t *testing.T, ready bool) *testEnv {
	t.Helper()
	src := &mockSource{}
	svc := diagnosisuc.New(src, diagnosisuc.DefaultOptions(), nil)
	if ready {
		if _, err := svc.Reload(context.Background()); err != nil {
			t.Fatalf("Reload: %v", err)
		}
	}
	return newTestEnvWith(svc, src, healthuc.New(svc))
}

func newTestEnvWith(svc *diagnosisuc.Service, src *mockSource, health *healthuc.Service) *testEnv {
	r := gochi.NewRouter()
	NewServer(svc, health, nil).Routes(r)
	return &testEnv{router: r, svc: svc, source: src}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body=%q)", err, rr.Body.String())
	}
	return v
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// --- Tests ---

func TestDiagnose_Influenza(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{
		Symptoms: []string{"high fever", "body ache", "fatigue", "cough"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body=%s", rr.Code, rr.Body.String())
	}
	resp := decode[DiagnoseResponse](t, rr)

	if resp.AssessmentID == "" {
		t.Error("expected assessment id")
	}
	if resp.ModelVersion == "" {
		t.Error("expected model version")
	}
	if resp.InsufficientInformation {
		t.Error("expected matches")
	}
	if resp.Total != len(resp.Items) || resp.Total == 0 {
		t.Fatalf("total=%d items=%d", resp.Total, len(resp.Items))
	}
	top := resp.Items[0]
	if top.ConditionID != "influenza" {
		t.Errorf("top condition: got %s, want influenza", top.ConditionID)
	}
	if top.Confidence != 53 {
		t.Errorf("confidence: got %d, want 53", top.Confidence)
	}
	if top.Urgency != "doctor_soon" {
		t.Errorf("urgency: got %s", top.Urgency)
	}
	if len(top.MatchedSymptoms) != 4 {
		t.Errorf("matched symptoms: got %v", top.MatchedSymptoms)
	}
}

func TestDiagnose_Demographics(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{
		Symptoms: []string{"burning urination", "pelvic pain"},
		Gender:   strPtr("female"),
		Age:      intPtr(30),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decode[DiagnoseResponse](t, rr)
	if len(resp.Items) == 0 || resp.Items[0].ConditionID != "uti" {
		t.Fatalf("expected uti first, got %+v", resp.Items)
	}
	if resp.Items[0].Confidence != 66 {
		t.Errorf("confidence: got %d, want 66", resp.Items[0].Confidence)
	}
}

func TestDiagnose_EmptySymptoms(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{Symptoms: []string{}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	body := rr.Body.String()
	resp := decode[DiagnoseResponse](t, rr)
	if !resp.InsufficientInformation {
		t.Error("expected insufficient_information")
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("items: got %v, want []", resp.Items)
	}
	if !strings.Contains(body, `"items":[]`) {
		t.Errorf("items must serialize as an empty array: %s", body)
	}
}

func TestDiagnose_BadRequests(t *testing.T) {
	env := newTestEnv(t, true)

	tooMany := make([]string, 51)
	for i := range tooMany {
		tooMany[i] = "cough"
	}

	tests := []struct {
		name string
		body any
		code ErrorCode
	}{
		{"malformed json", `{"symptoms": [`, ErrorCodeBadRequest},
		{"unknown field", `{"symptomz": ["cough"]}`, ErrorCodeBadRequest},
		{"too many symptoms", DiagnoseRequest{Symptoms: tooMany}, ErrorCodeValidationFailed},
		{"symptom too long", DiagnoseRequest{Symptoms: []string{strings.Repeat("a", 201)}}, ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rr.Code)
			}
			if got := decode[ErrorResponse](t, rr).Code; got != tt.code {
				t.Errorf("code: got %s, want %s", got, tt.code)
			}
		})
	}
}

func TestDiagnose_ModelNotReady(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{Symptoms: []string{"cough"}})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", rr.Code)
	}
	if got := decode[ErrorResponse](t, rr).Code; got != ErrorCodeModelNotReady {
		t.Errorf("code: got %s", got)
	}
}

func TestDiagnose_Description(t *testing.T) {
	t.Run("no extractor", func(t *testing.T) {
		env := newTestEnv(t, true)
		rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{
			Description: strPtr("my head is pounding"),
		})
		if rr.Code != http.StatusNotImplemented {
			t.Fatalf("status: got %d, want 501", rr.Code)
		}
	})

	t.Run("extractor failure", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.svc.WithExtractor(&mockExtractor{err: errors.Join(domain.ErrExtractionFailed, errors.New("boom"))})
		rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{
			Description: strPtr("my head is pounding"),
		})
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("status: got %d, want 502", rr.Code)
		}
		if msg := decode[ErrorResponse](t, rr).Message; strings.Contains(msg, "boom") {
			t.Errorf("provider detail leaked: %q", msg)
		}
	})

	t.Run("extracted phrases are scored", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.svc.WithExtractor(&mockExtractor{phrases: []string{"facial drooping", "arm weakness", "speech difficulty"}})
		rr := env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{
			Description: strPtr("my face droops and I can't lift my arm"),
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		resp := decode[DiagnoseResponse](t, rr)
		if len(resp.Items) == 0 || resp.Items[0].ConditionID != "stroke" {
			t.Fatalf("expected stroke first, got %+v", resp.Items)
		}
		if len(resp.Symptoms) != 3 {
			t.Errorf("symptoms: got %v", resp.Symptoms)
		}
	})
}

func TestListConditions(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodGet, "/api/v1/conditions?limit=10", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	page := decode[ConditionListResponse](t, rr)
	if len(page.Items) != 10 {
		t.Fatalf("items: got %d, want 10", len(page.Items))
	}
	if !page.HasMore || page.NextCursor == nil {
		t.Fatal("expected another page")
	}
	if page.Items[0].ID != "influenza" {
		t.Errorf("first item: got %s, want catalog order", page.Items[0].ID)
	}

	seen := len(page.Items)
	cursor := *page.NextCursor
	for cursor != "" {
		rr = env.do(t, http.MethodGet, "/api/v1/conditions?limit=10&cursor="+cursor, nil)
		page = decode[ConditionListResponse](t, rr)
		seen += len(page.Items)
		cursor = ""
		if page.NextCursor != nil {
			cursor = *page.NextCursor
		}
	}
	if seen != page.Total {
		t.Errorf("walked %d items, total %d", seen, page.Total)
	}
}

func TestListConditions_Filters(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodGet, "/api/v1/conditions?urgency=emergency&limit=100", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	page := decode[ConditionListResponse](t, rr)
	if page.Total == 0 {
		t.Fatal("expected emergency conditions")
	}
	for _, c := range page.Items {
		if c.Urgency != "emergency" {
			t.Errorf("%s: urgency %s", c.ID, c.Urgency)
		}
	}

	rr = env.do(t, http.MethodGet, "/api/v1/conditions?specialist=neurologist&limit=100", nil)
	page = decode[ConditionListResponse](t, rr)
	for _, c := range page.Items {
		if !strings.EqualFold(c.Specialist, "neurologist") {
			t.Errorf("%s: specialist %s", c.ID, c.Specialist)
		}
	}
}

func TestListConditions_BadParams(t *testing.T) {
	env := newTestEnv(t, true)

	for _, q := range []string{"limit=abc", "limit=0", "cursor=-1", "cursor=x", "urgency=whenever"} {
		t.Run(q, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/api/v1/conditions?"+q, nil)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rr.Code)
			}
		})
	}
}

func TestGetCondition(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodGet, "/api/v1/conditions/influenza", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	c := decode[ConditionResponse](t, rr)
	if c.Name != "Influenza" || len(c.Symptoms) == 0 {
		t.Errorf("unexpected condition: %+v", c)
	}
	if len(c.Rules) != 1 || c.Rules[0].When != "age>65" {
		t.Errorf("rules: got %+v", c.Rules)
	}

	rr = env.do(t, http.MethodGet, "/api/v1/conditions/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing: got %d, want 404", rr.Code)
	}
	if got := decode[ErrorResponse](t, rr).Code; got != ErrorCodeConditionNotFound {
		t.Errorf("code: got %s", got)
	}
}

func TestModelAndRebuild(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodGet, "/api/v1/model", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("model status: got %d", rr.Code)
	}
	before := decode[ModelResponse](t, rr)
	if before.Version == "" || before.Conditions == 0 || before.VocabularySize == 0 {
		t.Errorf("unexpected model: %+v", before)
	}
	if before.Source != "mock" {
		t.Errorf("source: got %q", before.Source)
	}

	rr = env.do(t, http.MethodPost, "/api/v1/model/rebuild", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("rebuild status: got %d", rr.Code)
	}
	after := decode[ModelResponse](t, rr)
	if after.Version != before.Version {
		t.Errorf("same catalog must keep version: %s != %s", after.Version, before.Version)
	}

	env.source.err = domain.NewCatalogError("broken", "no symptoms")
	rr = env.do(t, http.MethodPost, "/api/v1/model/rebuild", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("faulty rebuild: got %d, want 400", rr.Code)
	}
	if got := decode[ErrorResponse](t, rr).Code; got != ErrorCodeInvalidCatalog {
		t.Errorf("code: got %s", got)
	}

	rr = env.do(t, http.MethodPost, "/api/v1/diagnoses", DiagnoseRequest{Symptoms: []string{"cough"}})
	if rr.Code != http.StatusOK {
		t.Errorf("previous model must keep serving, got %d", rr.Code)
	}
}

func TestModel_NotReady(t *testing.T) {
	env := newTestEnv(t, false)
	rr := env.do(t, http.MethodGet, "/api/v1/model", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		cacheErr   error
		wantCode   int
		wantStatus string
	}{
		{"healthy", true, nil, http.StatusOK, "ok"},
		{"cache down", true, errors.New("conn refused"), http.StatusServiceUnavailable, "degraded"},
		{"no model", false, nil, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{}
			svc := diagnosisuc.New(src, diagnosisuc.DefaultOptions(), nil)
			if tt.ready {
				if _, err := svc.Reload(context.Background()); err != nil {
					t.Fatalf("Reload: %v", err)
				}
			}
			env := newTestEnvWith(svc, src, healthuc.New(svc).WithCache(&mockPinger{err: tt.cacheErr}))

			rr := env.do(t, http.MethodGet, "/health", nil)
			if rr.Code != tt.wantCode {
				t.Errorf("status code: got %d, want %d", rr.Code, tt.wantCode)
			}
			resp := decode[HealthResponse](t, rr)
			if resp.Status != tt.wantStatus {
				t.Errorf("status: got %s, want %s", resp.Status, tt.wantStatus)
			}
			if _, ok := resp.Checks["cache"]; !ok {
				t.Error("expected cache check")
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodGet, "/api/v1/nothing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
	rr = env.do(t, http.MethodDelete, "/api/v1/model", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}

func TestHandleDomainError_Internal(t *testing.T) {
	s := NewServer(nil, nil, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/model", http.NoBody)
	s.handleDomainError(rr, req, errors.New("redis: connection reset by 10.0.0.4"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Message != "internal error" || resp.Code != ErrorCodeInternalError {
		t.Errorf("unexpected body: %+v", resp)
	}
}
