package chi

import (
	"time"

	"github.com/kailas-cloud/symptodex/internal/domain/condition"
	"github.com/kailas-cloud/symptodex/internal/domain/diagnosis/result"
	diagnosisuc "github.com/kailas-cloud/symptodex/internal/usecase/diagnosis"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest            ErrorCode = "bad_request"
	ErrorCodeUnauthorized          ErrorCode = "unauthorized"
	ErrorCodeValidationFailed      ErrorCode = "validation_failed"
	ErrorCodeConditionNotFound     ErrorCode = "condition_not_found"
	ErrorCodeInvalidCatalog        ErrorCode = "invalid_catalog"
	ErrorCodeModelNotReady         ErrorCode = "model_not_ready"
	ErrorCodeExtractionUnavailable ErrorCode = "extraction_unavailable"
	ErrorCodeExtractionFailed      ErrorCode = "extraction_provider_error"
	ErrorCodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DiagnoseRequest is the body of POST /api/v1/diagnoses.
type DiagnoseRequest struct {
	Symptoms    []string `json:"symptoms"`
	Description *string  `json:"description,omitempty"`
	Age         *int     `json:"age,omitempty"`
	Gender      *string  `json:"gender,omitempty"`
}

// DiagnosisItem is one ranked condition.
type DiagnosisItem struct {
	ConditionID     string   `json:"condition_id"`
	ConditionName   string   `json:"condition_name"`
	Confidence      int      `json:"confidence"`
	Urgency         string   `json:"urgency"`
	Specialist      string   `json:"specialist"`
	MatchedSymptoms []string `json:"matched_symptoms"`
}

// DiagnoseResponse is the body returned for a diagnosis.
type DiagnoseResponse struct {
	AssessmentID            string          `json:"assessment_id"`
	ModelVersion            string          `json:"model_version"`
	Items                   []DiagnosisItem `json:"items"`
	Total                   int             `json:"total"`
	InsufficientInformation bool            `json:"insufficient_information"`
	Symptoms                []string        `json:"symptoms"`
}

// RuleResponse renders a demographic adjustment.
type RuleResponse struct {
	When  string  `json:"when"`
	Delta float64 `json:"delta"`
}

// ConditionResponse is one catalog entry.
type ConditionResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Urgency    string         `json:"urgency"`
	Specialist string         `json:"specialist"`
	Symptoms   []string       `json:"symptoms"`
	Rules      []RuleResponse `json:"rules,omitempty"`
}

// ConditionListResponse is a page of catalog entries.
type ConditionListResponse struct {
	Items      []ConditionResponse `json:"items"`
	Total      int                 `json:"total"`
	HasMore    bool                `json:"has_more"`
	NextCursor *string             `json:"next_cursor,omitempty"`
}

// ModelResponse describes the published model.
type ModelResponse struct {
	Version        string    `json:"version"`
	Source         string    `json:"source"`
	Conditions     int       `json:"conditions"`
	VocabularySize int       `json:"vocabulary_size"`
	BuiltAt        time.Time `json:"built_at"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func assessmentToResponse(a diagnosisuc.Assessment) DiagnoseResponse {
	items := make([]DiagnosisItem, len(a.Results))
	for i := range a.Results {
		items[i] = resultToItem(&a.Results[i])
	}
	symptoms := a.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return DiagnoseResponse{
		AssessmentID:            a.ID,
		ModelVersion:            a.ModelVersion,
		Items:                   items,
		Total:                   len(items),
		InsufficientInformation: a.InsufficientInformation(),
		Symptoms:                symptoms,
	}
}

func resultToItem(r *result.Result) DiagnosisItem {
	return DiagnosisItem{
		ConditionID:     r.ConditionID(),
		ConditionName:   r.Name(),
		Confidence:      r.Confidence(),
		Urgency:         string(r.Urgency()),
		Specialist:      r.Specialist(),
		MatchedSymptoms: r.MatchedSymptoms(),
	}
}

func conditionToResponse(c condition.Condition) ConditionResponse {
	var rules []RuleResponse
	for _, r := range c.Rules() {
		when := ""
		for i, p := range r.Predicates() {
			if i > 0 {
				when += "&"
			}
			when += p.String()
		}
		rules = append(rules, RuleResponse{When: when, Delta: r.Delta()})
	}
	return ConditionResponse{
		ID:         c.ID(),
		Name:       c.Name(),
		Urgency:    string(c.Urgency()),
		Specialist: c.Specialist(),
		Symptoms:   c.Symptoms(),
		Rules:      rules,
	}
}

func modelToResponse(m diagnosisuc.ModelInfo) ModelResponse {
	return ModelResponse{
		Version:        m.Version,
		Source:         m.Source,
		Conditions:     m.Conditions,
		VocabularySize: m.VocabularySize,
		BuiltAt:        m.BuiltAt.UTC(),
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
