package routes

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUpdateStageInputStructural(t *testing.T) {
	str := func(s string) *string { return &s }
	boolp := func(b bool) *bool { return &b }
	now := time.Now()

	cases := []struct {
		name  string
		input UpdateStageInput
		want  bool
	}{
		{"empty patch", UpdateStageInput{}, false},
		{"status only", UpdateStageInput{Status: str("in_progress")}, false},
		{"rename", UpdateStageInput{Stage: str("Searches Ordered")}, true},
		{"description", UpdateStageInput{Description: str("Local authority searches")}, true},
		{"responsible role", UpdateStageInput{ResponsibleRole: str("buyer_solicitor")}, true},
		{"start date", UpdateStageInput{StartDate: &now}, true},
		{"due date", UpdateStageInput{DueDate: &now}, true},
		{"draft flag", UpdateStageInput{IsDraft: boolp(false)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.input.structural(); got != tc.want {
				t.Errorf("structural() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpdateStageInputDecodesDraftFlag(t *testing.T) {
	var input UpdateStageInput
	if err := json.Unmarshal([]byte(`{"is_draft":false,"status":"pending"}`), &input); err != nil {
		t.Fatalf("decoding patch: %v", err)
	}
	if input.IsDraft == nil || *input.IsDraft {
		t.Errorf("is_draft not decoded: %v", input.IsDraft)
	}
	if !input.structural() {
		t.Error("draft change should require an unlocked timeline")
	}
}
