package domain

import (
	"encoding/json"
	"testing"
)

type patchBody struct {
	Description Optional[string] `json:"description"`
	Estimate    Optional[int]    `json:"estimate"`
}

func TestOptionalUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *string
	}{
		{"absent", `{}`, false, nil},
		{"null clears", `{"description":null}`, true, nil},
		{"value", `{"description":"hello"}`, true, strPtr("hello")},
		{"empty string", `{"description":""}`, true, strPtr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body patchBody
			if err := json.Unmarshal([]byte(tt.body), &body); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if body.Description.Set != tt.wantSet {
				t.Errorf("Set = %v, want %v", body.Description.Set, tt.wantSet)
			}
			switch {
			case tt.wantValue == nil && body.Description.Value != nil:
				t.Errorf("Value = %q, want nil", *body.Description.Value)
			case tt.wantValue != nil && (body.Description.Value == nil || *body.Description.Value != *tt.wantValue):
				t.Errorf("Value = %v, want %q", body.Description.Value, *tt.wantValue)
			}
			if body.Estimate.Set {
				t.Error("Estimate should stay unset")
			}
		})
	}
}

func TestOptionalUnmarshal_TypeMismatch(t *testing.T) {
	var body patchBody
	if err := json.Unmarshal([]byte(`{"estimate":"three"}`), &body); err == nil {
		t.Error("expected an error for a string estimate")
	}
}

func TestSomeAndNull(t *testing.T) {
	some := Some(3)
	if !some.Set || some.Value == nil || *some.Value != 3 {
		t.Errorf("Some(3) = %+v", some)
	}
	null := Null[int]()
	if !null.Set || null.Value != nil {
		t.Errorf("Null() = %+v", null)
	}
}

func strPtr(s string) *string { return &s }
