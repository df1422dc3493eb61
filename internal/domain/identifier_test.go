package domain

import "testing"

func TestValidTeamIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ENG", true},
		{"AB", true},
		{"ABCDE", true},
		{"A", false},
		{"ABCDEF", false},
		{"eng", false},
		{"EN1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ValidTeamIdentifier(tt.in); got != tt.want {
				t.Errorf("ValidTeamIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidIssueIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ENG-1", true},
		{"DESGN-1042", true},
		{"ENG-", false},
		{"ENG1", false},
		{"eng-1", false},
		{"ENG-1a", false},
		{"ENGINEERING-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ValidIssueIdentifier(tt.in); got != tt.want {
				t.Errorf("ValidIssueIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatIssueIdentifier(t *testing.T) {
	if got := FormatIssueIdentifier("ENG", 42); got != "ENG-42" {
		t.Errorf("FormatIssueIdentifier() = %q, want ENG-42", got)
	}
}

func TestStateTypeValid(t *testing.T) {
	for _, st := range StateTypes {
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if StateType("paused").Valid() {
		t.Error("paused should not be valid")
	}
}

func TestDefaultWorkflowStatesStartWithBacklog(t *testing.T) {
	if DefaultWorkflowStates[0].Type != StateTypeBacklog {
		t.Errorf("first default state = %s, want backlog", DefaultWorkflowStates[0].Type)
	}
	seen := map[string]bool{}
	for _, s := range DefaultWorkflowStates {
		if seen[s.Name] {
			t.Errorf("duplicate default state %q", s.Name)
		}
		seen[s.Name] = true
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleOwner, RoleAdmin, RoleMember} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Role("guest").Valid() {
		t.Error("guest should not be valid")
	}
}
