package domain

import "testing"

func TestServiceName_IsKnown(t *testing.T) {
	tests := []struct {
		name ServiceName
		want bool
	}{
		{ServiceAuth, true},
		{ServiceProject, true},
		{ServiceFiles, true},
		{ServiceReport, true},
		{ServiceEvaluation, true},
		{ServiceNotif, true},
		{ServicePlagiarism, true},
		{"group", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			if got := tt.name.IsKnown(); got != tt.want {
				t.Errorf("IsKnown(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestServiceNames_NoDuplicates(t *testing.T) {
	seen := make(map[ServiceName]bool)
	for _, n := range ServiceNames() {
		if seen[n] {
			t.Errorf("duplicate service name %q", n)
		}
		seen[n] = true
	}
	if len(seen) != 7 {
		t.Errorf("expected 7 service names, got %d", len(seen))
	}
}
