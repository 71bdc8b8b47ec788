package matcher

import (
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{name: "valid glob pattern", pattern: "*.csv", patternType: Glob, wantType: Glob},
		{name: "valid regex pattern", pattern: "^raw/.*", patternType: Regex, wantType: Regex},
		{name: "invalid regex pattern", pattern: "(unclosed", patternType: Regex, wantErr: true},
		{name: "invalid glob pattern", pattern: "[unclosed", patternType: Glob, wantErr: true},
		{name: "auto detect glob", pattern: "raw/*.json", patternType: Auto, wantType: Glob},
		{name: "auto detect regex", pattern: `^report-\d+\.csv$`, patternType: Auto, wantType: Regex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && m.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", m.Type(), tt.wantType)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"*.csv", "report-1.csv", true},
		{"*.csv", "raw/report-1.csv", false},
		{"raw/*", "raw/report-1.csv", true},
		{"report-?.csv", "report-1.csv", true},
		{`^report-\d+\.csv$`, "report-12.csv", true},
		{`^report-\d+\.csv$`, "report-x.csv", false},
		{"(tmp|scratch)/", "scratch/a.txt", true},
	}

	for _, tt := range tests {
		m, err := New(Auto, tt.pattern)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.pattern, err)
		}
		if got := m.Match(tt.input); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	f, err := NewFilter([]string{"*.csv", "raw/*"}, []string{"*_tmp.csv"})
	if err != nil {
		t.Fatalf("NewFilter() failed: %v", err)
	}

	tests := map[string]bool{
		"report.csv":      true,
		"report_tmp.csv":  false,
		"raw/events.json": true,
		"events.json":     false,
	}
	for name, want := range tests {
		if got := f.Match(name); got != want {
			t.Errorf("Match(%q) = %v, want %v", name, got, want)
		}
	}

	var empty *Filter
	if !empty.Match("anything") {
		t.Error("nil filter should match everything")
	}

	if _, err := NewFilter(nil, []string{"[bad"}); err == nil {
		t.Error("NewFilter() should reject invalid patterns")
	}
}
