package services

import (
	"errors"
	"slices"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestScopeFilterNarrow(t *testing.T) {
	unitDepts := []int{4, 7, 9}

	tests := []struct {
		name    string
		filter  ScopeFilter
		want    []int
		wantErr error
	}{
		{"no department keeps all", ScopeFilter{UnitID: 1}, []int{4, 7, 9}, nil},
		{"department in unit", ScopeFilter{UnitID: 1, DepartmentID: intPtr(7)}, []int{7}, nil},
		{"department zero is explicit", ScopeFilter{UnitID: 1, DepartmentID: intPtr(0)}, nil, ErrDepartmentNotInScope},
		{"foreign department", ScopeFilter{UnitID: 1, DepartmentID: intPtr(12)}, nil, ErrDepartmentNotInScope},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Narrow(unitDepts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLowQualityErrorMatchesSentinel(t *testing.T) {
	err := error(&LowQualityError{Quality: 0.1, Minimum: 0.3})
	if !errors.Is(err, ErrLowQuality) {
		t.Fatal("expected LowQualityError to match ErrLowQuality")
	}
	var lq *LowQualityError
	if !errors.As(err, &lq) || lq.Quality != 0.1 {
		t.Fatalf("errors.As failed: %v", err)
	}
}

func TestDetectionWithoutFeature(t *testing.T) {
	d := DetectionResult{Feature: []float64{1, 2}, Quality: 0.8}
	stripped := d.WithoutFeature()
	if stripped.Feature != nil {
		t.Error("feature should be stripped")
	}
	if d.Feature == nil {
		t.Error("original should be untouched")
	}
}
