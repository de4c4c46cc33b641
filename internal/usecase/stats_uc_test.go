// File: internal/usecase/stats_uc_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"life-story-companion/internal/domain/model"
)

func TestSafetyTotals(t *testing.T) {
	audit := newMemInterventionRepo()
	ctx := context.Background()
	for _, category := range []model.SafetyCategory{
		model.CategoryMedical, model.CategoryMedical, model.CategoryCrisis,
	} {
		if err := audit.Append(ctx, model.NewSafetyIntervention(uuid.NewString(), category)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	uc := NewStatsUseCase(audit)
	totals, err := uc.SafetyTotals(ctx)
	if err != nil {
		t.Fatalf("SafetyTotals: %v", err)
	}

	want := map[model.SafetyCategory]int{
		model.CategoryMedical:       2,
		model.CategoryLegal:         0,
		model.CategoryCrisis:        1,
		model.CategoryInappropriate: 0,
	}
	if len(totals) != len(want) {
		t.Fatalf("totals has %d categories, want %d (zero counts included)", len(totals), len(want))
	}
	for category, count := range want {
		if totals[category] != count {
			t.Errorf("totals[%s] = %d, want %d", category, totals[category], count)
		}
	}
}
