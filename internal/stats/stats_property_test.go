package stats

import (
	"testing"

	"github.com/scentswap/tradepost/internal/models"
	"pgregory.net/rapid"
)

func genEvaluations(rt *rapid.T) []models.Evaluation {
	n := rapid.IntRange(0, 50).Draw(rt, "n")
	evals := make([]models.Evaluation, 0, n)
	for i := 0; i < n; i++ {
		e := models.Evaluation{
			NoShow:        rapid.Bool().Draw(rt, "noShow"),
			OverallRating: rapid.IntRange(0, 5).Draw(rt, "overall"),
		}
		if rapid.Bool().Draw(rt, "hasResponsiveness") {
			v := rapid.IntRange(0, 5).Draw(rt, "responsiveness")
			e.Responsiveness = &v
		}
		if rapid.Bool().Draw(rt, "hasDemeanor") {
			v := rapid.IntRange(0, 5).Draw(rt, "demeanor")
			e.Demeanor = &v
		}
		evals = append(evals, e)
	}
	return evals
}

func TestCompute_Empty(t *testing.T) {
	agg := Compute(nil)

	if agg.TotalEvaluations != 0 {
		t.Errorf("Expected 0 total evaluations, got %d", agg.TotalEvaluations)
	}
	if agg.AvgOverallRating != nil || agg.MinOverallRating != nil || agg.MaxOverallRating != nil {
		t.Error("Expected nil average/min/max for empty input")
	}
	if agg.AvgResponsiveness != nil || agg.AvgDemeanor != nil {
		t.Error("Expected nil optional averages for empty input")
	}
}

func TestCompute_SingleEvaluation(t *testing.T) {
	resp := 4
	agg := Compute([]models.Evaluation{
		{NoShow: true, Responsiveness: &resp, OverallRating: 3},
	})

	if agg.TotalEvaluations != 1 || agg.TotalNoShow != 1 {
		t.Errorf("Expected totals (1, 1), got (%d, %d)", agg.TotalEvaluations, agg.TotalNoShow)
	}
	if agg.AvgOverallRating == nil || *agg.AvgOverallRating != 3.0 {
		t.Errorf("Expected overall average 3.0, got %v", agg.AvgOverallRating)
	}
	if agg.MinOverallRating == nil || *agg.MinOverallRating != 3 {
		t.Errorf("Expected min 3, got %v", agg.MinOverallRating)
	}
	if agg.MaxOverallRating == nil || *agg.MaxOverallRating != 3 {
		t.Errorf("Expected max 3, got %v", agg.MaxOverallRating)
	}
	if agg.AvgResponsiveness == nil || *agg.AvgResponsiveness != 4.0 {
		t.Errorf("Expected responsiveness average 4.0, got %v", agg.AvgResponsiveness)
	}
	if agg.AvgDemeanor != nil {
		t.Errorf("Expected nil demeanor average, got %v", agg.AvgDemeanor)
	}
	if agg.ThreeStars != 1 {
		t.Errorf("Expected one three-star entry, got %d", agg.ThreeStars)
	}
}

// TestProperty_Compute_TotalsConsistent tests the counting invariants of the
// aggregate fold.
// *For any* evaluation set, total counts SHALL equal the input length, star
// buckets SHALL sum to the number of ratings in 1..5, and no-show count SHALL
// never exceed the total.
func TestProperty_Compute_TotalsConsistent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		evals := genEvaluations(rt)
		agg := Compute(evals)

		if agg.TotalEvaluations != len(evals) {
			t.Fatalf("PROPERTY VIOLATION: TotalEvaluations = %d, want %d", agg.TotalEvaluations, len(evals))
		}

		rated := 0
		for _, e := range evals {
			if e.OverallRating >= 1 && e.OverallRating <= 5 {
				rated++
			}
		}
		starSum := agg.OneStars + agg.TwoStars + agg.ThreeStars + agg.FourStars + agg.FiveStars
		if starSum != rated {
			t.Fatalf("PROPERTY VIOLATION: star buckets sum to %d, want %d", starSum, rated)
		}

		if agg.TotalNoShow > agg.TotalEvaluations {
			t.Fatalf("PROPERTY VIOLATION: TotalNoShow %d exceeds total %d", agg.TotalNoShow, agg.TotalEvaluations)
		}
	})
}

// TestProperty_Compute_AverageBounds tests that every average lies between
// the observed minimum and maximum.
func TestProperty_Compute_AverageBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		evals := genEvaluations(rt)
		agg := Compute(evals)

		if len(evals) == 0 {
			if agg.AvgOverallRating != nil {
				t.Fatal("PROPERTY VIOLATION: average present with no evaluations")
			}
			return
		}

		if agg.AvgOverallRating == nil || agg.MinOverallRating == nil || agg.MaxOverallRating == nil {
			t.Fatal("PROPERTY VIOLATION: average/min/max missing with evaluations present")
		}

		min := float64(*agg.MinOverallRating)
		max := float64(*agg.MaxOverallRating)
		if *agg.AvgOverallRating < min || *agg.AvgOverallRating > max {
			t.Fatalf("PROPERTY VIOLATION: average %f outside [%f, %f]", *agg.AvgOverallRating, min, max)
		}

		if agg.AvgResponsiveness != nil && (*agg.AvgResponsiveness < 0 || *agg.AvgResponsiveness > 5) {
			t.Fatalf("PROPERTY VIOLATION: responsiveness average %f out of range", *agg.AvgResponsiveness)
		}
		if agg.AvgDemeanor != nil && (*agg.AvgDemeanor < 0 || *agg.AvgDemeanor > 5) {
			t.Fatalf("PROPERTY VIOLATION: demeanor average %f out of range", *agg.AvgDemeanor)
		}
	})
}

// TestProperty_Compute_OptionalAveragesIgnoreAbsent tests that the optional
// averages exist exactly when at least one evaluation carries the rating.
func TestProperty_Compute_OptionalAveragesIgnoreAbsent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		evals := genEvaluations(rt)
		agg := Compute(evals)

		hasResponsiveness := false
		hasDemeanor := false
		for _, e := range evals {
			if e.Responsiveness != nil {
				hasResponsiveness = true
			}
			if e.Demeanor != nil {
				hasDemeanor = true
			}
		}

		if hasResponsiveness != (agg.AvgResponsiveness != nil) {
			t.Fatalf("PROPERTY VIOLATION: responsiveness average presence = %v, want %v",
				agg.AvgResponsiveness != nil, hasResponsiveness)
		}
		if hasDemeanor != (agg.AvgDemeanor != nil) {
			t.Fatalf("PROPERTY VIOLATION: demeanor average presence = %v, want %v",
				agg.AvgDemeanor != nil, hasDemeanor)
		}
	})
}

// TestProperty_Compute_OrderInsensitive tests that the fold result does not
// depend on the order evaluations arrive in.
func TestProperty_Compute_OrderInsensitive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		evals := genEvaluations(rt)
		if len(evals) < 2 {
			return
		}

		reversed := make([]models.Evaluation, len(evals))
		for i, e := range evals {
			reversed[len(evals)-1-i] = e
		}

		a := Compute(evals)
		b := Compute(reversed)

		if a.TotalEvaluations != b.TotalEvaluations ||
			a.TotalNoShow != b.TotalNoShow ||
			*a.AvgOverallRating != *b.AvgOverallRating ||
			*a.MinOverallRating != *b.MinOverallRating ||
			*a.MaxOverallRating != *b.MaxOverallRating {
			t.Fatal("PROPERTY VIOLATION: aggregate depends on evaluation order")
		}
	})
}
