package matching

import "testing"

func TestWeightsSumToOne(t *testing.T) {
	sum := weightSkills + weightSalary + weightExperience + weightArrangement +
		weightShift + weightLocation + weightUrgency
	if sum != 1.0 {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
}

// The gap tiers are reference values carried over from the previous system
// with no documented derivation. Pinned so a change is a deliberate decision.
func TestSalaryGapTiers_ReferenceValues(t *testing.T) {
	want := []struct {
		maxGapPct float64
		score     int
	}{
		{10, 75},
		{20, 60},
		{30, 45},
	}
	if len(salaryGapTiers) != len(want) {
		t.Fatalf("got %d tiers, want %d", len(salaryGapTiers), len(want))
	}
	for i, w := range want {
		if salaryGapTiers[i].maxGapPct != w.maxGapPct || salaryGapTiers[i].score != w.score {
			t.Errorf("tier %d = %+v, want %+v", i, salaryGapTiers[i], w)
		}
	}
	if salaryGapFloorScore != 30 {
		t.Errorf("gap floor = %d, want 30", salaryGapFloorScore)
	}
}
