package results

import "testing"

func posRecord(pos int, gender Gender, cat string, secs float64) Record {
	r := Record{Gender: gender, AgeCategory: cat, Status: StatusFinished}
	if pos > 0 {
		r.PositionOverall = intPtr(pos)
	}
	if secs > 0 {
		r.FinishTimeSeconds = floatPtr(secs)
	}
	return r
}

func TestDerivePositions(t *testing.T) {
	recs := []Record{
		posRecord(1, GenderMale, "M", 2400),
		posRecord(2, GenderFemale, "F", 2500),
		posRecord(3, GenderMale, "M40", 2600),
		posRecord(4, GenderFemale, "F", 2700),
		posRecord(5, GenderMale, "M", 2800),
	}
	DerivePositions(recs)

	wantGender := []int{1, 1, 2, 2, 3}
	wantCategory := []int{1, 1, 1, 2, 2}
	for i := range recs {
		if recs[i].PositionGender == nil || *recs[i].PositionGender != wantGender[i] {
			t.Errorf("record %d: PositionGender = %v, want %d", i, recs[i].PositionGender, wantGender[i])
		}
		if recs[i].PositionCategory == nil || *recs[i].PositionCategory != wantCategory[i] {
			t.Errorf("record %d: PositionCategory = %v, want %d", i, recs[i].PositionCategory, wantCategory[i])
		}
	}
}

func TestDerivePositionsSkipsNonFinishers(t *testing.T) {
	recs := []Record{
		posRecord(1, GenderMale, "M", 2400),
		{Gender: GenderMale, AgeCategory: "M", Status: StatusDNF},
		posRecord(2, GenderMale, "M", 2500),
	}
	DerivePositions(recs)

	if recs[1].PositionGender != nil || recs[1].PositionCategory != nil {
		t.Error("non-finisher should not receive positions")
	}
	if recs[2].PositionGender == nil || *recs[2].PositionGender != 2 {
		t.Errorf("record 2: PositionGender = %v, want 2", recs[2].PositionGender)
	}
}

func TestDerivePositionsOrderingTiers(t *testing.T) {
	// Stated overall positions outrank times, which outrank source order.
	recs := []Record{
		posRecord(0, GenderMale, "M", 2500), // time only
		posRecord(2, GenderMale, "M", 0),    // stated position
		posRecord(0, GenderMale, "M", 0),    // neither
		posRecord(1, GenderMale, "M", 9999), // stated position beats faster time
	}
	DerivePositions(recs)

	want := []int{3, 2, 4, 1}
	for i := range recs {
		if recs[i].PositionGender == nil || *recs[i].PositionGender != want[i] {
			t.Errorf("record %d: PositionGender = %v, want %d", i, recs[i].PositionGender, want[i])
		}
	}
}

func TestDerivePositionsNeverOverrides(t *testing.T) {
	recs := []Record{
		posRecord(1, GenderMale, "M", 2400),
		posRecord(2, GenderMale, "M", 2500),
	}
	recs[0].PositionGender = intPtr(7)
	DerivePositions(recs)

	if *recs[0].PositionGender != 7 {
		t.Errorf("PositionGender = %d, want preserved 7", *recs[0].PositionGender)
	}
	if recs[1].PositionGender == nil || *recs[1].PositionGender != 2 {
		t.Errorf("record 1: PositionGender = %v, want 2", recs[1].PositionGender)
	}
}
