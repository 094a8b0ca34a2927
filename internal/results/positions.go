package results

import "sort"

// DerivePositions backfills gender- and category-scoped positions for one
// edition's records. Only finished records take part; positions already
// present in the source are never overwritten. Ranking prefers the stated
// overall position, then the best available time, then source order, so a
// sheet with neither still gets stable, reproducible numbering.
func DerivePositions(records []Record) {
	type ranked struct {
		idx  int
		tier int
		key  float64
	}

	order := make([]ranked, 0, len(records))
	for i := range records {
		if records[i].Status != StatusFinished {
			continue
		}
		r := ranked{idx: i, tier: 2, key: float64(i)}
		if p := records[i].PositionOverall; p != nil {
			r.tier = 0
			r.key = float64(*p)
		} else if t, ok := records[i].BestTimeSeconds(); ok {
			r.tier = 1
			r.key = t
		}
		order = append(order, r)
	}

	sort.SliceStable(order, func(a, b int) bool {
		if order[a].tier != order[b].tier {
			return order[a].tier < order[b].tier
		}
		if order[a].key != order[b].key {
			return order[a].key < order[b].key
		}
		return order[a].idx < order[b].idx
	})

	genderNext := make(map[Gender]int)
	categoryNext := make(map[string]int)
	for _, r := range order {
		rec := &records[r.idx]
		if rec.Gender != "" && rec.Gender != GenderUnknown {
			genderNext[rec.Gender]++
			if rec.PositionGender == nil {
				rec.PositionGender = intPtr(genderNext[rec.Gender])
			}
		}
		if rec.AgeCategory != "" {
			categoryNext[rec.AgeCategory]++
			if rec.PositionCategory == nil {
				rec.PositionCategory = intPtr(categoryNext[rec.AgeCategory])
			}
		}
	}
}
