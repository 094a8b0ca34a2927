package rating

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/fellrank-data/race.report/internal/db"
)

// maxFuzzyDistance is the largest edit distance FindSimilar accepts between
// a query and a candidate name.
const maxFuzzyDistance = 3

// RunnerKey is the identity a runner is registered under. Unattached runners
// (Attached false) are distinct from every club identity with the same name.
type RunnerKey struct {
	Name     string
	Club     string
	Attached bool
}

// KeyForRunner builds the identity key for a registry row.
func KeyForRunner(r db.Runner) RunnerKey {
	k := RunnerKey{Name: r.Name}
	if r.Club != nil {
		k.Club = *r.Club
		k.Attached = true
	}
	return k
}

// Registry resolves runner identities against the stored registry.
type Registry struct {
	store RegistryStore
}

// RegistryStore is the persistence surface the registry needs. *db.DB
// satisfies it.
type RegistryStore interface {
	GetOrCreateRunner(name string, club *string, year int) (int64, error)
	IncrementAppearance(runnerID int64) error
	SearchRunners(name string, exact bool) ([]db.Runner, error)
}

func NewRegistry(store RegistryStore) *Registry {
	return &Registry{store: store}
}

// GetOrCreate resolves a (name, club) identity to a runner id, creating it
// on first sight. The club pointer follows the record convention: nil means
// unattached.
func (r *Registry) GetOrCreate(name string, club *string, year int) (int64, error) {
	return r.store.GetOrCreateRunner(strings.TrimSpace(name), club, year)
}

// RecordAppearance counts one appearance for a runner. Appearance counting
// is separate from identity resolution so an edition can resolve a runner
// several times while recording a single appearance.
func (r *Registry) RecordAppearance(runnerID int64) error {
	return r.store.IncrementAppearance(runnerID)
}

// FindExact returns registry rows whose name matches exactly. Several rows
// can share a name when the runners ran for different clubs.
func (r *Registry) FindExact(name string) ([]db.Runner, error) {
	return r.store.SearchRunners(strings.TrimSpace(name), true)
}

// FindSimilar returns registry rows whose names are close to the query:
// substring matches plus names within a small edit distance, nearest first.
// It catches the misspellings and initialisms that race sheets introduce for
// the same person across years.
func (r *Registry) FindSimilar(name string) ([]db.Runner, error) {
	name = strings.TrimSpace(name)

	candidates, err := r.store.SearchRunners("", false)
	if err != nil {
		return nil, err
	}

	type scored struct {
		runner   db.Runner
		distance int
	}
	var matches []scored
	queryLower := strings.ToLower(name)
	for _, c := range candidates {
		candidateLower := strings.ToLower(c.Name)
		d := levenshtein.ComputeDistance(queryLower, candidateLower)
		substring := strings.Contains(candidateLower, queryLower) || strings.Contains(queryLower, candidateLower)
		if !substring && d > maxFuzzyDistance {
			continue
		}
		if substring && d > 0 {
			// Rank substring-only matches behind close spellings of the
			// whole name, but keep them.
			d = min(d, maxFuzzyDistance)
		}
		matches = append(matches, scored{runner: c, distance: d})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].distance != matches[b].distance {
			return matches[a].distance < matches[b].distance
		}
		return matches[a].runner.Appearances > matches[b].runner.Appearances
	})

	out := make([]db.Runner, len(matches))
	for i, m := range matches {
		out[i] = m.runner
	}
	return out, nil
}
