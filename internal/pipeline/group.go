package pipeline

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Group is an ordered set of clips that become one output video.
type Group []string

// BuildGroups shuffles clips with rng and chunks them into groups of exactly
// size clips. A short remainder is left out. When limit > 0 only the first
// limit groups are returned. clips is not modified.
func BuildGroups(clips []string, size, limit int, rng *rand.Rand) ([]Group, error) {
	if size < 2 {
		return nil, fmt.Errorf("group size must be at least 2, got %d", size)
	}
	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", limit)
	}

	pool := slices.Clone(clips)
	if rng != nil {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	n := len(pool) / size
	if limit > 0 && limit < n {
		n = limit
	}
	groups := make([]Group, n)
	for i := range groups {
		groups[i] = Group(pool[i*size : (i+1)*size : (i+1)*size])
	}
	return groups, nil
}

// Clips returns the total number of clips across groups.
func Clips(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	return total
}
