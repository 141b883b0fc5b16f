// Package selector picks the next assignee from an eligible candidate set
// and advances the rotation state.
package selector

import (
	"errors"
	"math/rand"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/availability"
	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/core/rotation"
)

// ErrNoCandidates is returned when the candidate set is empty
var ErrNoCandidates = errors.New("no candidates to select from")

// Next selects one candidate for the role on the date per the rotation mode
// and mutates the state accordingly: the chosen assignee is appended to
// history, the last-assignment date moves, and for rotation groups the
// group's internal member cursor advances.
//
// Modes:
//   - sequential: candidates[index mod n], then index advances by one
//   - balanced: least historical count for this role, ties broken with the
//     sequential cyclic index over the tied subset
//   - random: uniform pick; appends to history but leaves the cyclic index
//     untouched
func Next(state *rotation.State, roleID string, candidates []availability.Candidate, mode model.RotationMode, date time.Time) (availability.Candidate, error) {
	if len(candidates) == 0 {
		return availability.Candidate{}, ErrNoCandidates
	}

	var chosen availability.Candidate
	switch mode {
	case model.ModeBalanced:
		chosen = nextBalanced(state, roleID, candidates)
	case model.ModeRandom:
		chosen = nextRandom(state, candidates)
	default:
		chosen = nextSequential(state, roleID, candidates)
	}

	state.RecordSelection(date, roleID, chosen.Assignee)

	if chosen.Group != nil && chosen.Group.Kind == model.GroupRotation {
		state.AdvanceGroupMember(chosen.Group.ID, len(chosen.Group.MemberRotation()))
	}

	return chosen, nil
}

func nextSequential(state *rotation.State, roleID string, candidates []availability.Candidate) availability.Candidate {
	idx := state.RoleIndex[roleID] % len(candidates)
	state.RoleIndex[roleID] = (idx + 1) % len(candidates)
	return candidates[idx]
}

// nextBalanced selects the candidate with the fewest historical assignments
// for this role; the sequential cyclic index breaks ties and advances exactly
// as in sequential mode so interleaved modes stay deterministic.
func nextBalanced(state *rotation.State, roleID string, candidates []availability.Candidate) availability.Candidate {
	minCount := -1
	var tied []availability.Candidate
	for _, c := range candidates {
		count := state.CountForRole(roleID, c.Assignee)
		switch {
		case minCount == -1 || count < minCount:
			minCount = count
			tied = []availability.Candidate{c}
		case count == minCount:
			tied = append(tied, c)
		}
	}

	idx := state.RoleIndex[roleID]
	chosen := tied[idx%len(tied)]
	state.RoleIndex[roleID] = (idx + 1) % len(candidates)
	return chosen
}

// nextRandom picks uniformly. The RNG is derived from the state's seed and
// history length, so a given state always produces the same pick while
// successive selections still vary.
func nextRandom(state *rotation.State, candidates []availability.Candidate) availability.Candidate {
	rng := rand.New(rand.NewSource(state.RandSeed + int64(len(state.History))))
	return candidates[rng.Intn(len(candidates))]
}
