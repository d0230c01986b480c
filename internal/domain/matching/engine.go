// Package matching implements the cycle that turns the active population
// into a set of proposed coffee pairings. Members with the fewest options
// are matched first, and each pick prefers the candidate with the fewest
// prior partners on record.
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fika/internal/domain/eligibility"
	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/logger"
	"github.com/okian/fika/pkg/metrics"
)

// Store is the slice of the repository the engine reads and writes.
type Store interface {
	GetActiveMembers(ctx context.Context) ([]model.Member, error)
	CountRecentMissedStreak(ctx context.Context, memberID int64) (int, error)
	ListPriorPartners(ctx context.Context, memberID int64) (map[int64]struct{}, error)
	CreatePairing(ctx context.Context, user1, user2 int64, status model.Status) (int64, error)
}

// Pair is one proposed meeting produced by a cycle, before persistence.
type Pair struct {
	User1 model.Member
	User2 model.Member
}

// Engine runs matching cycles against a Store.
type Engine struct {
	store           Store
	missedThreshold int
	log             logger.Logger
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		missedThreshold: defaultMissedThreshold,
		log:             logger.Named("matching"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunCycle computes one matching pass and returns the proposed pairs without
// persisting them. Any repository error aborts the whole cycle; the caller
// retries on the next scheduled tick.
func (e *Engine) RunCycle(ctx context.Context) ([]Pair, error) {
	runID := uuid.NewString()
	start := time.Now()

	pairs, eligibleCount, err := e.runCycle(ctx, runID)
	if err != nil {
		metrics.RecordCycleFailure()
		e.log.Error(ctx, "matching cycle failed",
			logger.String("run_id", runID),
			logger.Error(err))
		return nil, err
	}

	metrics.RecordCycleRun(float64(time.Since(start).Milliseconds()))
	metrics.UpdateEligibleMembers(eligibleCount)
	e.log.Info(ctx, "matching cycle finished",
		logger.String("run_id", runID),
		logger.Int("eligible", eligibleCount),
		logger.Int("pairs", len(pairs)),
		logger.Duration("took", time.Since(start)))
	return pairs, nil
}

func (e *Engine) runCycle(ctx context.Context, runID string) ([]Pair, int, error) {
	members, err := e.store.GetActiveMembers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("load active members: %w", err)
	}

	eligible := make([]model.Member, 0, len(members))
	for _, m := range members {
		streak, err := e.store.CountRecentMissedStreak(ctx, m.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("missed streak for member %d: %w", m.ID, err)
		}
		if eligibility.Eligible(m, streak, e.missedThreshold) {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) < 2 {
		e.log.Info(ctx, "not enough eligible members",
			logger.String("run_id", runID),
			logger.Int("eligible", len(eligible)))
		return nil, len(eligible), nil
	}

	prior := make(map[int64]map[int64]struct{}, len(eligible))
	for _, m := range eligible {
		partners, err := e.store.ListPriorPartners(ctx, m.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("prior partners for member %d: %w", m.ID, err)
		}
		prior[m.ID] = partners
	}

	// Candidate lists are computed against the full eligible pool; claims
	// made later in the walk shrink them only at selection time.
	candidates := make(map[int64][]model.Member, len(eligible))
	for _, m := range eligible {
		for _, other := range eligible {
			if eligibility.Compatible(m, other, prior[m.ID]) {
				candidates[m.ID] = append(candidates[m.ID], other)
			}
		}
	}

	// A pool of exactly three where everyone can meet everyone becomes one
	// trio instead of a pair plus a stranded member.
	if len(eligible) == 3 &&
		len(candidates[eligible[0].ID]) == 2 &&
		len(candidates[eligible[1].ID]) == 2 &&
		len(candidates[eligible[2].ID]) == 2 {
		metrics.RecordTrioGroup()
		return trioPairs(eligible[0], eligible[1], eligible[2]), len(eligible), nil
	}

	// Scarcity first: fewest options matched before anyone else. Stable so
	// a fixed input ordering yields a reproducible walk.
	order := make([]model.Member, len(eligible))
	copy(order, eligible)
	sort.SliceStable(order, func(i, j int) bool {
		return len(candidates[order[i].ID]) < len(candidates[order[j].ID])
	})

	claimed := make(map[int64]struct{}, len(order))
	var pairs []Pair
	for _, m := range order {
		if _, ok := claimed[m.ID]; ok {
			continue
		}
		pick, ok := e.pickCandidate(candidates[m.ID], claimed, prior)
		if !ok {
			continue
		}
		claimed[m.ID] = struct{}{}
		claimed[pick.ID] = struct{}{}
		pairs = append(pairs, Pair{User1: m, User2: pick})
	}

	// Leftover handling: the first three unclaimed members, in walk order,
	// become a trio emitted as its three pairwise combinations. One, two,
	// or anyone beyond the first three stay unmatched this cycle.
	var leftovers []model.Member
	for _, m := range order {
		if _, ok := claimed[m.ID]; !ok {
			leftovers = append(leftovers, m)
		}
	}
	if len(leftovers) >= 3 {
		trio := leftovers[:3]
		pairs = append(pairs, trioPairs(trio[0], trio[1], trio[2])...)
		metrics.RecordTrioGroup()
		e.log.Info(ctx, "leftover trio formed",
			logger.String("run_id", runID),
			logger.Int64("member1", trio[0].ID),
			logger.Int64("member2", trio[1].ID),
			logger.Int64("member3", trio[2].ID))
	}

	return pairs, len(eligible), nil
}

// trioPairs expands a three member group into its pairwise rows.
func trioPairs(a, b, c model.Member) []Pair {
	return []Pair{
		{User1: a, User2: b},
		{User1: b, User2: c},
		{User1: a, User2: c},
	}
}

// pickCandidate returns the unclaimed candidate with the fewest prior
// partners on record, id ascending on ties.
func (e *Engine) pickCandidate(cands []model.Member, claimed map[int64]struct{}, prior map[int64]map[int64]struct{}) (model.Member, bool) {
	var (
		best  model.Member
		found bool
	)
	for _, c := range cands {
		if _, ok := claimed[c.ID]; ok {
			continue
		}
		if !found {
			best, found = c, true
			continue
		}
		bc, cc := len(prior[best.ID]), len(prior[c.ID])
		if cc < bc || (cc == bc && c.ID < best.ID) {
			best = c
		}
	}
	return best, found
}

// PersistPairs stores each proposed pair as a pending pairing. One failed
// insert does not abandon the rest; the ids of everything stored are
// returned alongside the joined insert errors.
func (e *Engine) PersistPairs(ctx context.Context, pairs []Pair) ([]int64, error) {
	ids := make([]int64, 0, len(pairs))
	var errs []error
	for _, p := range pairs {
		id, err := e.store.CreatePairing(ctx, p.User1.ID, p.User2.ID, model.StatusPending)
		if err != nil {
			metrics.RecordPairingInsertError()
			e.log.Error(ctx, "pairing insert failed",
				logger.Int64("user1", p.User1.ID),
				logger.Int64("user2", p.User2.ID),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("pair (%d,%d): %w", p.User1.ID, p.User2.ID, err))
			continue
		}
		metrics.RecordPairingCreated()
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}
