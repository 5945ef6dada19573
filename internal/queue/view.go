// Package queue holds the pure filter/sort/count logic behind the coach
// review queue. Everything operates on an in-memory snapshot; no store
// round-trip happens on a filter or sort change.
package queue

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mtnvale/stridecoach-backend/internal/sla"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type Filter string

const (
	FilterAll      Filter = "all"
	FilterAwaiting Filter = "awaiting"
	FilterMine     Filter = "mine"
	FilterComplete Filter = "complete"
)

type Sort string

const (
	SortNewest   Sort = "newest"
	SortOldest   Sort = "oldest"
	SortDeadline Sort = "deadline"
)

func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterAwaiting, FilterMine, FilterComplete:
		return Filter(s)
	}
	return FilterAll
}

func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortOldest, SortDeadline:
		return Sort(s)
	}
	return SortNewest
}

// Apply returns a filtered, sorted copy of the snapshot. The snapshot is
// never mutated, so applying the same filter and sort twice yields the same
// ordered list.
func Apply(snapshot []*types.Submission, filter Filter, sortBy Sort, coachID uuid.UUID) []*types.Submission {
	out := make([]*types.Submission, 0, len(snapshot))
	for _, sub := range snapshot {
		if sub == nil {
			continue
		}
		switch filter {
		case FilterAwaiting:
			if sub.Status != types.SubmissionStatusAwaitingCoach {
				continue
			}
		case FilterMine:
			if !sub.ClaimedByCoach(coachID) {
				continue
			}
		case FilterComplete:
			if sub.Status != types.SubmissionStatusComplete {
				continue
			}
		}
		out = append(out, sub)
	}

	switch sortBy {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortDeadline:
		// Earliest deadline first; submissions without one sink to the end.
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].SLADeadline, out[j].SLADeadline
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			return di.Before(*dj)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// Counts are the queue tab badges. They are recomputed from the snapshot on
// every change rather than maintained incrementally, so they can never drift
// from the underlying set.
type Counts struct {
	Total    int `json:"total"`
	Awaiting int `json:"awaiting"`
	Mine     int `json:"mine"`
	Complete int `json:"complete"`
	Urgent   int `json:"urgent"`
	Breached int `json:"breached"`
}

func CountsFor(snapshot []*types.Submission, coachID uuid.UUID, now time.Time) Counts {
	var c Counts
	for _, sub := range snapshot {
		if sub == nil {
			continue
		}
		c.Total++
		switch sub.Status {
		case types.SubmissionStatusAwaitingCoach:
			c.Awaiting++
		case types.SubmissionStatusComplete:
			c.Complete++
		}
		if sub.ClaimedByCoach(coachID) {
			c.Mine++
		}
		if sub.Status == types.SubmissionStatusComplete {
			continue
		}
		switch sla.EvaluatePtr(sub.SLADeadline, now).Status {
		case sla.StatusUrgent:
			c.Urgent++
		case sla.StatusBreached:
			c.Breached++
		}
	}
	return c
}

// RowAction is which control the queue offers for a row, given the viewing
// coach. The server decides this so the client cannot offer an action that
// would move a submission backward.
type RowAction string

const (
	ActionClaim    RowAction = "claim"
	ActionContinue RowAction = "continue"
	ActionView     RowAction = "view"
)

func ActionFor(sub *types.Submission, coachID uuid.UUID) RowAction {
	if sub == nil {
		return ActionView
	}
	if sub.Claimable() {
		return ActionClaim
	}
	if sub.ClaimedByCoach(coachID) && sub.Status != types.SubmissionStatusComplete {
		return ActionContinue
	}
	return ActionView
}
