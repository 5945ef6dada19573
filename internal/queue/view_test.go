package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mtnvale/stridecoach-backend/internal/types"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func sub(status string, createdOffset time.Duration, deadline *time.Time, claimedBy *uuid.UUID) *types.Submission {
	return &types.Submission{
		ID:          uuid.New(),
		Status:      status,
		CreatedAt:   base.Add(createdOffset),
		SLADeadline: deadline,
		ClaimedBy:   claimedBy,
	}
}

func deadlineAt(offset time.Duration) *time.Time {
	d := base.Add(offset)
	return &d
}

func TestApplyFilters(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	snapshot := []*types.Submission{
		sub(types.SubmissionStatusAwaitingCoach, 0, deadlineAt(48*time.Hour), nil),
		sub(types.SubmissionStatusClaimed, time.Hour, deadlineAt(24*time.Hour), &me),
		sub(types.SubmissionStatusInReview, 2*time.Hour, deadlineAt(36*time.Hour), &other),
		sub(types.SubmissionStatusComplete, 3*time.Hour, deadlineAt(12*time.Hour), &me),
	}

	cases := []struct {
		name   string
		filter Filter
		want   int
	}{
		{name: "all", filter: FilterAll, want: 4},
		{name: "awaiting", filter: FilterAwaiting, want: 1},
		{name: "mine", filter: FilterMine, want: 2},
		{name: "complete", filter: FilterComplete, want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(snapshot, tc.filter, SortNewest, me)
			if len(got) != tc.want {
				t.Fatalf("Apply(%s) returned %d rows, want %d", tc.filter, len(got), tc.want)
			}
		})
	}
}

func TestApplySortOrders(t *testing.T) {
	me := uuid.New()
	a := sub(types.SubmissionStatusAwaitingCoach, 0, deadlineAt(72*time.Hour), nil)
	b := sub(types.SubmissionStatusAwaitingCoach, time.Hour, deadlineAt(10*time.Hour), nil)
	c := sub(types.SubmissionStatusAwaitingCoach, 2*time.Hour, nil, nil)
	snapshot := []*types.Submission{a, b, c}

	newest := Apply(snapshot, FilterAll, SortNewest, me)
	if newest[0] != c || newest[2] != a {
		t.Fatalf("newest sort wrong order: got %v first", newest[0].CreatedAt)
	}

	oldest := Apply(snapshot, FilterAll, SortOldest, me)
	if oldest[0] != a || oldest[2] != c {
		t.Fatalf("oldest sort wrong order: got %v first", oldest[0].CreatedAt)
	}

	byDeadline := Apply(snapshot, FilterAll, SortDeadline, me)
	if byDeadline[0] != b {
		t.Fatalf("deadline sort should put earliest deadline first")
	}
	if byDeadline[2] != c {
		t.Fatalf("deadline sort should sink submissions without a deadline")
	}
}

func TestApplyIsIdempotentAndDoesNotMutate(t *testing.T) {
	me := uuid.New()
	snapshot := []*types.Submission{
		sub(types.SubmissionStatusAwaitingCoach, 2*time.Hour, deadlineAt(10*time.Hour), nil),
		sub(types.SubmissionStatusAwaitingCoach, 0, deadlineAt(40*time.Hour), nil),
		sub(types.SubmissionStatusComplete, time.Hour, nil, nil),
	}
	orig := make([]*types.Submission, len(snapshot))
	copy(orig, snapshot)

	first := Apply(snapshot, FilterAwaiting, SortDeadline, me)
	second := Apply(snapshot, FilterAwaiting, SortDeadline, me)

	if len(first) != len(second) {
		t.Fatalf("repeated apply changed result size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated apply changed order at index %d", i)
		}
	}
	for i := range snapshot {
		if snapshot[i] != orig[i] {
			t.Fatalf("Apply mutated the snapshot at index %d", i)
		}
	}
}

func TestCountsFor(t *testing.T) {
	me := uuid.New()
	other := uuid.New()
	now := base

	snapshot := []*types.Submission{
		sub(types.SubmissionStatusAwaitingCoach, 0, deadlineAt(48*time.Hour), nil),
		sub(types.SubmissionStatusAwaitingCoach, 0, deadlineAt(6*time.Hour), nil),
		sub(types.SubmissionStatusClaimed, 0, deadlineAt(-time.Hour), &me),
		sub(types.SubmissionStatusComplete, 0, deadlineAt(-time.Hour), &other),
	}

	got := CountsFor(snapshot, me, now)
	want := Counts{Total: 4, Awaiting: 2, Mine: 1, Complete: 1, Urgent: 1, Breached: 1}
	if got != want {
		t.Fatalf("CountsFor=%+v, want %+v", got, want)
	}
}

func TestActionFor(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	cases := []struct {
		name string
		sub  *types.Submission
		want RowAction
	}{
		{
			name: "awaiting_offers_claim",
			sub:  sub(types.SubmissionStatusAwaitingCoach, 0, nil, nil),
			want: ActionClaim,
		},
		{
			name: "my_claim_offers_continue",
			sub:  sub(types.SubmissionStatusClaimed, 0, nil, &me),
			want: ActionContinue,
		},
		{
			name: "my_in_review_offers_continue",
			sub:  sub(types.SubmissionStatusInReview, 0, nil, &me),
			want: ActionContinue,
		},
		{
			name: "other_coach_claim_is_view_only",
			sub:  sub(types.SubmissionStatusClaimed, 0, nil, &other),
			want: ActionView,
		},
		{
			name: "complete_is_view_only",
			sub:  sub(types.SubmissionStatusComplete, 0, nil, &me),
			want: ActionView,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ActionFor(tc.sub, me); got != tc.want {
				t.Fatalf("ActionFor=%q, want %q", got, tc.want)
			}
		})
	}
}
