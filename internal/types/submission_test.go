package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"uploading to awaiting", SubmissionStatusUploading, SubmissionStatusAwaitingCoach, true},
		{"awaiting to claimed", SubmissionStatusAwaitingCoach, SubmissionStatusClaimed, true},
		{"claimed to in_review", SubmissionStatusClaimed, SubmissionStatusInReview, true},
		{"in_review to complete", SubmissionStatusInReview, SubmissionStatusComplete, true},
		{"skip a step", SubmissionStatusAwaitingCoach, SubmissionStatusInReview, false},
		{"skip to complete", SubmissionStatusUploading, SubmissionStatusComplete, false},
		{"backward", SubmissionStatusInReview, SubmissionStatusClaimed, false},
		{"backward to start", SubmissionStatusComplete, SubmissionStatusUploading, false},
		{"same status", SubmissionStatusClaimed, SubmissionStatusClaimed, false},
		{"past the end", SubmissionStatusComplete, "archived", false},
		{"unknown from", "draft", SubmissionStatusAwaitingCoach, false},
		{"unknown to", SubmissionStatusClaimed, "done", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAdvance(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanAdvance(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestClaimable(t *testing.T) {
	coach := uuid.New()

	var nilSub *Submission
	if nilSub.Claimable() {
		t.Fatal("nil submission reported claimable")
	}
	if !(&Submission{Status: SubmissionStatusAwaitingCoach}).Claimable() {
		t.Fatal("awaiting submission with no owner should be claimable")
	}
	if (&Submission{Status: SubmissionStatusAwaitingCoach, ClaimedBy: &coach}).Claimable() {
		t.Fatal("submission with an owner should not be claimable")
	}
	if (&Submission{Status: SubmissionStatusUploading}).Claimable() {
		t.Fatal("uploading submission should not be claimable")
	}
	if (&Submission{Status: SubmissionStatusComplete}).Claimable() {
		t.Fatal("complete submission should not be claimable")
	}
}

func TestClaimedByCoach(t *testing.T) {
	coach := uuid.New()
	other := uuid.New()

	sub := &Submission{Status: SubmissionStatusClaimed, ClaimedBy: &coach}
	if !sub.ClaimedByCoach(coach) {
		t.Fatal("owner not recognized")
	}
	if sub.ClaimedByCoach(other) {
		t.Fatal("non-owner recognized as owner")
	}
	if (&Submission{Status: SubmissionStatusAwaitingCoach}).ClaimedByCoach(coach) {
		t.Fatal("unclaimed submission has no owner")
	}
}
