package inbox

import (
	"context"
	"testing"
	"time"

	"SmartMailr/internal/intent"
	"SmartMailr/internal/mail"
	"SmartMailr/internal/plan"
	"SmartMailr/internal/triage"
)

func testMessage(id int64, sender string) mail.Message {
	return mail.Message{
		ID:         id,
		Sender:     sender,
		Subject:    "subject",
		Body:       "body",
		ReceivedAt: time.Now(),
	}
}

func succeededResult(it intent.Intent) triage.ActionResult {
	return triage.ActionResult{
		MessageID: 1,
		Plan:      plan.Build(it),
		Actions:   triage.Actions{Reply: "ok", Sent: true},
		CreatedAt: time.Now().Unix(),
	}
}

func TestMemoryStoreListWithFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now().Add(-2 * time.Minute)

	jobs := []*Job{
		{ID: "j1", Message: testMessage(1, "alice@example.com"), Status: StatusPending, MaxRetries: 3},
		{ID: "j2", Message: testMessage(2, "bob@example.com"), Status: StatusFailed, MaxRetries: 3},
		{ID: "j3", Message: testMessage(3, "carol@example.com"), Status: StatusSucceeded, MaxRetries: 3},
	}

	for _, job := range jobs {
		if err := store.Create(ctx, job); err != nil {
			t.Fatalf("create job %s: %v", job.ID, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := store.MarkFailed(ctx, "j2", CodeJobProcessing, "boom", true); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := store.MarkSucceeded(ctx, "j3", succeededResult(intent.MeetingRequest)); err != nil {
		t.Fatalf("mark succeeded: %v", err)
	}

	store.mu.Lock()
	store.jobs["j1"].UpdatedAt = base.Unix()
	store.jobs["j2"].UpdatedAt = base.Add(30 * time.Second).Unix()
	store.jobs["j3"].UpdatedAt = base.Add(60 * time.Second).Unix()
	store.mu.Unlock()

	all, err := store.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(all))
	}
	if all[0].ID != "j3" {
		t.Fatalf("expected newest job first, got %s", all[0].ID)
	}

	failed, err := store.List(ctx, buildListOptions([]ListOption{WithStatuses(StatusFailed)}))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "j2" {
		t.Fatalf("unexpected failed list: %+v", failed)
	}

	succeeded, err := store.List(ctx, buildListOptions([]ListOption{WithResultPresence(true)}))
	if err != nil {
		t.Fatalf("list with result: %v", err)
	}
	if len(succeeded) != 1 || succeeded[0].ID != "j3" {
		t.Fatalf("unexpected result list: %+v", succeeded)
	}

	since := base.Add(15 * time.Second)
	recent, err := store.List(ctx, buildListOptions([]ListOption{WithUpdatedSince(since)}))
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 jobs to match since filter, got %d", len(recent))
	}

	byIntent, err := store.List(ctx, buildListOptions([]ListOption{WithIntent(intent.MeetingRequest)}))
	if err != nil {
		t.Fatalf("list by intent: %v", err)
	}
	if len(byIntent) != 1 || byIntent[0].ID != "j3" {
		t.Fatalf("unexpected intent list: %+v", byIntent)
	}

	bySender, err := store.List(ctx, buildListOptions([]ListOption{WithSender("Bob@Example.com")}))
	if err != nil {
		t.Fatalf("list by sender: %v", err)
	}
	if len(bySender) != 1 || bySender[0].ID != "j2" {
		t.Fatalf("unexpected sender list: %+v", bySender)
	}
}

func TestMemoryStoreClaimLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	job := &Job{ID: "j1", Message: testMessage(1, "alice@example.com"), Status: StatusPending, MaxRetries: 2}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	claimed, err := store.Claim(ctx, "j1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != StatusRunning || claimed.Attempts != 1 {
		t.Fatalf("unexpected claimed job: %+v", claimed)
	}

	if _, err := store.Claim(ctx, "j1"); !IsJobError(err, CodeJobConflict) {
		t.Fatalf("expected conflict on running job, got %v", err)
	}

	if err := store.MarkFailed(ctx, "j1", CodeJobProcessing, "boom", false); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, err := store.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusPending {
		t.Fatalf("non-terminal failure should return job to pending, got %s", got.Status)
	}

	if _, err := store.Claim(ctx, "j1"); err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if err := store.MarkFailed(ctx, "j1", CodeJobProcessing, "boom", false); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	if _, err := store.Claim(ctx, "j1"); !IsJobError(err, CodeJobExhausted) {
		t.Fatalf("expected exhausted after max retries, got %v", err)
	}

	if _, err := store.Claim(ctx, "missing"); !IsJobError(err, CodeJobNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now().Add(-3 * time.Minute)
	jobs := []*Job{
		{ID: "a", Message: testMessage(1, "alice@example.com"), Status: StatusPending, MaxRetries: 3},
		{ID: "b", Message: testMessage(2, "bob@example.com"), Status: StatusPending, MaxRetries: 3},
		{ID: "c", Message: testMessage(3, "carol@example.com"), Status: StatusPending, MaxRetries: 3},
	}

	for _, job := range jobs {
		if err := store.Create(ctx, job); err != nil {
			t.Fatalf("create job %s: %v", job.ID, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	if err := store.MarkFailed(ctx, "b", CodeJobProcessing, "boom", true); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := store.MarkSucceeded(ctx, "c", succeededResult(intent.General)); err != nil {
		t.Fatalf("mark succeeded: %v", err)
	}

	store.mu.Lock()
	store.jobs["a"].UpdatedAt = base.Unix()
	store.jobs["b"].UpdatedAt = base.Add(30 * time.Second).Unix()
	store.jobs["c"].UpdatedAt = base.Add(2 * time.Minute).Unix()
	store.mu.Unlock()

	stats, err := store.Stats(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 1 || stats.Failed != 1 || stats.Succeeded != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.NewestUpdatedAt != base.Add(2*time.Minute).Unix() {
		t.Fatalf("unexpected newest timestamp: %d", stats.NewestUpdatedAt)
	}
	if stats.OldestUpdatedAt != base.Unix() {
		t.Fatalf("unexpected oldest timestamp: %d", stats.OldestUpdatedAt)
	}

	withResults, err := store.Stats(ctx, buildListOptions([]ListOption{WithResultPresence(true)}))
	if err != nil {
		t.Fatalf("stats with result: %v", err)
	}
	if withResults.Total != 1 || withResults.Succeeded != 1 {
		t.Fatalf("unexpected stats with result: %+v", withResults)
	}

	withoutResults, err := store.Stats(ctx, buildListOptions([]ListOption{WithResultPresence(false)}))
	if err != nil {
		t.Fatalf("stats without result: %v", err)
	}
	if withoutResults.Total != 2 || withoutResults.Pending != 1 || withoutResults.Failed != 1 {
		t.Fatalf("unexpected stats without result: %+v", withoutResults)
	}
}
