package triage

import (
	"context"
	stdErrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"SmartMailr/internal/calendar"
	xerrors "SmartMailr/internal/errors"
	"SmartMailr/internal/intent"
	"SmartMailr/internal/mail"
	"SmartMailr/internal/mailer"
	"SmartMailr/internal/plan"
)

var clock Clock = func() time.Time {
	return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
}

type recordingCalendar struct {
	mu       sync.Mutex
	requests []*time.Time
	err      error
}

func (c *recordingCalendar) CreateEvent(ctx context.Context, summary string, when *time.Time) (*calendar.Event, error) {
	c.mu.Lock()
	c.requests = append(c.requests, when)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return calendar.NewMock().CreateEvent(ctx, summary, when)
}

type recordingTransport struct {
	mu         sync.Mutex
	recipients []string
	bodies     []string
}

func (t *recordingTransport) Send(_ context.Context, recipient, body string) (mailer.Ack, error) {
	t.mu.Lock()
	t.recipients = append(t.recipients, recipient)
	t.bodies = append(t.bodies, body)
	t.mu.Unlock()
	return mailer.Ack{Delivered: true}, nil
}

func message(id int64, sender, subject, body string) mail.Message {
	return mail.Message{
		ID:         id,
		Sender:     sender,
		Subject:    subject,
		Body:       body,
		ReceivedAt: clock(),
	}
}

func TestProcessMeetingRequest(t *testing.T) {
	cal := &recordingCalendar{}
	transport := &recordingTransport{}
	orch := New(cal, transport, WithClock(clock))

	msg := message(1, "alice@example.com", "Meeting?", "Hi, can we meet tomorrow at 4 PM to discuss the dataset?")
	result, err := orch.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Plan.Intent != intent.MeetingRequest {
		t.Fatalf("unexpected intent: %s", result.Plan.Intent)
	}
	wantSteps := []plan.Step{plan.StepExtractDatetime, plan.StepCreateEvent, plan.StepDraftReply}
	if len(result.Plan.Steps) != len(wantSteps) {
		t.Fatalf("unexpected steps: %v", result.Plan.Steps)
	}
	for i, step := range wantSteps {
		if result.Plan.Steps[i] != step {
			t.Fatalf("unexpected step order: %v", result.Plan.Steps)
		}
	}

	wantTime := time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)
	if result.Actions.ExtractDatetime == nil || result.Actions.ExtractDatetime.Datetime == nil {
		t.Fatalf("missing datetime extraction")
	}
	if !result.Actions.ExtractDatetime.Datetime.Equal(wantTime) {
		t.Fatalf("unexpected datetime: %v", result.Actions.ExtractDatetime.Datetime)
	}
	if result.Actions.CreateEvent == nil || result.Actions.CreateEvent.EventID == "" {
		t.Fatalf("missing created event")
	}
	if result.Actions.CreateEvent.Summary != "Meeting with alice@example.com" {
		t.Fatalf("unexpected summary: %q", result.Actions.CreateEvent.Summary)
	}
	if !result.Actions.Sent {
		t.Fatalf("expected sent = true")
	}
	if !strings.Contains(result.Actions.Reply, "2024-05-02 04:00 PM") {
		t.Fatalf("reply does not confirm the resolved time: %q", result.Actions.Reply)
	}

	// create_event 必须看到 extract_datetime 已经写入的时间。
	if len(cal.requests) != 1 || cal.requests[0] == nil || !cal.requests[0].Equal(wantTime) {
		t.Fatalf("calendar saw wrong datetime: %v", cal.requests)
	}
	if len(transport.recipients) != 1 || transport.recipients[0] != "alice@example.com" {
		t.Fatalf("unexpected recipients: %v", transport.recipients)
	}
}

func TestProcessMeetingRequestWithoutCue(t *testing.T) {
	orch := New(nil, nil, WithClock(clock))

	msg := message(5, "dave@example.com", "Catch up call", "would be good to catch up sometime")
	result, err := orch.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.Intent != intent.MeetingRequest {
		t.Fatalf("unexpected intent: %s", result.Plan.Intent)
	}
	// extract_datetime 执行过但未命中：键存在，值为 nil。
	if result.Actions.ExtractDatetime == nil {
		t.Fatalf("extract_datetime output missing")
	}
	if result.Actions.ExtractDatetime.Datetime != nil {
		t.Fatalf("expected nil datetime, got %v", result.Actions.ExtractDatetime.Datetime)
	}
	if result.Actions.CreateEvent == nil {
		t.Fatalf("event should still be created without a datetime")
	}
	if !strings.Contains(result.Actions.Reply, "a time") {
		t.Fatalf("expected the fallback phrase in reply: %q", result.Actions.Reply)
	}
}

func TestProcessInfoRequest(t *testing.T) {
	orch := New(nil, nil, WithClock(clock))

	msg := message(2, "bob@example.com", "Request: docs", "Could you send the latest report please?")
	result, err := orch.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.Intent != intent.InfoRequest {
		t.Fatalf("unexpected intent: %s", result.Plan.Intent)
	}
	if result.Actions.ExtractDatetime != nil || result.Actions.CreateEvent != nil {
		t.Fatalf("info_request must not record datetime or event outputs")
	}
	if !strings.Contains(result.Actions.Reply, "I will gather the information") {
		t.Fatalf("unexpected reply: %q", result.Actions.Reply)
	}
	if !result.Actions.Sent {
		t.Fatalf("expected sent = true")
	}
}

func TestProcessAcknowledgement(t *testing.T) {
	orch := New(nil, nil, WithClock(clock))

	msg := message(3, "carol@example.com", "Thanks", "Thanks for the update!")
	result, err := orch.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.Intent != intent.Acknowledgement {
		t.Fatalf("unexpected intent: %s", result.Plan.Intent)
	}
	if !strings.Contains(result.Actions.Reply, "noted") {
		t.Fatalf("unexpected reply: %q", result.Actions.Reply)
	}
}

func TestProcessGeneral(t *testing.T) {
	orch := New(nil, nil, WithClock(clock))

	msg := message(4, "erin@example.com", "FYI", "the quarterly numbers are attached")
	result, err := orch.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Plan.Intent != intent.General {
		t.Fatalf("unexpected intent: %s", result.Plan.Intent)
	}
	if !strings.Contains(result.Actions.Reply, "I'll get back to you soon") {
		t.Fatalf("unexpected reply: %q", result.Actions.Reply)
	}
}

func TestProcessRejectsInvalidMessage(t *testing.T) {
	orch := New(nil, nil, WithClock(clock))

	_, err := orch.Process(context.Background(), mail.Message{ID: 9, Sender: "alice@example.com"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !stdErrors.Is(err, xerrors.New(xerrors.CodeValidationFailure, "")) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestProcessSurfacesCalendarFailure(t *testing.T) {
	cal := &recordingCalendar{err: stdErrors.New("calendar down")}
	orch := New(cal, nil, WithClock(clock))

	msg := message(6, "alice@example.com", "Meeting?", "can we meet tomorrow?")
	_, err := orch.Process(context.Background(), msg)
	if err == nil {
		t.Fatalf("expected calendar failure")
	}
	if xerrors.CodeOf(err) != xerrors.CodeCalendarFailure {
		t.Fatalf("expected CALENDAR_FAILURE, got %s", xerrors.CodeOf(err))
	}
}

func TestProcessReplyIsFinalized(t *testing.T) {
	orch := New(nil, nil, WithClock(clock))

	msg := message(7, "alice@example.com", "Thanks", "thanks!")
	result, err := orch.Process(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Actions.Reply != Finalize(result.Actions.Reply) {
		t.Fatalf("reply is not in finalized form: %q", result.Actions.Reply)
	}
	if strings.Contains(result.Actions.Reply, "\n\n") {
		t.Fatalf("finalized reply still contains blank lines: %q", result.Actions.Reply)
	}
}

// 独立邮件可以并发处理，互不共享上下文。
func TestProcessConcurrentMessages(t *testing.T) {
	orch := New(nil, nil, WithClock(clock))

	bodies := []string{
		"can we meet tomorrow at 4 PM?",
		"Could you send the latest report please?",
		"Thanks for the update!",
		"the quarterly numbers are attached",
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := message(int64(i+1), "alice@example.com", "subject", bodies[i%len(bodies)])
			result, err := orch.Process(context.Background(), msg)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !result.Actions.Sent {
				t.Errorf("expected sent = true for message %d", i+1)
			}
		}(i)
	}
	wg.Wait()
}
