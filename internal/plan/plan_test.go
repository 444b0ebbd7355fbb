package plan

import (
	"reflect"
	"testing"

	"SmartMailr/internal/intent"
)

func TestBuildFixedTable(t *testing.T) {
	cases := []struct {
		it   intent.Intent
		want []Step
	}{
		{intent.MeetingRequest, []Step{StepExtractDatetime, StepCreateEvent, StepDraftReply}},
		{intent.InfoRequest, []Step{StepFindAnswer, StepDraftReply}},
		{intent.Acknowledgement, []Step{StepDraftAck}},
		{intent.General, []Step{StepDraftGeneralReply}},
	}
	for _, tc := range cases {
		t.Run(string(tc.it), func(t *testing.T) {
			got := Build(tc.it)
			if got.Intent != tc.it {
				t.Fatalf("unexpected intent: %s", got.Intent)
			}
			if !reflect.DeepEqual(got.Steps, tc.want) {
				t.Fatalf("unexpected steps: %v, want %v", got.Steps, tc.want)
			}
		})
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	first := Build(intent.MeetingRequest)
	second := Build(intent.MeetingRequest)
	if !reflect.DeepEqual(first.Steps, second.Steps) {
		t.Fatalf("step sequence changed between calls: %v vs %v", first.Steps, second.Steps)
	}
}

func TestBuildReturnsCopy(t *testing.T) {
	p := Build(intent.MeetingRequest)
	p.Steps[0] = StepDraftReply

	fresh := Build(intent.MeetingRequest)
	if fresh.Steps[0] != StepExtractDatetime {
		t.Fatalf("lookup table mutated through returned plan")
	}
}

func TestBuildUnknownIntentFallsBack(t *testing.T) {
	got := Build(intent.Intent("spam"))
	if got.Intent != intent.General {
		t.Fatalf("unexpected intent: %s", got.Intent)
	}
	if !reflect.DeepEqual(got.Steps, []Step{StepDraftGeneralReply}) {
		t.Fatalf("unexpected steps: %v", got.Steps)
	}
}

func TestExecutable(t *testing.T) {
	executable := map[Step]bool{
		StepExtractDatetime:   true,
		StepCreateEvent:       true,
		StepFindAnswer:        false,
		StepDraftReply:        false,
		StepDraftAck:          false,
		StepDraftGeneralReply: false,
	}
	for step, want := range executable {
		if step.Executable() != want {
			t.Fatalf("Executable(%s) = %v, want %v", step, !want, want)
		}
	}
}
