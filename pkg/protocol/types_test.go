package protocol

import "testing"

func TestDriftResultConstructors(t *testing.T) {
	if r := UpToDateResult(); r.Status != UpToDate {
		t.Errorf("Expected UpToDate, got %v", r.Status)
	}

	r := DriftedResult("13943510")
	if r.Status != Drifted || r.Remote != "13943510" {
		t.Errorf("Unexpected drifted result %+v", r)
	}

	u := UnknownResult("registry unreachable")
	if u.Status != DriftUnknown || u.Reason != "registry unreachable" {
		t.Errorf("Unexpected unknown result %+v", u)
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		OutcomeUpdateTriggered: "update-triggered",
		OutcomeProcessDied:     "process-died",
		OutcomeConfigError:     "config-error",
		OutcomeCanceled:        "canceled",
		Outcome(99):            "unknown",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", in, got, want)
		}
	}
}
