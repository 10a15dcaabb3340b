package domain

import "testing"

func TestAllowedTransitions(t *testing.T) {
	cases := []struct {
		from CallState
		to   CallState
		ok   bool
	}{
		{from: CallInitiated, to: CallRinging, ok: true},
		{from: CallInitiated, to: CallMissed, ok: true},
		{from: CallRinging, to: CallOngoing, ok: true},
		{from: CallRinging, to: CallMissed, ok: true},
		{from: CallRinging, to: CallRejected, ok: true},
		{from: CallOngoing, to: CallCompleted, ok: true},
		{from: CallInitiated, to: CallOngoing, ok: false},
		{from: CallInitiated, to: CallCompleted, ok: false},
		{from: CallOngoing, to: CallMissed, ok: false},
		{from: CallCompleted, to: CallOngoing, ok: false},
		{from: CallMissed, to: CallRinging, ok: false},
		{from: CallRejected, to: CallOngoing, ok: false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Fatalf("transition %s -> %s expected allowed=%v got=%v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []CallState{CallCompleted, CallMissed, CallRejected} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
		if len(AllowedTransitions[s]) != 0 {
			t.Fatalf("%s must have no outgoing transitions", s)
		}
	}
	for _, s := range []CallState{CallInitiated, CallRinging, CallOngoing} {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}

func TestParseCallType(t *testing.T) {
	if _, ok := ParseCallType("audio"); !ok {
		t.Fatal("audio must parse")
	}
	if _, ok := ParseCallType("video"); !ok {
		t.Fatal("video must parse")
	}
	if _, ok := ParseCallType("hologram"); ok {
		t.Fatal("unknown call type must not parse")
	}
}

func TestParseUserID(t *testing.T) {
	if _, err := ParseUserID(""); err == nil {
		t.Fatal("empty user id must be rejected")
	}
	long := make([]byte, MaxUserIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := ParseUserID(string(long)); err == nil {
		t.Fatal("oversized user id must be rejected")
	}
	if _, err := ParseUserID("alice"); err != nil {
		t.Fatalf("valid user id rejected: %v", err)
	}
}
