package newsletter

import "testing"

func TestDecide(t *testing.T) {
	cases := []struct {
		name      string
		flag      bool
		status    ContactStatus
		subscribe bool
		outcome   Outcome
	}{
		{"flag off wins", false, StatusAbsent, false, Skip(ReasonFeatureDisabled)},
		{"flag off with subscribed", false, StatusSubscribed, false, Skip(ReasonFeatureDisabled)},
		{"opted out", true, StatusUnsubscribed, false, Skip(ReasonUserOptedOut)},
		{"already subscribed", true, StatusSubscribed, false, Skip(ReasonAlreadySubscribed)},
		{"absent", true, StatusAbsent, true, SubscribedOutcome()},
		{"pending", true, StatusPending, false, Skip(ReasonUnknownStatus)},
		{"future status", true, ContactStatus("BOUNCED"), false, Skip(ReasonUnknownStatus)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.flag, tc.status)
			if d.Subscribe != tc.subscribe {
				t.Fatalf("subscribe: got=%v want=%v", d.Subscribe, tc.subscribe)
			}
			if d.Outcome != tc.outcome {
				t.Fatalf("outcome: got=%+v want=%+v", d.Outcome, tc.outcome)
			}
		})
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct{ in, first, last string }{
		{"", "", ""},
		{"Ada", "Ada", ""},
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Juan Carlos de la Cruz", "Juan", "Carlos de la Cruz"},
		{"  Ada   King  ", "Ada", "King"},
	}
	for _, tc := range cases {
		first, last := SplitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("SplitName(%q): got=(%q,%q) want=(%q,%q)", tc.in, first, last, tc.first, tc.last)
		}
	}
}

func TestUIStatus(t *testing.T) {
	if s := UIStatus(StatusSubscribed); s == nil || *s != "subscribed" {
		t.Fatalf("subscribed: %v", s)
	}
	if s := UIStatus(StatusUnsubscribed); s == nil || *s != "unsubscribed" {
		t.Fatalf("unsubscribed: %v", s)
	}
	if UIStatus(StatusPending) != nil || UIStatus(StatusAbsent) != nil {
		t.Fatalf("expected nil for pending/absent")
	}
}

func TestOutcomeLabel(t *testing.T) {
	if got := SubscribedOutcome().Label(); got != "subscribed" {
		t.Fatalf("got=%q", got)
	}
	if got := Skip(ReasonUserOptedOut).Label(); got != "skipped:user-opted-out" {
		t.Fatalf("got=%q", got)
	}
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"ada@example.com", " Ada.King+news@Example.co.uk "} {
		if !ValidEmail(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "ada", "ada@", "@example.com", "ada example@x.com"} {
		if ValidEmail(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("NormalizeEmail: got=%q", got)
	}
}
