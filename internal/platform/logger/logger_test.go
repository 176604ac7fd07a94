package logger

import "testing"

func TestRedactorValue(t *testing.T) {
	r := redactor{enabled: true}
	cases := []struct {
		key  string
		in   interface{}
		want interface{}
	}{
		{"email", "reader@example.com", "r***@example.com"},
		{"subscriber_email", "not-an-address", redacted},
		{"api_key", "abc", redacted},
		{"session_token", "abc", redacted},
		{"authorization", "Bearer abc", redacted},
		{"patent_number", "US123", "US123"},
		{"note", "aaaaaaaaaaaa.bbbbbbbbbbbb.cccc", redacted},
	}
	for _, tc := range cases {
		if got := r.value(tc.key, tc.in); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.key, got, tc.want)
		}
	}
}

func TestRedactorHashesIdentifiers(t *testing.T) {
	r := redactor{enabled: true}
	for _, key := range []string{"user_id", "session_id", "client_ip", "ip"} {
		a, b := r.value(key, "x-1"), r.value(key, "x-1")
		s, ok := a.(string)
		if !ok || a != b || len(s) != len("hash:")+12 {
			t.Fatalf("%s: unstable or malformed hash %v vs %v", key, a, b)
		}
	}
	salted := redactor{enabled: true, salt: "pepper"}
	if salted.hash("u-1") == r.hash("u-1") {
		t.Fatalf("salt should change the hash")
	}
}

func TestScrubKeepsOddTrailingValue(t *testing.T) {
	out := scrub([]interface{}{"email", "a@b.co", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("got=%v", out)
	}
}

func TestNopLogger(t *testing.T) {
	Nop().With("component", "test").Info("hello", "k", "v")
}
