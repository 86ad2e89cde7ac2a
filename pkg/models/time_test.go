package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNowStrictlyIncreasing(t *testing.T) {
	prev := Now()
	for i := 0; i < 1000; i++ {
		n := Now()
		if !n.After(prev) {
			t.Fatalf("Now() not strictly increasing: %d then %d", prev, n)
		}
		prev = n
	}
}

func TestNanoUnmarshalForms(t *testing.T) {
	ref := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   string
		want Nano
	}{
		{"nanoseconds", "1714564800000000000", At(ref)},
		{"milliseconds", "1714564800000", At(ref)},
		{"seconds", "1714564800", At(ref)},
		{"numeric string", `"1714564800000"`, At(ref)},
		{"rfc3339", `"2024-05-01T12:00:00Z"`, At(ref)},
		{"null", "null", 0},
		{"empty string", `""`, 0},
		{"zero", "0", 0},
	}
	for _, c := range cases {
		var n Nano
		if err := json.Unmarshal([]byte(c.in), &n); err != nil {
			t.Fatalf("%s: unmarshal %q: %v", c.name, c.in, err)
		}
		if n != c.want {
			t.Fatalf("%s: got %d, want %d", c.name, n, c.want)
		}
	}
}

func TestNanoUnmarshalRejectsGarbage(t *testing.T) {
	var n Nano
	if err := json.Unmarshal([]byte(`"not-a-time"`), &n); err == nil {
		t.Fatal("expected error for non-time string")
	}
}

func TestNanoMarshalRoundTrip(t *testing.T) {
	in := Now()
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Nano
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip changed value: %d != %d", out, in)
	}
}
