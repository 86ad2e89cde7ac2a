package utils

import "testing"

func TestGenIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := GenID()
		if id == "" {
			t.Fatal("empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id after %d draws: %s", i, id)
		}
		seen[id] = true
	}
}

func TestGenCode(t *testing.T) {
	a := GenCode()
	b := GenCode()
	if len(a) != 8 || len(b) != 8 {
		t.Fatalf("codes must be 8 chars: %q %q", a, b)
	}
	if a == b {
		t.Fatalf("consecutive codes collided: %s", a)
	}
}
