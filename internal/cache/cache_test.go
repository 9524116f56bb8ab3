package cache

import "testing"

func TestDigestDeterministic(t *testing.T) {
	type req struct {
		Area string `json:"area"`
		Seed int64  `json:"seed"`
	}
	a, err := Digest("plan", req{Area: "north", Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Digest("plan", req{Area: "north", Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("same request hashed differently: %s vs %s", a, b)
	}

	c, _ := Digest("plan", req{Area: "north", Seed: 43})
	if a == c {
		t.Fatal("different requests collided")
	}

	d, _ := Digest("run", req{Area: "north", Seed: 42})
	if a == d {
		t.Fatal("prefix not part of the key")
	}
}
