package core

import "testing"

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash("problem", []int{1, 2}, map[string]string{"k": "v"})
	b := ContentHash("problem", []int{1, 2}, map[string]string{"k": "v"})
	if !a.Equals(b) {
		t.Errorf("equal inputs hashed differently: %s vs %s", a, b)
	}
}

func TestContentHashSensitiveToChanges(t *testing.T) {
	base := ContentHash("problem", []int{1, 2})
	changed := ContentHash("problem", []int{1, 3})
	if base.Equals(changed) {
		t.Error("different inputs produced the same hash")
	}
}

func TestContentHashArgumentOrderMatters(t *testing.T) {
	a := ContentHash("x", "y")
	b := ContentHash("y", "x")
	if a.Equals(b) {
		t.Error("argument order should change the hash")
	}
}

func TestHashIsEmpty(t *testing.T) {
	var empty Hash
	if !empty.IsEmpty() {
		t.Error("zero hash should be empty")
	}
	if NewHash([]byte("data")).IsEmpty() {
		t.Error("computed hash should not be empty")
	}
}
