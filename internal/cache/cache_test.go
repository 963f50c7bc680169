package cache

import "testing"

func TestEntryIsUniformTrueForConstantData(t *testing.T) {
	e := &Entry{Data: []float32{5, 5, 5, 5}}
	if !e.IsUniform() {
		t.Fatalf("expected uniform entry to report true")
	}
}

func TestEntryIsUniformFalseForVaryingData(t *testing.T) {
	e := &Entry{Data: []float32{5, 5, 6, 5}}
	if e.IsUniform() {
		t.Fatalf("expected varying entry to report false")
	}
}

func TestEntryIsUniformTrueForEmptyData(t *testing.T) {
	e := &Entry{}
	if !e.IsUniform() {
		t.Fatalf("expected empty entry to report uniform")
	}
}

func TestEntryBytesAccountsForDataAndOverhead(t *testing.T) {
	e := &Entry{Data: make([]float32, 256)}
	if got, want := e.Bytes(), 4*256+64; got != want {
		t.Fatalf("Bytes() = %d, want %d", got, want)
	}
}
