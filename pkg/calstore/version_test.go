package calstore

import "testing"

func TestVersionCounter_ReserveIsMonotone(t *testing.T) {
	e := newTestEngine(t)

	tx, err := e.db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	v1, err := e.version.Reserve(tx)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := e.version.Reserve(tx)
	if err != nil {
		t.Fatal(err)
	}
	tx.Commit()

	if v2 != v1+1 {
		t.Fatalf("Reserve not monotone: %d then %d", v1, v2)
	}

	cur, err := e.version.Current()
	if err != nil {
		t.Fatal(err)
	}
	if cur != v2 {
		t.Fatalf("Current() = %d, want %d", cur, v2)
	}
}

func TestVersionCounter_Current_StartsAtZero(t *testing.T) {
	e := newTestEngine(t)
	cur, err := e.version.Current()
	if err != nil {
		t.Fatal(err)
	}
	if cur != 0 {
		t.Fatalf("Current() = %d, want 0 on a fresh database", cur)
	}
}
