package dump

import (
	"testing"

	"github.com/desertthunder/tripx/internal/models"
)

func TestAccumulator(t *testing.T) {
	var acc Accumulator

	if acc.Add(flight("orphan")) {
		t.Fatal("Add() with no open group should report false")
	}

	acc.Open(trip("t1"))
	acc.Add(flight("f1"))
	acc.Add(flight("f2"))
	acc.Open(trip("t2"))
	if acc.Pending() != 1 {
		t.Errorf("expected first group flushed on second open, got %d pending", acc.Pending())
	}
	acc.Open(trip("t3"))
	acc.Add(flight("f3"))

	groups := acc.Finish()
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	wantFlights := []int{2, 0, 1}
	for i, g := range groups {
		if want := "t" + string(rune('1'+i)); g.Trip.Origin != want {
			t.Errorf("group %d: trip %s, want %s", i, g.Trip.Origin, want)
		}
		if len(g.Flights) != wantFlights[i] {
			t.Errorf("group %d: %d flights, want %d", i, len(g.Flights), wantFlights[i])
		}
	}

	if acc.HasOpen() || len(acc.Finish()) != 0 {
		t.Error("accumulator should be empty after Finish")
	}
}

func trip(origin string) models.Trip { return models.Trip{Origin: origin} }

func flight(number string) models.Flight { return models.Flight{FlightNumber: number} }
