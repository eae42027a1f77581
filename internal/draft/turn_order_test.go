package draft

import "testing"

// TestNeighborIndex_SingleSeatIsItsOwnNeighbor mirrors game.rs's
// test_next_player_single_player: a 1-seat draft always passes to itself,
// regardless of round parity.
func TestNeighborIndex_SingleSeatIsItsOwnNeighbor(t *testing.T) {
	for round := 0; round < 4; round++ {
		if got := neighborIndex(0, 1, round); got != 0 {
			t.Fatalf("round %d: neighborIndex(0, 1, %d) = %d, want 0", round, round, got)
		}
	}
}

// TestNeighborIndex_AlternatesDirectionPerRound mirrors
// test_next_player_alternates_direction: even rounds pass forward, odd
// rounds pass backward, wrapping at the ends.
func TestNeighborIndex_AlternatesDirectionPerRound(t *testing.T) {
	const n = 4

	forward := []int{1, 2, 3, 0}
	for i, want := range forward {
		if got := neighborIndex(i, n, 0); got != want {
			t.Fatalf("even round: neighborIndex(%d, %d, 0) = %d, want %d", i, n, got, want)
		}
	}

	backward := []int{3, 0, 1, 2}
	for i, want := range backward {
		if got := neighborIndex(i, n, 1); got != want {
			t.Fatalf("odd round: neighborIndex(%d, %d, 1) = %d, want %d", i, n, got, want)
		}
	}
}
