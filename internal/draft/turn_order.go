package draft

// rotationDirection returns +1 for even-numbered rounds (0, 2, 4, ...) and
// -1 for odd-numbered rounds, per the booster-draft convention that pass
// direction alternates each round (P4).
func rotationDirection(round int) int {
	if round%2 == 0 {
		return 1
	}
	return -1
}

// neighborIndex returns the seat index that receives a pack passed by the
// seat at index i, in a draft of n seats, for the given round.
func neighborIndex(i, n, round int) int {
	d := rotationDirection(round)
	return ((i+d)%n + n) % n
}
