package match

// The 8 winning triples of a 3x3 board: three rows, three columns, two
// diagonals. Cells are indexed 0-8, row-major.
var winningTriples = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate reports whether the given move set contains a winning triple and
// returns the first triple it completes. Only the mover's own moves are
// examined; an opponent's win surfaces on the opponent's own turn.
func Evaluate(moves []int) ([3]int, bool) {
	if len(moves) < 3 {
		return [3]int{}, false
	}
	held := make(map[int]bool, len(moves))
	for _, m := range moves {
		held[m] = true
	}
	for _, triple := range winningTriples {
		if held[triple[0]] && held[triple[1]] && held[triple[2]] {
			return triple, true
		}
	}
	return [3]int{}, false
}
