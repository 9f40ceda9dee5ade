package dex

import (
	"fmt"
	"strconv"
	"strings"
)

// Generation is a contiguous span of national ids.
type Generation struct {
	Number int
	Region string
	First  int
	Last   int
}

var generations = []Generation{
	{1, "Kanto", 1, 151},
	{2, "Johto", 152, 251},
	{3, "Hoenn", 252, 386},
	{4, "Sinnoh", 387, 493},
	{5, "Unova", 494, 649},
	{6, "Kalos", 650, 721},
	{7, "Alola", 722, 809},
	{8, "Galar", 810, 905},
	{9, "Paldea", 906, 1025},
}

// Generations returns generations I through IX.
func Generations() []Generation {
	out := make([]Generation, len(generations))
	copy(out, generations)
	return out
}

// GenerationByNumber returns generation n (1-based).
func GenerationByNumber(n int) (Generation, error) {
	if n < 1 || n > len(generations) {
		return Generation{}, fmt.Errorf("unknown generation %d", n)
	}
	return generations[n-1], nil
}

// ParseRange parses "a-b" or a single id into an inclusive range.
func ParseRange(value string) (int, int, error) {
	value = strings.TrimSpace(value)
	lo, hi, found := strings.Cut(value, "-")
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q", value)
	}
	if !found {
		return start, start, nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q", value)
	}
	if end < start {
		return 0, 0, fmt.Errorf("invalid range %q: end before start", value)
	}
	return start, end, nil
}
