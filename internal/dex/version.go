package dex

import "slices"

// Version names the game a Paldea entry is exclusive to.
type Version string

const (
	Both    Version = ""
	Scarlet Version = "scarlet"
	Violet  Version = "violet"
)

var (
	scarletOnly = []int{143, 144, 166, 226, 227, 313, 316, 317, 318, 319, 337, 338, 370, 371, 372, 376, 377, 378, 379, 380, 381, 397, 399}
	violetOnly  = []int{114, 115, 139, 140, 167, 276, 277, 278, 305, 306, 307, 314, 320, 339, 340, 382, 383, 384, 385, 386, 387, 398, 400}
)

// VersionOf returns the exclusive version of a Paldea entry number.
func VersionOf(entryNumber int) Version {
	if slices.Contains(scarletOnly, entryNumber) {
		return Scarlet
	}
	if slices.Contains(violetOnly, entryNumber) {
		return Violet
	}
	return Both
}
