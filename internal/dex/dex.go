// Package dex describes the regional Pokédexes the tracker lists and the
// small helpers used to render and search them.
package dex

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Pokedex is a regional listing served by PokeAPI.
type Pokedex struct {
	Label string
	Name  string
	ID    int
}

// Path returns the PokeAPI path of the listing.
func (p Pokedex) Path() string {
	return fmt.Sprintf("pokedex/%d/", p.ID)
}

var pokedexes = []Pokedex{
	{Label: "Paldea", Name: "paldea", ID: 31},
	{Label: "Kitakami", Name: "kitakami", ID: 32},
	{Label: "Blueberry Academy", Name: "blueberry-academy", ID: 33},
}

// All returns the known Pokédexes in display order.
func All() []Pokedex {
	return slices.Clone(pokedexes)
}

// Default is the Pokédex shown when no preference exists.
func Default() Pokedex {
	return pokedexes[0]
}

// Lookup finds a Pokédex by name or label, case-insensitively.
func Lookup(name string) (Pokedex, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range pokedexes {
		if p.Name == name || strings.ToLower(p.Label) == name {
			return p, true
		}
	}
	return Pokedex{}, false
}

// Index returns the position of name in All, or 0 when unknown.
func Index(name string) int {
	for i, p := range pokedexes {
		if p.Name == name {
			return i
		}
	}
	return 0
}

// Entry is one row of a Pokédex listing.
type Entry struct {
	Number     int
	Name       string
	NationalID int
}

// Match reports whether entry satisfies a search query. A query matches
// a name substring, or the entry number once leading zeros are stripped.
func Match(entry Entry, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(strings.ToLower(entry.Name), q) {
		return true
	}
	number := strings.TrimLeft(q, "0")
	if number == "" {
		number = "0"
	}
	return strconv.Itoa(entry.Number) == number
}

// Filter returns the entries matching query, in order.
func Filter(entries []Entry, query string) []Entry {
	if strings.TrimSpace(query) == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if Match(e, query) {
			out = append(out, e)
		}
	}
	return out
}

// FormatNumber pads n to three digits.
func FormatNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

// Capitalize upper-cases the first letter of each hyphen separated word,
// so "iron-treads" renders as "Iron-Treads".
func Capitalize(name string) string {
	parts := strings.Split(name, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "-")
}

const spriteBase = "https://raw.githubusercontent.com/PokeAPI/sprites/refs/heads/master/sprites/pokemon/other/home/"

// SpriteURL returns the HOME render for a national id.
func SpriteURL(nationalID int, shiny bool) string {
	if shiny {
		return fmt.Sprintf("%sshiny/%d.png", spriteBase, nationalID)
	}
	return fmt.Sprintf("%s%d.png", spriteBase, nationalID)
}
