package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NamedResource is PokeAPI's {name, url} reference.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID returns the trailing numeric segment of URL, or 0 when absent.
func (r NamedResource) ID() int {
	trimmed := strings.TrimSuffix(r.URL, "/")
	idx := strings.LastIndex(trimmed, "/")
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// PokedexEntry is one row of a regional listing.
type PokedexEntry struct {
	EntryNumber int           `json:"entry_number"`
	Species     NamedResource `json:"pokemon_species"`
}

// Pokedex mirrors /pokedex/{id}/.
type Pokedex struct {
	ID      int            `json:"id"`
	Name    string         `json:"name"`
	Entries []PokedexEntry `json:"pokemon_entries"`
}

// PokemonType is one slot of a Pokémon's typing.
type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// Pokemon mirrors the parts of /pokemon/{id}/ the tracker uses.
type Pokemon struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Types []PokemonType `json:"types"`
}

// TypeNames returns type names in slot order.
func (p Pokemon) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		names = append(names, t.Type.Name)
	}
	return names
}

// Species mirrors the parts of /pokemon-species/{id}/ the tracker uses.
type Species struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Color NamedResource `json:"color"`
}

func PokedexPath(id int) string { return fmt.Sprintf("pokedex/%d/", id) }
func PokemonPath(id int) string { return fmt.Sprintf("pokemon/%d/", id) }
func SpeciesPath(id int) string { return fmt.Sprintf("pokemon-species/%d/", id) }

// Pokedex fetches a regional listing.
func (c *Client) Pokedex(ctx context.Context, id int) (*Pokedex, error) {
	var payload Pokedex
	if err := c.getJSON(ctx, PokedexPath(id), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Pokemon fetches a Pokémon by national id.
func (c *Client) Pokemon(ctx context.Context, id int) (*Pokemon, error) {
	var payload Pokemon
	if err := c.getJSON(ctx, PokemonPath(id), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Species fetches species data by national id.
func (c *Client) Species(ctx context.Context, id int) (*Species, error) {
	var payload Species
	if err := c.getJSON(ctx, SpeciesPath(id), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	body, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// DecodeBatch decodes non-nil batch items into T. Entries that are nil or
// fail to decode stay nil.
func DecodeBatch[T any](items []json.RawMessage) []*T {
	out := make([]*T, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out[i] = &v
	}
	return out
}
