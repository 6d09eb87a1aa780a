// Package catalog holds the fixed, ordered set of ambient sounds the player can choose from.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmpty is returned when a catalog would contain no sounds
var ErrEmpty = errors.New("catalog: no sounds")

// SoundEntry describes one selectable sound
type SoundEntry struct {
	ID     string
	Name   string
	Source string
	Icon   string
}

// Catalog is an immutable, order-stable list of sounds
type Catalog struct {
	entries []SoundEntry
	index   map[string]int
}

// EntryError reports an invalid entry at a catalog position
type EntryError struct {
	Position int
	Message  string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("catalog entry %d: %s", e.Position, e.Message)
}

// New validates entries and builds a catalog. Missing IDs are derived from
// names and missing names from IDs.
func New(entries ...SoundEntry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{
		entries: make([]SoundEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		e.Name = strings.TrimSpace(e.Name)
		e.Source = strings.TrimSpace(e.Source)

		if e.ID == "" && e.Name == "" {
			return nil, &EntryError{Position: i, Message: "id or name is required"}
		}
		if e.ID == "" {
			id, err := Slug(e.Name)
			if err != nil {
				return nil, &EntryError{Position: i, Message: err.Error()}
			}
			e.ID = id
		}
		if e.Name == "" {
			e.Name = DisplayName(e.ID)
		}
		if e.Source == "" {
			return nil, &EntryError{Position: i, Message: fmt.Sprintf("sound %q has no source", e.ID)}
		}
		if _, dup := c.index[e.ID]; dup {
			return nil, &EntryError{Position: i, Message: fmt.Sprintf("duplicate id %q", e.ID)}
		}

		c.index[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// Default returns the built-in six sounds
func Default() *Catalog {
	c, err := New(defaultEntries...)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultEntries = []SoundEntry{
	{ID: "rain", Name: "Rain", Source: "light-rain.mp3", Icon: "🌧️"},
	{ID: "waves", Name: "Ocean Waves", Source: "ocean-waves.mp3", Icon: "🌊"},
	{ID: "forest", Name: "Forest", Source: "forest.mp3", Icon: "🌳"},
	{ID: "whitenoise", Name: "White Noise", Source: "white-noise.mp3", Icon: "🌫️"},
	{ID: "fireplace", Name: "Fireplace", Source: "fireplace-crackling.mp3", Icon: "🔥"},
	{ID: "wind", Name: "Wind", Source: "soft-wind.mp3", Icon: "💨"},
}

// Len returns the number of sounds
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the sound at position i
func (c *Catalog) At(i int) (SoundEntry, bool) {
	if i < 0 || i >= len(c.entries) {
		return SoundEntry{}, false
	}
	return c.entries[i], true
}

// Index returns the position of the sound with the given id
func (c *Catalog) Index(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Entries returns a copy of all sounds in order
func (c *Catalog) Entries() []SoundEntry {
	out := make([]SoundEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Sources returns the source of every sound in order
func (c *Catalog) Sources() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Source
	}
	return out
}

// Slug turns a display name into an ASCII identifier: diacritics are dropped,
// symbols removed, and spaces become dashes.
func Slug(name string) (string, error) {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
	)
	normalized, _, err := transform.String(t, name)
	if err != nil {
		return "", err
	}

	filtered := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, normalized)

	slug := strings.Join(strings.Fields(strings.ToLower(filtered)), "-")
	if slug == "" {
		return "", fmt.Errorf("name %q has no usable characters", name)
	}
	return slug, nil
}

// DisplayName title-cases an identifier, treating dashes and underscores as spaces
func DisplayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
