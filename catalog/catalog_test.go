package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	require.Equal(t, 6, c.Len())

	var ids []string
	for _, e := range c.Entries() {
		ids = append(ids, e.ID)
		assert.NotEmpty(t, e.Name)
		assert.NotEmpty(t, e.Source)
		assert.NotEmpty(t, e.Icon)
	}
	assert.Equal(t, []string{"rain", "waves", "forest", "whitenoise", "fireplace", "wind"}, ids)

	e, ok := c.At(1)
	require.True(t, ok)
	assert.Equal(t, "Ocean Waves", e.Name)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []SoundEntry
	}{
		{"empty", nil},
		{"no id or name", []SoundEntry{{Source: "a.mp3"}}},
		{"no source", []SoundEntry{{ID: "rain"}}},
		{"duplicate", []SoundEntry{{ID: "rain", Source: "a.mp3"}, {ID: "rain", Source: "b.mp3"}}},
		{"derived duplicate", []SoundEntry{{ID: "ocean-waves", Source: "a.mp3"}, {Name: "Ocean Waves", Source: "b.mp3"}}},
		{"unusable name", []SoundEntry{{Name: "🔥🔥", Source: "a.mp3"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.entries...)
			require.Error(t, err)
			assert.Nil(t, c)
		})
	}

	_, err := New()
	assert.True(t, errors.Is(err, ErrEmpty))

	_, err = New(SoundEntry{ID: "rain"})
	var entryErr *EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, 0, entryErr.Position)
}

func TestNew_DerivesMissingFields(t *testing.T) {
	c, err := New(
		SoundEntry{Name: "Café Chatter", Source: "cafe.ogg"},
		SoundEntry{ID: "brown_noise", Source: "brown.wav"},
	)
	require.NoError(t, err)

	first, _ := c.At(0)
	assert.Equal(t, "cafe-chatter", first.ID)

	second, _ := c.At(1)
	assert.Equal(t, "Brown Noise", second.Name)

	i, ok := c.Index("cafe-chatter")
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestCatalog_At_OutOfRange(t *testing.T) {
	c := Default()

	_, ok := c.At(-1)
	assert.False(t, ok)
	_, ok = c.At(c.Len())
	assert.False(t, ok)
}

func TestCatalog_EntriesIsCopy(t *testing.T) {
	c := Default()

	entries := c.Entries()
	entries[0].Name = "Changed"

	e, _ := c.At(0)
	assert.Equal(t, "Rain", e.Name)
}

func TestCatalog_Sources(t *testing.T) {
	c, err := New(SoundEntry{ID: "a", Source: "a.mp3"}, SoundEntry{ID: "b", Source: "b.wav"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp3", "b.wav"}, c.Sources())
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Rain", "rain"},
		{"Ocean  Waves", "ocean-waves"},
		{"Forêt d'été", "foret-dete"},
		{"  White Noise! ", "white-noise"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Slug(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
