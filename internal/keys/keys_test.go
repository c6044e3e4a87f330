package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	k := DefaultKeyMap()

	press := func(r rune) tea.KeyMsg {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
	}

	assert.True(t, key.Matches(press('k'), k.Up))
	assert.True(t, key.Matches(press('j'), k.Down))
	assert.True(t, key.Matches(press('r'), k.Refresh))
	assert.True(t, key.Matches(press('a'), k.ToggleAuto))
	assert.True(t, key.Matches(press('q'), k.Quit))
	assert.True(t, key.Matches(press('/'), k.Search))
	assert.True(t, key.Matches(press('n'), k.NextMatch))
	assert.True(t, key.Matches(press('N'), k.PrevMatch))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, k.Enter))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, k.Back))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyBackspace}, k.Back))
	assert.False(t, key.Matches(press('x'), k.Quit))
}

func TestHelpListings(t *testing.T) {
	k := DefaultKeyMap()

	assert.NotEmpty(t, k.ShortHelp())
	full := k.FullHelp()
	assert.Len(t, full, 4)
	for _, group := range full {
		assert.NotEmpty(t, group)
	}
}
