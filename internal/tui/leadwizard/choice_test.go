package leadwizard

import (
	"bytes"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyUp       = tea.KeyPressMsg{Code: tea.KeyUp}
	keyDown     = tea.KeyPressMsg{Code: tea.KeyDown}
	keySpace    = tea.KeyPressMsg{Code: tea.KeySpace}
	keyEnter    = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyTab      = tea.KeyPressMsg{Code: tea.KeyTab}
	keyShiftTab = tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	keyEsc      = tea.KeyPressMsg{Code: tea.KeyEscape}
	keyCtrlS    = tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	keyCtrlC    = tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
)

// plain strips ANSI sequences from rendered output.
func plain(s string) string {
	var buf bytes.Buffer
	w := &colorprofile.Writer{Forward: &buf, Profile: colorprofile.NoTTY}
	_, _ = w.Write([]byte(s))
	return buf.String()
}

func testOptions() []Option {
	return []Option{
		{Value: "landing-page", Label: "Landing page"},
		{Value: "online-store", Label: "Online store"},
		{Value: "corporate-site", Label: "Corporate site"},
	}
}

func TestChoiceList_IgnoresKeysWhenBlurred(t *testing.T) {
	c := NewChoiceList(testOptions(), true)

	assert.False(t, c.Update(keySpace))
	assert.Empty(t, c.Selected())
}

func TestChoiceList_MultiToggle(t *testing.T) {
	c := NewChoiceList(testOptions(), true)
	c.Focus()

	require.True(t, c.Update(keySpace))
	c.Update(keyDown)
	c.Update(keyDown)
	require.True(t, c.Update(keySpace))
	assert.Equal(t, []string{"landing-page", "corporate-site"}, c.Selected())

	// Toggling again removes the option.
	c.Update(keySpace)
	assert.Equal(t, []string{"landing-page"}, c.Selected())
}

func TestChoiceList_SingleReplaces(t *testing.T) {
	c := NewChoiceList(testOptions(), false)
	c.Focus()

	c.Update(keySpace)
	c.Update(keyDown)
	c.Update(keySpace)

	assert.Equal(t, "online-store", c.Value())
	assert.Equal(t, []string{"online-store"}, c.Selected())
}

func TestChoiceList_CursorBounds(t *testing.T) {
	c := NewChoiceList(testOptions(), false)
	c.Focus()

	c.Update(keyUp)
	assert.Equal(t, 0, c.cursor)

	for range 10 {
		c.Update(keyDown)
	}
	assert.Equal(t, 2, c.cursor)
}

func TestChoiceList_SetSelectedSingle(t *testing.T) {
	c := NewChoiceList(testOptions(), false)
	c.SetSelected([]string{"landing-page", "online-store"})
	assert.Equal(t, []string{"online-store"}, c.Selected())

	c.Clear()
	assert.Empty(t, c.Value())
	assert.Equal(t, 0, c.cursor)
}

func TestChoiceList_View(t *testing.T) {
	multi := NewChoiceList(testOptions(), true)
	multi.Focus()
	multi.SetSelected([]string{"online-store"})

	out := plain(multi.View())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "› [ ] Landing page", lines[0])
	assert.Equal(t, "  [x] Online store", lines[1])

	single := NewChoiceList(testOptions(), false)
	single.SetSelected([]string{"landing-page"})
	out = plain(single.View())
	assert.Contains(t, out, "(•) Landing page")
	assert.Contains(t, out, "( ) Online store")
	assert.NotContains(t, out, "›")
}
