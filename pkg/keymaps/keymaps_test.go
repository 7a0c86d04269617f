package keymaps

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestBuildKeyMap_Defaults(t *testing.T) {
	km := BuildKeyMap(nil)

	assert.Equal(t, []string{" ", "space", "x"}, km.ToggleStatus.Keys())
	assert.Equal(t, "space", km.ToggleStatus.Help().Key)
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, km.ToggleStatus))
	assert.Equal(t, "a", km.AddTask.Help().Key)
	assert.Equal(t, "add task", km.AddTask.Help().Desc)
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, km.QuitApp))
}

func TestBuildKeyMap_Overrides(t *testing.T) {
	km := BuildKeyMap(map[string]string{
		"addtask":    "+, ctrl+n",
		"DeleteTask": "",
		"Unknown":    "z",
	})

	assert.Equal(t, []string{"+", "ctrl+n"}, km.AddTask.Keys())
	assert.Equal(t, []string{"d"}, km.DeleteTask.Keys(), "empty override keeps the default")
}

func TestParseKeyBinding_BlankEntries(t *testing.T) {
	b := parseKeyBinding(" , ", "enter", "open")
	assert.Equal(t, []string{"enter"}, b.Keys())
}

func TestDefaultMappingsCoverEveryAction(t *testing.T) {
	km := KeyMap{}
	defaults := GetDefaultKeyMappings()
	for action := range km.bindings() {
		assert.Contains(t, defaults, action)
	}
	assert.Len(t, defaults, len(km.bindings()))
}
