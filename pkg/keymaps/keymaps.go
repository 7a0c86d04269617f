package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":            {"?", "show/hide commands"},
	"QuitApp":             {"q,ctrl+c", "quit"},
	"ToggleStatus":        {"space,x", "toggle done"},
	"AddTask":             {"a", "add task"},
	"EditTask":            {"e", "edit task"},
	"DeleteTask":          {"d", "delete task"},
	"ShowDetail":          {"enter", "show task details"},
	"CycleStatusFilter":   {"f", "cycle status filter"},
	"CycleCategoryFilter": {"tab", "cycle category filter"},
	"ManageCategories":    {"c", "manage categories"},
	"AddCategory":         {"n", "new category"},
	"DeleteCategory":      {"x,delete", "delete category"},
	"Reload":              {"ctrl+r", "reload"},
	"Back":                {"esc", "back"},
}

type KeyMap struct {
	ShowHelp            key.Binding
	QuitApp             key.Binding
	ToggleStatus        key.Binding
	AddTask             key.Binding
	EditTask            key.Binding
	DeleteTask          key.Binding
	ShowDetail          key.Binding
	CycleStatusFilter   key.Binding
	CycleCategoryFilter key.Binding
	ManageCategories    key.Binding
	AddCategory         key.Binding
	DeleteCategory      key.Binding
	Reload              key.Binding
	Back                key.Binding
}

// bindings maps each action name to its field in km.
func (km *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"ShowHelp":            &km.ShowHelp,
		"QuitApp":             &km.QuitApp,
		"ToggleStatus":        &km.ToggleStatus,
		"AddTask":             &km.AddTask,
		"EditTask":            &km.EditTask,
		"DeleteTask":          &km.DeleteTask,
		"ShowDetail":          &km.ShowDetail,
		"CycleStatusFilter":   &km.CycleStatusFilter,
		"CycleCategoryFilter": &km.CycleCategoryFilter,
		"ManageCategories":    &km.ManageCategories,
		"AddCategory":         &km.AddCategory,
		"DeleteCategory":      &km.DeleteCategory,
		"Reload":              &km.Reload,
		"Back":                &km.Back,
	}
}

// BuildKeyMap applies configured overrides on top of the defaults. Action
// names match case-insensitively since config loaders may lowercase keys.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	for action, binding := range km.bindings() {
		def := KeyDefinitions[action]
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		*binding = parseKeyBinding(keyStr, def.DefaultKey, def.Help)
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if strings.TrimSpace(keyStr) == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	var keys []string
	for _, k := range strings.Split(keyStr, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return parseKeyBinding(defaultKey, defaultKey, helpText)
	}

	// Depending on the terminal the space bar arrives as " " or "space";
	// " " cannot be written in a comma-separated list.
	matches := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "space" {
			matches = append(matches, " ")
		}
		matches = append(matches, k)
	}

	return key.NewBinding(
		key.WithKeys(matches...),
		key.WithHelp(keys[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}

// ShortHelp lists the bindings shown in the status bar.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.AddTask, km.ToggleStatus, km.CycleStatusFilter, km.ManageCategories, km.ShowHelp, km.QuitApp}
}

// FullHelp lists every task-view binding, grouped in columns.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.AddTask, km.EditTask, km.DeleteTask, km.ToggleStatus, km.ShowDetail},
		{km.CycleStatusFilter, km.CycleCategoryFilter, km.ManageCategories, km.Reload},
		{km.ShowHelp, km.Back, km.QuitApp},
	}
}
