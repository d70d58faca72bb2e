// Package scaffold holds the starter boards offered by 'kanban init'.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/kanban/internal/config"
)

//go:embed templates/*.yml
var templatesFS embed.FS

// DefaultTemplate is used when no template is named.
const DefaultTemplate = "basic"

// Templates returns the names of the embedded templates, sorted.
func Templates() []string {
	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	slices.Sort(names)
	return names
}

// Load parses the named template into a validated configuration.
// An empty name selects DefaultTemplate.
func Load(name string) (*config.KanbanConfig, error) {
	if name == "" {
		name = DefaultTemplate
	}

	data, err := templatesFS.ReadFile(path.Join("templates", name+".yml"))
	if err != nil {
		return nil, fmt.Errorf("unknown template %q (must be one of %s)", name, strings.Join(Templates(), ", "))
	}

	var cfg config.KanbanConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("template %q is not valid YAML: %w", name, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("template %q is invalid: %w", name, err)
	}

	return &cfg, nil
}
