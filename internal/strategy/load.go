package strategy

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"meal-window-planner/internal/profile"
)

// fileFormat is the on-disk shape of a strategy override file.
type fileFormat struct {
	Goals map[string]Strategy `toml:"goals"`
}

// Load reads a TOML strategy file and merges it over the built-in
// defaults. Goals absent from the file keep their default strategy, so
// a file may override a single goal. The merged table is validated
// before being returned.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy file %s: %w", path, err)
	}

	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse strategy file %s: %w", path, err)
	}

	table := Defaults()
	for name, s := range f.Goals {
		table[profile.GoalKind(name)] = s
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy table from %s: %w", path, err)
	}
	return table, nil
}
