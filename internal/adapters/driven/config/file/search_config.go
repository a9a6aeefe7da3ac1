package file

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// searchFile is the structural view of the config file.
type searchFile struct {
	Indexes []indexTable      `toml:"indexes"`
	Classes map[string]string `toml:"classes"`
}

type indexTable struct {
	Name    string       `toml:"name"`
	Classes []classTable `toml:"classes"`
}

// classTable describes one class of an index. Fields is a pointer so an
// explicitly empty field list can be told apart from an absent one.
type classTable struct {
	Class   string        `toml:"class"`
	Exclude bool          `toml:"exclude"`
	Fields  *[]fieldTable `toml:"fields"`
}

type fieldTable struct {
	Name     string         `toml:"name"`
	Property string         `toml:"property"`
	Options  map[string]any `toml:"options"`
	Exclude  bool           `toml:"exclude"`
}

// LoadSearchConfig reads the tunables, index definitions and class
// hierarchy from the store's file. A missing file yields the defaults with
// no indexes.
func LoadSearchConfig(store driven.ConfigStore) (domain.SearchConfig, error) {
	settings, err := LoadSettings(store)
	if err != nil {
		return domain.SearchConfig{}, err
	}
	cfg := domain.SearchConfig{Settings: settings, Parents: map[string]string{}}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return domain.SearchConfig{}, err
	}

	var raw searchFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return domain.SearchConfig{}, fmt.Errorf("parse %s: %w", store.Path(), err)
	}

	seen := make(map[string]bool, len(raw.Indexes))
	for i, idx := range raw.Indexes {
		if idx.Name == "" {
			return domain.SearchConfig{}, fmt.Errorf("%w: indexes[%d] has no name", domain.ErrInvalidInput, i)
		}
		if seen[idx.Name] {
			return domain.SearchConfig{}, fmt.Errorf("%w: duplicate index %q", domain.ErrInvalidInput, idx.Name)
		}
		seen[idx.Name] = true

		def, err := idx.definition()
		if err != nil {
			return domain.SearchConfig{}, err
		}
		cfg.Indexes = append(cfg.Indexes, def)
	}

	for child, parent := range raw.Classes {
		cfg.Parents[child] = parent
	}
	return cfg, nil
}

func (t indexTable) definition() (domain.IndexDefinition, error) {
	def := domain.IndexDefinition{Name: t.Name}
	for j, c := range t.Classes {
		if c.Class == "" {
			return def, fmt.Errorf("%w: index %q class %d has no name", domain.ErrInvalidInput, t.Name, j)
		}
		inclusion := domain.ClassInclusion{Class: c.Class}
		if !c.Exclude {
			inclusion.Spec = &domain.ClassSpec{}
			if c.Fields != nil {
				inclusion.Spec.Fields = make([]domain.FieldInclusion, 0, len(*c.Fields))
				for _, f := range *c.Fields {
					if f.Name == "" {
						return def, fmt.Errorf("%w: index %q class %q has an unnamed field",
							domain.ErrInvalidInput, t.Name, c.Class)
					}
					field := domain.FieldInclusion{Name: f.Name}
					if !f.Exclude {
						field.Spec = &domain.FieldSpec{Property: f.Property, Options: f.Options}
					}
					inclusion.Spec.Fields = append(inclusion.Spec.Fields, field)
				}
			}
		}
		def.IncludeClasses = append(def.IncludeClasses, inclusion)
	}
	return def, nil
}
