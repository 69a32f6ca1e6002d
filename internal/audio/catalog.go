package audio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dharmatimer/internal/core/model"
	"dharmatimer/resources"
)

// Partial is one sine component of a bell strike.
type Partial struct {
	Frequency float64 `yaml:"frequency"`
	Gain      float64 `yaml:"gain"`
	Decay     float64 `yaml:"decay"`
}

// Bell is a named timbre made of stacked partials.
type Bell struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Partials []Partial `yaml:"partials"`
}

// Length is the ring time of the longest partial.
func (bell Bell) Length() time.Duration {
	var longest float64
	for _, partial := range bell.Partials {
		if partial.Decay > longest {
			longest = partial.Decay
		}
	}
	return time.Duration(longest * float64(time.Second))
}

// Catalog holds the available bell presets in display order.
type Catalog struct {
	bells []Bell
	byID  map[string]int
}

type catalogFile struct {
	Bells []Bell `yaml:"bells"`
}

// LoadCatalog parses the embedded bell table.
func LoadCatalog() (*Catalog, error) {
	data, err := resources.BellTable()
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog validates and indexes a YAML bell table.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse bell table: %w", err)
	}
	if len(file.Bells) == 0 {
		return nil, errors.New("bell table is empty")
	}

	catalog := &Catalog{byID: make(map[string]int, len(file.Bells))}
	for _, bell := range file.Bells {
		bell.ID = strings.TrimSpace(bell.ID)
		if bell.ID == "" {
			return nil, errors.New("bell table: preset without id")
		}
		if _, exists := catalog.byID[bell.ID]; exists {
			return nil, fmt.Errorf("bell table: duplicate preset %q", bell.ID)
		}
		if len(bell.Partials) == 0 {
			return nil, fmt.Errorf("bell table: preset %q has no partials", bell.ID)
		}
		for _, partial := range bell.Partials {
			if partial.Frequency <= 0 || partial.Gain <= 0 || partial.Decay <= 0 {
				return nil, fmt.Errorf("bell table: preset %q has an invalid partial", bell.ID)
			}
		}
		if bell.Name == "" {
			bell.Name = bell.ID
		}
		catalog.byID[bell.ID] = len(catalog.bells)
		catalog.bells = append(catalog.bells, bell)
	}
	return catalog, nil
}

// Bells returns the presets in display order.
func (catalog *Catalog) Bells() []Bell {
	return append([]Bell(nil), catalog.bells...)
}

// Has reports whether id names a preset.
func (catalog *Catalog) Has(id string) bool {
	_, ok := catalog.byID[id]
	return ok
}

// Lookup returns the preset for id. Unknown ids resolve to the singing bowl,
// or the first preset if the table has none.
func (catalog *Catalog) Lookup(id string) Bell {
	if index, ok := catalog.byID[id]; ok {
		return catalog.bells[index]
	}
	if index, ok := catalog.byID[model.DefaultBellSoundID]; ok {
		return catalog.bells[index]
	}
	return catalog.bells[0]
}
