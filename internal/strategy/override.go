package strategy

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// overrideFile is the on-disk TOML shape for a catalogue override,
// mirrored from the teacher's skill-manifest loading
// (internal/skills/toml.go): a flat list of named entries, each field
// matching Strategy's JSON-friendly shape.
type overrideFile struct {
	Strategy []overrideStrategy `toml:"strategy"`
}

type overrideStrategy struct {
	ID            string             `toml:"id"`
	Name          string             `toml:"name"`
	Category      string             `toml:"category"`
	RequiredGenes map[string]float64 `toml:"required_genes"`
	RequiredTools []string           `toml:"required_tools"`
	Risk          float64            `toml:"risk"`
	Complexity    float64            `toml:"complexity"`
	TypicalPayoff float64            `toml:"typical_payoff"`
	Horizon       string             `toml:"horizon"`
	ActionType    string             `toml:"action_type"`
}

// LoadCatalogueOverride reads a TOML file of strategy definitions and
// returns them as a replacement Catalogue. Every operator-supplied
// strategy fully replaces the built-in set named in the same file;
// omitted fields zero-value (an empty RequiredGenes/RequiredTools,
// Risk 0) rather than inheriting a built-in default, since an override
// file is expected to be complete.
func LoadCatalogueOverride(path string) ([]Strategy, error) {
	var file overrideFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode catalogue override: %w", err)
	}

	out := make([]Strategy, 0, len(file.Strategy))
	for _, s := range file.Strategy {
		out = append(out, Strategy{
			ID:            s.ID,
			Name:          s.Name,
			Category:      Category(s.Category),
			RequiredGenes: s.RequiredGenes,
			RequiredTools: s.RequiredTools,
			Risk:          s.Risk,
			Complexity:    s.Complexity,
			TypicalPayoff: s.TypicalPayoff,
			Horizon:       Horizon(s.Horizon),
			ActionType:    s.ActionType,
		})
	}
	return out, nil
}
