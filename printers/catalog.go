// Package printers maps the Elegoo printer models to the firmware families.
package printers

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/rusq/gcodethumb/thumb"
)

// Model names as set in the printer profiles of Cura (uppercase) and
// OrcaSlicer/PrusaSlicer.
var (
	LegacyModels = []string{
		"NEPTUNE2", "NEPTUNE2D", "NEPTUNE2S", "NEPTUNEX",
		"Elegoo Neptune 2", "Elegoo Neptune 2D", "Elegoo Neptune 2S", "Elegoo Neptune X",
	}
	PackedModels = []string{
		"NEPTUNE4", "NEPTUNE4PRO", "NEPTUNE4PLUS", "NEPTUNE4MAX",
		"NEPTUNE3PRO", "NEPTUNE3PLUS", "NEPTUNE3MAX",
		"Elegoo Neptune 4", "Elegoo Neptune 4 Pro", "Elegoo Neptune 4 Plus", "Elegoo Neptune 4 Max",
		"Elegoo Neptune 3 Pro", "Elegoo Neptune 3 Plus", "Elegoo Neptune 3 Max",
	}
	JPEGModels = []string{
		"ORANGESTORMGIGA",
	}
)

// Model is the printer model.
type Model struct {
	Name   string
	Family thumb.Family
}

// Catalog is the set of known printer models.
type Catalog struct {
	models []Model
	index  map[string]thumb.Family
}

// NewCatalog creates the catalog from the model lists per family.  If the
// model is listed in several families, the first family in Family order
// wins.
func NewCatalog(families map[thumb.Family][]string) *Catalog {
	c := &Catalog{index: make(map[string]thumb.Family)}
	fams := make([]thumb.Family, 0, len(families))
	for f := range families {
		fams = append(fams, f)
	}
	slices.Sort(fams)
	for _, f := range fams {
		if f == thumb.FamilyUnknown {
			continue
		}
		for _, name := range families[f] {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if prev, ok := c.index[name]; ok {
				slog.Warn("duplicate printer model", "model", name, "family", prev, "ignored", f)
				continue
			}
			c.index[name] = f
			c.models = append(c.models, Model{Name: name, Family: f})
		}
	}
	return c
}

// Default returns the catalog of the built-in models.
func Default() *Catalog {
	return NewCatalog(map[thumb.Family][]string{
		thumb.FamilyLegacy: LegacyModels,
		thumb.FamilyPacked: PackedModels,
		thumb.FamilyJPEG:   JPEGModels,
	})
}

// Classify returns the family of the model, or FamilyUnknown.
func (c *Catalog) Classify(model string) thumb.Family {
	return c.index[strings.TrimSpace(model)]
}

// Known reports whether the model is in the catalog.
func (c *Catalog) Known(model string) bool {
	_, ok := c.index[strings.TrimSpace(model)]
	return ok
}

// Resolve picks the printer model: the requested one, if it is known,
// otherwise the one from the slicer metadata.  It returns the model and its
// family.
func (c *Catalog) Resolve(requested, sliced string) (string, thumb.Family) {
	model := sliced
	if c.Known(requested) {
		model = requested
	}
	model = strings.TrimSpace(model)
	return model, c.Classify(model)
}

// Models returns the models in the catalog order.
func (c *Catalog) Models() []Model {
	return slices.Clone(c.models)
}
