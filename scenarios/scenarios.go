// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scenarios

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/danielhkuo/inject-portal/models"
)

var selectItem = regexp.MustCompile(`<div[^>]*class="select-item">(.*?)<span class="tag`)

// Catalog is the read-only list of scenarios offered in the job form
type Catalog struct {
	scenarios []models.Scenario
	ids       map[string]struct{}
}

// NewCatalog builds a catalog from already parsed scenarios
func NewCatalog(list []models.Scenario) *Catalog {
	c := &Catalog{
		scenarios: list,
		ids:       make(map[string]struct{}, len(list)),
	}
	if c.scenarios == nil {
		c.scenarios = []models.Scenario{}
	}
	for _, s := range list {
		c.ids[s.ID] = struct{}{}
	}
	return c
}

// Parse extracts scenarios from a saved copy of the competition's scenario picker.
// The id is the text before the first colon, lowercased with spaces removed.
// Items without a colon are skipped.
func Parse(html string) []models.Scenario {
	list := []models.Scenario{}
	for _, m := range selectItem.FindAllStringSubmatch(html, -1) {
		display := strings.TrimSpace(m[1])
		prefix, _, found := strings.Cut(display, ":")
		if !found {
			slog.Warn("Could not derive scenario id", "display", display)
			continue
		}
		id := strings.ReplaceAll(strings.ToLower(prefix), " ", "")
		list = append(list, models.Scenario{ID: id, Display: display})
	}
	return list
}

// Load reads and parses the scenario file at path.
// A missing or unreadable file yields an empty catalog.
func Load(path string) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Scenario file not found, scenario list will be empty", "path", path)
		} else {
			slog.Warn("Failed to read scenario file, scenario list will be empty", "path", path, "error", err)
		}
		return NewCatalog(nil)
	}

	c := NewCatalog(Parse(string(data)))
	slog.Info("Loaded scenarios", "path", path, "count", c.Len())
	return c
}

// All returns the scenarios in document order
func (c *Catalog) All() []models.Scenario {
	return c.scenarios
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.ids[id]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.scenarios)
}
