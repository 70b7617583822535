package model

import "strings"

// DefaultModelID is the model used until someone picks another one.
const DefaultModelID = "deepseek/deepseek-chat"

// CatalogEntry describes one selectable completion backend.
type CatalogEntry struct {
	ID          string
	Vendor      string
	Description string
	// Featured entries are offered on the /change_model keyboard.
	Featured bool
}

// Catalog is the fixed allow-list of model identifiers.
type Catalog struct {
	entries []CatalogEntry
	index   map[string]int
}

// NewCatalog builds a catalog; blank and duplicate ids are skipped.
func NewCatalog(entries []CatalogEntry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			continue
		}
		if _, dup := c.index[e.ID]; dup {
			continue
		}
		if e.Vendor == "" {
			e.Vendor = vendorFromID(e.ID)
		}
		c.index[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

func DefaultCatalogEntries() []CatalogEntry {
	return []CatalogEntry{
		{ID: "deepseek/deepseek-chat", Vendor: "DeepSeek", Description: "main model", Featured: true},
		{ID: "deepseek/deepseek-coder", Vendor: "DeepSeek", Description: "for programming"},
		{ID: "meta-llama/llama-3.1-8b-instruct", Vendor: "Meta", Description: "Llama 3.1", Featured: true},
		{ID: "meta-llama/llama-3-8b-instruct", Vendor: "Meta", Description: "Llama 3"},
		{ID: "google/gemma-2-9b-it", Vendor: "Google", Description: "Gemma 2", Featured: true},
		{ID: "google/gemma-7b-it", Vendor: "Google", Description: "Gemma"},
		{ID: "microsoft/wizardlm-2-8x22b", Vendor: "Microsoft", Description: "WizardLM"},
		{ID: "openai/gpt-3.5-turbo", Vendor: "OpenAI", Description: "GPT-3.5 Turbo", Featured: true},
	}
}

func DefaultCatalog() *Catalog { return NewCatalog(DefaultCatalogEntries()) }

func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

func (c *Catalog) Lookup(id string) (CatalogEntry, bool) {
	i, ok := c.index[id]
	if !ok {
		return CatalogEntry{}, false
	}
	return c.entries[i], true
}

func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int { return len(c.entries) }

// Featured returns the keyboard entries; when none is flagged every entry is offered.
func (c *Catalog) Featured() []CatalogEntry {
	var out []CatalogEntry
	for _, e := range c.entries {
		if e.Featured {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return c.Entries()
	}
	return out
}

// Vendors returns vendor names in first-appearance order.
func (c *Catalog) Vendors() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range c.entries {
		if _, ok := seen[e.Vendor]; ok {
			continue
		}
		seen[e.Vendor] = struct{}{}
		out = append(out, e.Vendor)
	}
	return out
}

func (c *Catalog) ByVendor(vendor string) []CatalogEntry {
	var out []CatalogEntry
	for _, e := range c.entries {
		if e.Vendor == vendor {
			out = append(out, e)
		}
	}
	return out
}

func vendorFromID(id string) string {
	if i := strings.Index(id, "/"); i > 0 {
		return id[:i]
	}
	return "other"
}
