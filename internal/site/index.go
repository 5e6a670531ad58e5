package site

import "git.home.luguber.info/inful/puggle/internal/metadata"

// Index maps page names to the metadata of their entries. Pages keep the
// order in which they were first set; entries keep processing order.
type Index struct {
	order   []string
	entries map[string][]*metadata.Metadata
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string][]*metadata.Metadata)}
}

// Set replaces the entry list of page.
func (i *Index) Set(page string, list []*metadata.Metadata) {
	if _, ok := i.entries[page]; !ok {
		i.order = append(i.order, page)
	}
	i.entries[page] = append([]*metadata.Metadata(nil), list...)
}

// Get returns the entries of page.
func (i *Index) Get(page string) []*metadata.Metadata {
	return i.entries[page]
}

// Pages returns page names in insertion order.
func (i *Index) Pages() []string {
	return append([]string(nil), i.order...)
}

// Len returns the total number of entries across pages.
func (i *Index) Len() int {
	n := 0
	for _, list := range i.entries {
		n += len(list)
	}
	return n
}

// TemplateValue is the value bound to the pages template variable. Templates
// iterate it in sorted key order; page_order carries Pages for
// configuration order.
func (i *Index) TemplateValue() map[string]any {
	out := make(map[string]any, len(i.entries))
	for _, page := range i.order {
		out[page] = metadata.Records(i.entries[page])
	}
	return out
}
