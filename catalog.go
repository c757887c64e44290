// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

// Catalog is the immutable entry tree of one validated backup set.
// Listing order is control-file declaration order; lookup is
// case-insensitive the way DOS resolved paths.
type Catalog struct {
	entries []*Entry
	byPath  map[string]*Entry
	files   int
	bytes   int64
}

// newCatalog indexes validated entries.
func newCatalog(entries []*Entry) *Catalog {
	c := &Catalog{
		entries: entries,
		byPath:  make(map[string]*Entry, len(entries)),
	}

	for _, e := range entries {
		c.byPath[foldPath(e.Path)] = e
		if !e.IsDir() {
			c.files++
			c.bytes += e.Size
		}
	}

	return c
}

// Entries returns all entries in declaration order.
func (c *Catalog) Entries() []*Entry {
	if c == nil {
		return nil
	}

	out := make([]*Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup resolves one entry by exact path, ignoring case and slash style.
func (c *Catalog) Lookup(path string) (*Entry, bool) {
	if c == nil {
		return nil, false
	}

	e, ok := c.byPath[foldPath(NormalizePath(path))]
	return e, ok
}

// Glob returns file entries whose name matches a DOS wildcard. The match
// applies to the final path segment only, the way RESTORE selected files.
func (c *Catalog) Glob(pattern string) ([]*Entry, error) {
	w, err := CompileWildcard(pattern)
	if err != nil {
		return nil, err
	}

	return c.Filter(func(e *Entry) bool {
		return !e.IsDir() && w.Match(e.Name)
	}), nil
}

// Filter returns entries satisfying pred, in declaration order.
func (c *Catalog) Filter(pred func(*Entry) bool) []*Entry {
	if c == nil {
		return nil
	}

	out := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if pred(e) {
			out = append(out, e)
		}
	}

	return out
}

// Len returns the total entry count including directories.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}

	return len(c.entries)
}

// Files returns the file entry count.
func (c *Catalog) Files() int {
	if c == nil {
		return 0
	}

	return c.files
}

// TotalBytes returns the sum of logical file sizes.
func (c *Catalog) TotalBytes() int64 {
	if c == nil {
		return 0
	}

	return c.bytes
}
