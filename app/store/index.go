// Package store defines the data model shared by search, engine and rest packages:
// index configurations, content items reported by CMS events, queue tasks and search documents.
package store

import (
	"strings"
)

// WildcardMarker terminates a path pattern that admits the whole subtree
const WildcardMarker = "%"

// IndexConfiguration describes one destination index in the remote search service
type IndexConfiguration struct {
	ID                   int64          `json:"id" yaml:"id"`
	Name                 string         `json:"name" yaml:"name"`
	ChannelName          string         `json:"channel" yaml:"channel"`
	Languages            []string       `json:"languages" yaml:"languages"`
	Paths                []IncludedPath `json:"paths" yaml:"paths"`
	ReusableContentTypes []string       `json:"reusable_types" yaml:"reusable_types"`
	StrategyName         string         `json:"strategy" yaml:"strategy"`
	RebuildHook          string         `json:"rebuild_hook,omitempty" yaml:"rebuild_hook"`
}

// IncludedPath is a path pattern with content types it admits, empty ContentTypes admits all types
type IncludedPath struct {
	Pattern      string   `json:"pattern" yaml:"pattern"`
	ContentTypes []string `json:"content_types" yaml:"content_types"`
}

// Wildcard returns true if pattern covers the whole subtree
func (p IncludedPath) Wildcard() bool {
	return strings.HasSuffix(p.Pattern, WildcardMarker)
}

// Prefix returns the pattern with wildcard marker stripped
func (p IncludedPath) Prefix() string {
	return strings.TrimSuffix(p.Pattern, WildcardMarker)
}

// SameName compares index names case-insensitively
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// NormalizeName returns the registry key for an index name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HasLanguage checks if the language is allowed, empty list allows all languages
func (c IndexConfiguration) HasLanguage(lang string) bool {
	if len(c.Languages) == 0 {
		return true
	}
	return ContainsFold(c.Languages, lang)
}

// Clone makes deep copy of configuration, so the registry never shares slices with callers
func (c IndexConfiguration) Clone() IndexConfiguration {
	res := c
	res.Languages = append([]string(nil), c.Languages...)
	res.ReusableContentTypes = append([]string(nil), c.ReusableContentTypes...)
	res.Paths = make([]IncludedPath, 0, len(c.Paths))
	for _, p := range c.Paths {
		res.Paths = append(res.Paths, IncludedPath{Pattern: p.Pattern, ContentTypes: append([]string(nil), p.ContentTypes...)})
	}
	return res
}

// ContainsFold checks case-insensitive membership
func ContainsFold(vals []string, v string) bool {
	for _, s := range vals {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
