package secret

import "sort"

// Scope identifies the secrets to fetch.
type Scope struct {
	// Domain is the service base URL. A missing scheme defaults to https.
	Domain string

	// Environment is the environment slug, e.g. "prod".
	Environment string

	// Project is the project (workspace) slug.
	Project string

	// Path is the folder path within the environment.
	// Default: "/"
	Path string

	// IncludeImports asks the service to return imported secret blocks.
	IncludeImports bool

	// Recursive includes secrets from sub-folders of Path.
	Recursive bool
}

// Record is one secret as returned by the service. A nil field was absent
// from the response; a non-nil empty Value is a legitimate empty secret.
type Record struct {
	Key   *string `json:"secretKey"`
	Value *string `json:"secretValue"`
}

// entry reports the record's key and value, and whether both are usable.
func (r Record) entry() (string, string, bool) {
	if r.Key == nil || *r.Key == "" || r.Value == nil {
		return "", "", false
	}
	return *r.Key, *r.Value, true
}

// ImportBlock is a set of secrets imported from another path or environment.
type ImportBlock struct {
	Path        string   `json:"secretPath,omitempty"`
	Environment string   `json:"environment,omitempty"`
	Secrets     []Record `json:"secrets"`
}

// RawResponse is the decoded body of a raw secrets request.
// Secrets is nil when the field was missing from the body.
type RawResponse struct {
	Secrets *[]Record     `json:"secrets"`
	Imports []ImportBlock `json:"imports,omitempty"`
}

// Map is a resolved set of secrets. It is immutable once built.
type Map struct {
	m map[string]string
}

// NewMap copies entries into a Map.
func NewMap(entries map[string]string) Map {
	m := make(map[string]string, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Map{m: m}
}

// Get returns the value for key.
func (m Map) Get(key string) (string, bool) {
	v, ok := m.m[key]
	return v, ok
}

// Len returns the number of secrets.
func (m Map) Len() int {
	return len(m.m)
}

// Keys returns the secret keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn for each secret in key order until fn returns false.
func (m Map) Range(fn func(key, value string) bool) {
	for _, k := range m.Keys() {
		if !fn(k, m.m[k]) {
			return
		}
	}
}
