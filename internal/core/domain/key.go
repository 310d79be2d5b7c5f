package domain

import (
	"slices"
	"strings"
)

// paramSep joins parameter tuples inside a DomainKey. It cannot appear in
// user identifiers or page numbers.
const paramSep = "\x1f"

const (
	// Wildcard matches any value at a pattern position.
	Wildcard = "*"
	// SelfParam is substituted with the acting identity when a pattern is resolved.
	SelfParam = "$self"
)

// DomainKey identifies one cached read: a domain name plus an optional parameter tuple.
// Keys are comparable and stable for identical parameters, so they can be used as map keys.
type DomainKey struct {
	Domain string
	params string
}

// NewKey builds a key for the given domain and parameters.
func NewKey(domainName string, params ...string) DomainKey {
	return DomainKey{Domain: domainName, params: strings.Join(params, paramSep)}
}

// Params returns the parameter tuple of the key.
func (k DomainKey) Params() []string {
	if k.params == "" {
		return nil
	}
	return strings.Split(k.params, paramSep)
}

// ID returns a string that is unique per key, suitable for keyed lookups
// such as in-flight tracking.
func (k DomainKey) ID() string {
	return k.Domain + "\x1e" + k.params
}

// IsZero reports whether the key is unset.
func (k DomainKey) IsZero() bool {
	return k.Domain == "" && k.params == ""
}

// String renders the key as domain(p1,p2).
func (k DomainKey) String() string {
	if k.params == "" {
		return k.Domain
	}
	return k.Domain + "(" + strings.Join(k.Params(), ",") + ")"
}

// KeyPattern matches DomainKeys of one domain. A parameter may be a literal,
// Wildcard or SelfParam. A single Wildcard matches any tuple arity.
type KeyPattern struct {
	Domain string
	Params []string
}

// Pattern builds a KeyPattern.
func Pattern(domainName string, params ...string) KeyPattern {
	return KeyPattern{Domain: domainName, Params: params}
}

// Resolve substitutes SelfParam with actor. Wildcards are left in place.
func (p KeyPattern) Resolve(actor string) KeyPattern {
	resolved := KeyPattern{Domain: p.Domain, Params: slices.Clone(p.Params)}
	for i, param := range resolved.Params {
		if param == SelfParam {
			resolved.Params[i] = actor
		}
	}
	return resolved
}

// IsConcrete reports whether the pattern names exactly one key.
func (p KeyPattern) IsConcrete() bool {
	return !slices.Contains(p.Params, Wildcard) && !slices.Contains(p.Params, SelfParam)
}

// Key converts a concrete pattern into a DomainKey.
func (p KeyPattern) Key() DomainKey {
	return NewKey(p.Domain, p.Params...)
}

// Matches reports whether key satisfies the pattern.
func (p KeyPattern) Matches(key DomainKey) bool {
	if key.Domain != p.Domain {
		return false
	}
	if len(p.Params) == 1 && p.Params[0] == Wildcard {
		return true
	}
	params := key.Params()
	if len(params) != len(p.Params) {
		return false
	}
	for i, want := range p.Params {
		if want != Wildcard && want != params[i] {
			return false
		}
	}
	return true
}

// String renders the pattern as domain(p1,p2).
func (p KeyPattern) String() string {
	if len(p.Params) == 0 {
		return p.Domain
	}
	return p.Domain + "(" + strings.Join(p.Params, ",") + ")"
}
