package mint

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/waldmeta/mint/infer"
)

const (
	// BNode is the reserved entity kind for skolemized blank nodes.
	BNode = "bnode"

	// DefaultBNodePrefix is the code prefix used for blank nodes when the
	// configuration does not set one.
	DefaultBNodePrefix = "_b"

	// GenIDPath is the well-known path blank node IRIs are minted under.
	GenIDPath = "/.well-known/genid"
)

// Config describes the identifier namespace.
type Config struct {
	// BaseURI is the canonical namespace root, e.g. "https://waldmeta.org/mint/".
	// Counter keys for ordinary kinds are BaseURI + kind.
	BaseURI string `yaml:"baseUri" json:"baseUri"`

	// ShortURI is the optional short namespace root, e.g. "https://wald.to/".
	ShortURI string `yaml:"shortUri,omitempty" json:"shortUri,omitempty"`

	// Entities maps entity kind to code prefix. Prefixes must be unique.
	Entities map[string]string `yaml:"entities" json:"entities"`

	// Types maps rdf:type IRIs to entity kinds for NewID.
	Types map[string]string `yaml:"types,omitempty" json:"types,omitempty"`

	// Rules are tried by NewID when no type mapping applies.
	Rules []infer.Rule `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// clone returns a deep copy with the blank node prefix defaulted.
func (c Config) clone() Config {
	out := Config{
		BaseURI:  c.BaseURI,
		ShortURI: c.ShortURI,
		Entities: make(map[string]string, len(c.Entities)+1),
		Types:    maps.Clone(c.Types),
		Rules:    slices.Clone(c.Rules),
	}
	maps.Copy(out.Entities, c.Entities)
	if _, ok := out.Entities[BNode]; !ok {
		out.Entities[BNode] = DefaultBNodePrefix
	}
	if out.Types == nil {
		out.Types = map[string]string{}
	}
	return out
}

// Validate reports the first problem found in the configuration. The blank
// node kind does not need to be listed in Entities.
func (c Config) Validate() error {
	c = c.clone()

	if c.BaseURI == "" {
		return fmt.Errorf("%w: baseUri is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURI)
	if err != nil {
		return fmt.Errorf("%w: baseUri %q: %v", ErrInvalidConfig, c.BaseURI, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: baseUri %q must be an absolute URI", ErrInvalidConfig, c.BaseURI)
	}

	if c.ShortURI != "" {
		if _, err := url.Parse(c.ShortURI); err != nil {
			return fmt.Errorf("%w: shortUri %q: %v", ErrInvalidConfig, c.ShortURI, err)
		}
	}

	owners := make(map[string]string, len(c.Entities))
	for _, kind := range slices.Sorted(maps.Keys(c.Entities)) {
		prefix := c.Entities[kind]
		if kind == "" {
			return fmt.Errorf("%w: entity kind must not be empty", ErrInvalidConfig)
		}
		if prefix == "" {
			return fmt.Errorf("%w: entity %q has an empty prefix", ErrInvalidConfig, kind)
		}
		if other, dup := owners[prefix]; dup {
			return fmt.Errorf("%w: prefix %q is used by both %q and %q", ErrInvalidConfig, prefix, other, kind)
		}
		owners[prefix] = kind
	}
	if pairs := c.OverlappingPrefixes(); len(pairs) > 0 {
		a, b := pairs[0][0], pairs[0][1]
		return fmt.Errorf("%w: prefix %q of %q is a prefix of %q used by %q",
			ErrInvalidConfig, c.Entities[a], a, c.Entities[b], b)
	}

	for _, t := range slices.Sorted(maps.Keys(c.Types)) {
		if _, ok := c.Entities[c.Types[t]]; !ok {
			return fmt.Errorf("%w: type %q maps to unconfigured entity %q", ErrInvalidConfig, t, c.Types[t])
		}
	}

	for i, rule := range c.Rules {
		if _, ok := c.Entities[rule.Entity]; !ok {
			return fmt.Errorf("%w: rule %d maps to unconfigured entity %q", ErrInvalidConfig, i, rule.Entity)
		}
	}

	return nil
}

// OverlappingPrefixes returns pairs of entity kinds where the first kind's
// prefix is a proper prefix of the second's. Such kinds can mint the same
// code, so Validate rejects them.
func (c Config) OverlappingPrefixes() [][2]string {
	c = c.clone()
	kinds := slices.Sorted(maps.Keys(c.Entities))

	var pairs [][2]string
	for _, a := range kinds {
		for _, b := range kinds {
			pa, pb := c.Entities[a], c.Entities[b]
			if a != b && len(pa) < len(pb) && strings.HasPrefix(pb, pa) {
				pairs = append(pairs, [2]string{a, b})
			}
		}
	}
	return pairs
}

// counterKey returns the store key for kind. Blank nodes count under the
// base URI's authority at GenIDPath; other kinds under BaseURI + kind.
func (c Config) counterKey(kind string) (string, error) {
	if kind != BNode {
		return c.BaseURI + kind, nil
	}

	u, err := url.Parse(c.BaseURI)
	if err != nil {
		return "", err
	}
	u.Path = GenIDPath
	u.RawPath = ""
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
