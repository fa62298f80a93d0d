package mint

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/waldmeta/mint/bigint"
	"github.com/waldmeta/mint/compact"
	"github.com/waldmeta/mint/counter"
	"github.com/waldmeta/mint/infer"
	"github.com/waldmeta/mint/rdf"
)

// KindDatastore represents errors returned by the graph datastore in NewID.
const KindDatastore = "datastore"

// Minter mints identifiers from per-kind counters. It keeps no state between
// calls beyond its configuration and is safe for concurrent use; uniqueness
// rests entirely on the store's atomic increment.
type Minter struct {
	cfg      Config
	store    counter.Store
	resolver *infer.Resolver
	keys     map[string]string
	prefixes []string // longest first
	kinds    map[string]string
	logger   *slog.Logger
	tel      *telemetry
}

// New validates cfg and returns a Minter backed by store. The configuration
// is copied.
func New(cfg Config, store counter.Store, opts ...Option) (*Minter, error) {
	const op = "mint.New"

	if store == nil {
		return nil, newError(op, KindConfiguration, "", fmt.Errorf("%w: counter store is required", ErrInvalidConfig))
	}
	if err := cfg.Validate(); err != nil {
		return nil, newError(op, KindConfiguration, "", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	cfg = cfg.clone()

	resolver, err := infer.NewResolver(cfg.Types, cfg.Rules)
	if err != nil {
		return nil, newError(op, KindConfiguration, "", fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	tel, err := newTelemetry(o.tracer, o.meterProvider)
	if err != nil {
		return nil, newError(op, KindConfiguration, "", err)
	}

	m := &Minter{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		keys:     make(map[string]string, len(cfg.Entities)),
		kinds:    make(map[string]string, len(cfg.Entities)),
		logger:   o.logger,
		tel:      tel,
	}

	for kind, prefix := range cfg.Entities {
		key, err := cfg.counterKey(kind)
		if err != nil {
			return nil, newError(op, KindConfiguration, kind, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
		}
		m.keys[kind] = key
		m.kinds[prefix] = kind
		m.prefixes = append(m.prefixes, prefix)
	}
	slices.SortFunc(m.prefixes, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), strings.Compare(a, b))
	})

	return m, nil
}

// NewEntity increments the counter for kind and returns the identifier for
// the new value. An unknown kind fails without contacting the store.
//
// A sequence number consumed by the store is never reused, even if ctx is
// cancelled before the reply arrives.
func (m *Minter) NewEntity(ctx context.Context, kind string) (Identifier, error) {
	const op = "Minter.NewEntity"

	prefix, ok := m.cfg.Entities[kind]
	if !ok {
		return Identifier{}, newError(op, KindNotFound, kind, fmt.Errorf("%w: %q", ErrUnknownEntity, kind))
	}

	ctx, span := m.tel.start(ctx, kind)
	defer span.End()

	start := time.Now()
	seq, err := m.store.Increment(ctx, m.keys[kind])
	if err != nil {
		merr := newError(op, kindOf(err), kind, err)
		m.tel.failure(ctx, span, kind, merr)
		m.logger.Error("counter increment failed",
			"entity", kind,
			"key", m.keys[kind],
			"error", err)
		return Identifier{}, merr
	}

	id, err := m.identifier(kind, prefix, seq)
	if err != nil {
		merr := newError(op, KindStore, kind, err)
		m.tel.failure(ctx, span, kind, merr)
		return Identifier{}, merr
	}

	m.tel.success(ctx, span, kind, id.Seq, time.Since(start))
	m.logger.Debug("minted identifier",
		"entity", kind,
		"seq", id.Seq,
		"code", id.Code)

	return id, nil
}

// BNode mints a skolem identifier for a blank node.
func (m *Minter) BNode(ctx context.Context) (Identifier, error) {
	return m.NewEntity(ctx, BNode)
}

// NewID mints an identifier for node, choosing the entity kind from the
// node's rdf:type values in ds. Nodes with no recognised type are minted as
// blank nodes.
func (m *Minter) NewID(ctx context.Context, node string, ds rdf.Datastore) (Identifier, error) {
	const op = "Minter.NewID"

	types, err := ds.MatchTriples(ctx, node, rdf.Type)
	if err != nil {
		return Identifier{}, newError(op, KindDatastore, "", fmt.Errorf("failed to look up types of %s: %w", node, err))
	}

	res, err := m.resolver.Resolve(node, types)
	if err != nil {
		return Identifier{}, newError(op, KindConfiguration, "", err)
	}

	if len(res.Conflicts) > 0 {
		m.logger.Warn("node types map to several entities",
			"node", node,
			"entity", res.Entity,
			"type", res.Type,
			"conflicts", res.Conflicts)
	}

	kind := BNode
	if res.Matched {
		kind = res.Entity
	}
	return m.NewEntity(ctx, kind)
}

// Reset overwrites the counter for kind. An empty value resets to zero.
// Reset is not ordered with respect to concurrent mints of the same kind.
func (m *Minter) Reset(ctx context.Context, kind, value string) error {
	const op = "Minter.Reset"

	key, ok := m.keys[kind]
	if !ok {
		return newError(op, KindNotFound, kind, fmt.Errorf("%w: %q", ErrUnknownEntity, kind))
	}

	if value == "" {
		value = "0"
	}
	v, err := bigint.ParseDec(value)
	if err != nil {
		return newError(op, KindValidation, kind, err)
	}

	if err := m.store.Set(ctx, key, v.String()); err != nil {
		return newError(op, kindOf(err), kind, err)
	}

	m.logger.Info("counter reset",
		"entity", kind,
		"key", key,
		"value", v.String())
	return nil
}

// Parse reverses a code into its entity kind and sequence number. It also
// accepts a full or short URI, in which case the last path segment is parsed.
// Configured prefixes are prefix-free, so at most one matches.
func (m *Minter) Parse(code string) (Decoded, error) {
	const op = "Minter.Parse"

	if i := strings.LastIndexByte(code, '/'); i >= 0 {
		code = code[i+1:]
	}

	for _, prefix := range m.prefixes {
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		kind := m.kinds[prefix]
		payload := code[len(prefix):]

		b, err := compact.Decode(payload)
		if err != nil {
			return Decoded{}, newError(op, KindValidation, kind, fmt.Errorf("%w: %w", ErrInvalidEncoding, err))
		}
		if len(b) == 0 || compact.Encode(bigint.DecToBytes(bigint.BytesToDec(b))) != payload {
			return Decoded{}, newError(op, KindValidation, kind, fmt.Errorf("%w: %q is not a canonical code", ErrInvalidEncoding, code))
		}

		return Decoded{Entity: kind, Seq: bigint.BytesToDec(b)}, nil
	}

	return Decoded{}, newError(op, KindNotFound, "", fmt.Errorf("%w: no entity prefix matches %q", ErrUnknownEntity, code))
}

// CounterKey returns the store key used for kind.
func (m *Minter) CounterKey(kind string) (string, error) {
	key, ok := m.keys[kind]
	if !ok {
		return "", newError("Minter.CounterKey", KindNotFound, kind, fmt.Errorf("%w: %q", ErrUnknownEntity, kind))
	}
	return key, nil
}

// Entities returns the configured entity kinds, including BNode, sorted.
func (m *Minter) Entities() []string {
	return slices.Sorted(maps.Keys(m.cfg.Entities))
}

// Config returns a copy of the Minter's configuration.
func (m *Minter) Config() Config {
	return m.cfg.clone()
}

// Store returns the counter store the Minter was created with.
func (m *Minter) Store() counter.Store {
	return m.store
}

func (m *Minter) identifier(kind, prefix, seq string) (Identifier, error) {
	v, err := bigint.ParseDec(seq)
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: store returned %q", counter.ErrInvalidValue, seq)
	}
	seq = v.String()

	code := prefix + compact.Encode(bigint.DecToBytes(seq))
	id := Identifier{
		Seq:    seq,
		Code:   code,
		URI:    m.keys[kind] + "/" + code,
		Entity: kind,
	}

	if kind == BNode {
		id.BNode = rdf.BlankNodePrefix + code[1:]
	} else if m.cfg.ShortURI != "" {
		id.ShortURI = m.cfg.ShortURI + code
	}

	return id, nil
}

// IsUnknownEntity reports whether err was caused by an unconfigured entity kind.
func IsUnknownEntity(err error) bool {
	return errors.Is(err, ErrUnknownEntity)
}
