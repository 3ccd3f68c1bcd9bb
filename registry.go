package avro

import "golang.org/x/exp/slices"

// registry is the named-type registry: fully-qualified name -> named
// Codec (record/enum/fixed), insertion ordered. It also tracks alias
// registrations as read-only indirections to the same Codec.
//
// Grounded on joshng-goavro's SymbolTable/builtinSymbolTable: a registry
// is seeded with the builtin primitives, then grows as named types are
// compiled.
type registry struct {
	byFullName map[string]*Codec
	order      []string
	aliasOf    map[string]string // alias fullName -> canonical fullName
}

func newRegistry(opts Options) *registry {
	r := &registry{
		byFullName: builtinCodecsWithOptions(opts),
		aliasOf:    make(map[string]string),
	}
	externallyDefined := opts.ExternallyDefinedTypes
	for name := range r.byFullName {
		r.order = append(r.order, name)
	}
	for name, codec := range externallyDefined {
		r.byFullName[name] = codec
		r.order = append(r.order, name)
	}
	return r
}

// get looks up a name, first as a direct registration, then through an
// alias indirection.
func (r *registry) get(fullName string) (*Codec, bool) {
	if c, ok := r.byFullName[fullName]; ok {
		return c, true
	}
	if canon, ok := r.aliasOf[fullName]; ok {
		c, ok := r.byFullName[canon]
		return c, ok
	}
	return nil, false
}

// register adds a newly compiled named type under its fully qualified
// name. It must not already be registered (invariant 1 in spec.md §3).
func (r *registry) register(fullName string, c *Codec) error {
	if _, ok := r.byFullName[fullName]; ok {
		return newSchemaParseErr(SubDuplicateName, "%q is already in use", fullName)
	}
	r.byFullName[fullName] = c
	r.order = append(r.order, fullName)
	return nil
}

// registerAlias registers an additional name as a read-only indirection to
// an already-registered type.
func (r *registry) registerAlias(alias, canonicalFullName string) error {
	if _, ok := r.byFullName[alias]; ok {
		return newSchemaParseErr(SubDuplicateName, "alias %q collides with an existing type name", alias)
	}
	if _, ok := r.aliasOf[alias]; ok {
		return newSchemaParseErr(SubDuplicateName, "alias %q already registered", alias)
	}
	r.aliasOf[alias] = canonicalFullName
	return nil
}

// names returns every registered fully qualified name in insertion order.
func (r *registry) names() []string {
	return slices.Clone(r.order)
}
