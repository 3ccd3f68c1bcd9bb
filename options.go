package avro

// Options is a frozen configuration record threaded through schema
// compilation and codec construction. Build one with NewOptions, which
// starts from DefaultOptions; the zero value is not the default
// configuration, because several flags default to true there.
type Options struct {
	RecordDecodesToDict              bool
	RecordCanEncodeDict              bool
	RecordValuesTypeHint             bool
	RecordAllowExtraFields           bool
	RecordEncodeUseDefaults          bool
	AdaptRecordTypes                 bool
	AllowTupleNotation               bool
	AllowInvalidDefaultValues        bool
	AllowEmptyUnions                 bool
	AllowUnionDefaultAnyMember       bool
	FingerprintReturnsDigest         bool
	TypesStrToBytes                  bool
	LogicalTypes                     bool
	StringTypesDefaultToLogicalUUID  bool
	DecimalCheckExpOverflow          bool
	AlternateTimestampMillisEncoding bool
	ExternallyDefinedTypes           map[string]*Codec
}

// DefaultOptions returns the Options record with every flag at its
// spec-mandated default.
func DefaultOptions() Options {
	return Options{
		RecordDecodesToDict:              false,
		RecordCanEncodeDict:              true,
		RecordValuesTypeHint:             false,
		RecordAllowExtraFields:           true,
		RecordEncodeUseDefaults:          true,
		AdaptRecordTypes:                 true,
		AllowTupleNotation:               false,
		AllowInvalidDefaultValues:        false,
		AllowEmptyUnions:                 false,
		AllowUnionDefaultAnyMember:       false,
		FingerprintReturnsDigest:         true,
		TypesStrToBytes:                  true,
		LogicalTypes:                     true,
		StringTypesDefaultToLogicalUUID:  false,
		DecimalCheckExpOverflow:          true,
		AlternateTimestampMillisEncoding: false,
		ExternallyDefinedTypes:           nil,
	}
}

// OptionFunc mutates an in-progress Options record. NewOptions applies each
// in order over DefaultOptions().
type OptionFunc func(*Options)

// NewOptions builds a frozen Options record. Unlike a bare struct literal,
// this is the entry point spec.md calls out as rejecting unknown keys: since
// Go has no open-ended map-of-keys config here, "unknown option keys" is
// enforced at the OptionFunc call site instead — each With* function is the
// exhaustive set of recognized options.
func NewOptions(opts ...OptionFunc) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithRecordDecodesToDict(v bool) OptionFunc {
	return func(o *Options) { o.RecordDecodesToDict = v }
}

func WithRecordCanEncodeDict(v bool) OptionFunc {
	return func(o *Options) { o.RecordCanEncodeDict = v }
}

func WithRecordValuesTypeHint(v bool) OptionFunc {
	return func(o *Options) { o.RecordValuesTypeHint = v }
}

func WithRecordAllowExtraFields(v bool) OptionFunc {
	return func(o *Options) { o.RecordAllowExtraFields = v }
}

func WithRecordEncodeUseDefaults(v bool) OptionFunc {
	return func(o *Options) { o.RecordEncodeUseDefaults = v }
}

func WithAdaptRecordTypes(v bool) OptionFunc {
	return func(o *Options) { o.AdaptRecordTypes = v }
}

func WithAllowTupleNotation(v bool) OptionFunc {
	return func(o *Options) { o.AllowTupleNotation = v }
}

func WithAllowInvalidDefaultValues(v bool) OptionFunc {
	return func(o *Options) { o.AllowInvalidDefaultValues = v }
}

func WithAllowEmptyUnions(v bool) OptionFunc {
	return func(o *Options) { o.AllowEmptyUnions = v }
}

func WithAllowUnionDefaultAnyMember(v bool) OptionFunc {
	return func(o *Options) { o.AllowUnionDefaultAnyMember = v }
}

func WithFingerprintReturnsDigest(v bool) OptionFunc {
	return func(o *Options) { o.FingerprintReturnsDigest = v }
}

func WithTypesStrToBytes(v bool) OptionFunc {
	return func(o *Options) { o.TypesStrToBytes = v }
}

func WithLogicalTypes(v bool) OptionFunc {
	return func(o *Options) { o.LogicalTypes = v }
}

func WithStringTypesDefaultToLogicalUUID(v bool) OptionFunc {
	return func(o *Options) { o.StringTypesDefaultToLogicalUUID = v }
}

func WithDecimalCheckExpOverflow(v bool) OptionFunc {
	return func(o *Options) { o.DecimalCheckExpOverflow = v }
}

func WithAlternateTimestampMillisEncoding(v bool) OptionFunc {
	return func(o *Options) { o.AlternateTimestampMillisEncoding = v }
}

func WithExternallyDefinedTypes(types map[string]*Codec) OptionFunc {
	return func(o *Options) { o.ExternallyDefinedTypes = types }
}
