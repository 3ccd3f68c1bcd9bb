package avro

import "regexp"

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// newUUIDLogical validates that the physical type is string, per spec.md
// §4.F; the host value representation is the 36-char canonical string
// itself (no wrapper type needed, unlike decimal/duration).
func newUUIDLogical(physical *Codec) (*logicalInfo, error) {
	if physical.Typ != TypeString {
		return nil, newErr(ErrInvalidValue, "uuid must wrap string")
	}
	info := &logicalInfo{logicalName: "uuid"}
	info.fromNative = func(raw interface{}) (interface{}, error) {
		s, ok := raw.(string)
		if !ok || !uuidPattern.MatchString(s) {
			return nil, newErr(ErrInvalidValue, "uuid: not a canonical UUID string: %v", raw)
		}
		return s, nil
	}
	info.toNative = func(logical interface{}) (interface{}, error) {
		s, ok := logical.(string)
		if !ok || !uuidPattern.MatchString(s) {
			return nil, newErr(ErrInvalidValue, "uuid: not a canonical UUID string: %v", logical)
		}
		return s, nil
	}
	return info, nil
}
