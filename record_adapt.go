package avro

// adaptRecord implements spec.md §4.E's record adaptation: a Record
// instance built against a different Schema compilation is accepted iff
// its Codec's fully qualified name and ordered (field-name, field-type
// canonical form) sequence match the target Codec exactly. On a match a
// copy of the source's value vector is returned as is, since it is
// already in the target field order — on mismatch, RecordNotAdaptable.
func adaptRecord(target *Codec, src *Record) ([]interface{}, error) {
	source := src.codec
	if source.FullName() != target.FullName() {
		return nil, newErr(ErrRecordNotAdaptable, "record %q: source schema is %q", target.FullName(), source.FullName())
	}
	if len(source.fields) != len(target.fields) {
		return nil, newErr(ErrRecordNotAdaptable, "record %q: field count differs (%d vs %d)", target.FullName(), len(source.fields), len(target.fields))
	}
	for i, tf := range target.fields {
		sf := source.fields[i]
		if sf.Name != tf.Name {
			return nil, newErr(ErrRecordNotAdaptable, "record %q: field %d name differs (%q vs %q)", target.FullName(), i, sf.Name, tf.Name)
		}
		if canonicalForm(sf.Type) != canonicalForm(tf.Type) {
			return nil, newErr(ErrRecordNotAdaptable, "record %q: field %q type differs", target.FullName(), tf.Name)
		}
	}
	// Field shapes match positionally and by name/type; the value vector
	// is already in the right order, it was built by the source schema's
	// own field Codecs so no further transformation is needed.
	out := make([]interface{}, len(src.Values))
	copy(out, src.Values)
	return out, nil
}
