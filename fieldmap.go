package scopager

import "strings"

// CursorExtractor renders the cursor key string for one field of a fetched
// row. Fields without an extractor can still be filtered and ordered, but
// cannot anchor a cursor.
type CursorExtractor[M any] func(M) string

// FieldDescriptor is the public view of one registered field.
type FieldDescriptor struct {
	Name         string
	Column       string
	Kind         FieldKind
	HasExtractor bool
}

type field[M any] struct {
	column  string
	kind    FieldKind
	extract CursorExtractor[M]
}

// FieldMap maps API field names to columns of one entity. Build it once at
// startup and share it read-only; it is a pure lookup table, safe for
// concurrent readers.
//
// Field names are case-insensitive. Duplicate inserts overwrite.
type FieldMap[M any] struct {
	fields map[string]field[M]
}

func NewFieldMap[M any]() *FieldMap[M] {
	return &FieldMap[M]{
		fields: make(map[string]field[M]),
	}
}

// Insert registers a field without a cursor extractor.
func (m *FieldMap[M]) Insert(name, column string, kind FieldKind) *FieldMap[M] {
	m.fields[strings.ToLower(name)] = field[M]{
		column: column,
		kind:   kind,
	}

	return m
}

// InsertWithExtractor registers a field that can also anchor a cursor.
func (m *FieldMap[M]) InsertWithExtractor(
	name, column string,
	kind FieldKind,
	extract CursorExtractor[M],
) *FieldMap[M] {
	m.fields[strings.ToLower(name)] = field[M]{
		column:  column,
		kind:    kind,
		extract: extract,
	}

	return m
}

// Lookup resolves a field by API name.
func (m *FieldMap[M]) Lookup(name string) (FieldDescriptor, bool) {
	f, ok := m.lookup(name)
	if !ok {
		return FieldDescriptor{}, false
	}

	return FieldDescriptor{
		Name:         strings.ToLower(name),
		Column:       f.column,
		Kind:         f.kind,
		HasExtractor: f.extract != nil,
	}, true
}

func (m *FieldMap[M]) lookup(name string) (field[M], bool) {
	f, ok := m.fields[strings.ToLower(name)]
	return f, ok
}

// EncodeModelKey renders the cursor key string for one field of a row via the
// field's extractor. Returns false if the field is unknown or has no
// extractor.
func (m *FieldMap[M]) EncodeModelKey(model M, name string) (string, bool) {
	f, ok := m.lookup(name)
	if !ok || f.extract == nil {
		return "", false
	}

	return f.extract(model), true
}
