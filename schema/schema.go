package schema

import "encoding/json"

// Schema is the interface every agent input/output type implements.
type Schema interface {
	// Attachement returns the media attached to the value, if any.
	Attachement() *Attachement
}

// SchemaPointer is implemented by schema values that can carry attachements.
type SchemaPointer interface {
	Schema
	SetAttachement(*Attachement)
}

// Stringify renders a schema value for inclusion in a prompt.
func Stringify(s Schema) string {
	if v, ok := s.(String); ok {
		return string(v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes renders a schema value as raw bytes.
func ToBytes(s Schema) []byte {
	if v, ok := s.(String); ok {
		return []byte(v)
	}
	bs, _ := json.Marshal(s)
	return bs
}
