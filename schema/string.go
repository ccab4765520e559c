package schema

// String is a plain-text schema value.
type String string

// NewString returns a pointer to a String schema value.
func NewString(s string) *String {
	v := String(s)
	return &v
}

func (s String) Attachement() *Attachement {
	return nil
}

func (s String) SetAttachement(v *Attachement) {
}

func (s String) String() string {
	return string(s)
}
