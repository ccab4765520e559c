package schema

// Base is embedded by concrete schema types to carry attachements.
type Base struct {
	attachement *Attachement
}

// Attachement returns the attached media.
func (r Base) Attachement() *Attachement {
	return r.attachement
}

// SetAttachement attaches media to the value.
func (r *Base) SetAttachement(v *Attachement) {
	r.attachement = v
}
