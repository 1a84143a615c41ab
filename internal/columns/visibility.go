package columns

// Visibility is the per-column show/hide state of one screening session.
// It changes only through Toggle, ShowAll, HideAll and the group variants;
// filtering and sorting never touch it. The pinned ticker column is always
// visible.
type Visibility struct {
	visible map[Field]bool
}

// NewVisibility seeds the map from the curated default-visible set
func NewVisibility() *Visibility {
	v := &Visibility{visible: make(map[Field]bool, len(registry))}
	for _, def := range registry {
		v.visible[def.Field] = def.DefaultVisible || def.Pinned()
	}
	return v
}

// IsVisible reports whether a column is currently shown
func (v *Visibility) IsVisible(f Field) bool {
	return v.visible[f]
}

// Toggle sets one column. Requests for the pinned column or an unknown
// field are ignored; the return value reports whether anything changed.
func (v *Visibility) Toggle(f Field, visible bool) bool {
	def, ok := Lookup(f)
	if !ok || def.Pinned() {
		return false
	}
	if v.visible[f] == visible {
		return false
	}
	v.visible[f] = visible
	return true
}

// ShowAll makes every column visible
func (v *Visibility) ShowAll() {
	v.setWhere(func(Definition) bool { return true }, true)
}

// HideAll hides every column except the pinned one
func (v *Visibility) HideAll() {
	v.setWhere(func(Definition) bool { return true }, false)
}

// ShowGroup makes every column of a group visible
func (v *Visibility) ShowGroup(g Group) {
	v.setWhere(func(d Definition) bool { return d.Group == g }, true)
}

// HideGroup hides every non-pinned column of a group
func (v *Visibility) HideGroup(g Group) {
	v.setWhere(func(d Definition) bool { return d.Group == g }, false)
}

func (v *Visibility) setWhere(match func(Definition) bool, visible bool) {
	for _, def := range registry {
		if def.Pinned() || !match(def) {
			continue
		}
		v.visible[def.Field] = visible
	}
}

// Visible returns the shown columns in registry order
func (v *Visibility) Visible() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, def := range registry {
		if v.visible[def.Field] {
			out = append(out, def)
		}
	}
	return out
}

// Fields returns the shown column identifiers in registry order
func (v *Visibility) Fields() []Field {
	defs := v.Visible()
	out := make([]Field, len(defs))
	for i, def := range defs {
		out[i] = def.Field
	}
	return out
}

// Clone returns an independent copy
func (v *Visibility) Clone() *Visibility {
	c := &Visibility{visible: make(map[Field]bool, len(v.visible))}
	for f, on := range v.visible {
		c.visible[f] = on
	}
	return c
}
