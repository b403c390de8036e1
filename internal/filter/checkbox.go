package filter

// TriState is the state of the "select all" checkbox.
type TriState string

const (
	Unchecked     TriState = "unchecked"
	Checked       TriState = "checked"
	Indeterminate TriState = "indeterminate"
)

// Checkbox is one industry checkbox.
type Checkbox struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
	Default bool   `json:"default"`
}

// CheckboxGroup is the industry checkbox list plus the search box bound to
// it. A non-empty search always leaves every checkbox unchecked.
type CheckboxGroup struct {
	items  []Checkbox
	search string
}

// NewCheckboxGroup lists names in order, checking those in st.Industries and
// carrying over st.Search.
func NewCheckboxGroup(names []string, st FilterState) *CheckboxGroup {
	g := &CheckboxGroup{search: st.Search}
	for _, n := range names {
		g.items = append(g.items, Checkbox{
			Name:    n,
			Checked: st.Search == "" && contains(st.Industries, n),
			Default: IsDefaultIndustry(n),
		})
	}
	return g
}

// Items returns a copy of the checkboxes.
func (g *CheckboxGroup) Items() []Checkbox {
	return append([]Checkbox(nil), g.items...)
}

// SetAll applies the "select all" checkbox to every industry.
func (g *CheckboxGroup) SetAll(checked bool) {
	if checked {
		g.search = ""
	}
	for i := range g.items {
		g.items[i].Checked = checked
	}
}

// Set checks or unchecks one industry. Checking clears the search. It
// reports whether the industry exists.
func (g *CheckboxGroup) Set(name string, checked bool) bool {
	for i := range g.items {
		if g.items[i].Name == name {
			g.items[i].Checked = checked
			if checked {
				g.search = ""
			}
			return true
		}
	}
	return false
}

// Toggle flips one industry.
func (g *CheckboxGroup) Toggle(name string) bool {
	for _, it := range g.items {
		if it.Name == name {
			return g.Set(name, !it.Checked)
		}
	}
	return false
}

// SelectOnly checks name and nothing else.
func (g *CheckboxGroup) SelectOnly(name string) bool {
	g.SetAll(false)
	return g.Set(name, true)
}

// Search sets the search text and clears every checkbox.
func (g *CheckboxGroup) Search(text string) {
	g.search = text
	if text != "" {
		g.SetAll(false)
	}
}

// SelectAllState is checked when every box is checked, unchecked when none
// is, and indeterminate otherwise.
func (g *CheckboxGroup) SelectAllState() TriState {
	n := 0
	for _, it := range g.items {
		if it.Checked {
			n++
		}
	}
	switch {
	case n == 0:
		return Unchecked
	case n == len(g.items):
		return Checked
	default:
		return Indeterminate
	}
}

// Add appends an industry if it is not already listed.
func (g *CheckboxGroup) Add(name string) {
	for _, it := range g.items {
		if it.Name == name {
			return
		}
	}
	g.items = append(g.items, Checkbox{Name: name, Default: IsDefaultIndustry(name)})
}

// Remove drops an industry from the list.
func (g *CheckboxGroup) Remove(name string) bool {
	for i, it := range g.items {
		if it.Name == name {
			g.items = append(g.items[:i], g.items[i+1:]...)
			return true
		}
	}
	return false
}

// Names lists every industry in display order.
func (g *CheckboxGroup) Names() []string {
	out := make([]string, len(g.items))
	for i, it := range g.items {
		out[i] = it.Name
	}
	return out
}

// Selected lists the checked industries in display order.
func (g *CheckboxGroup) Selected() []string {
	var out []string
	for _, it := range g.items {
		if it.Checked {
			out = append(out, it.Name)
		}
	}
	return out
}

// State reduces the group to a FilterState for username.
func (g *CheckboxGroup) State(username string) FilterState {
	st := FilterState{Search: g.search, Username: username}
	if g.search == "" {
		st.Industries = g.Selected()
		if st.Industries == nil {
			st.Industries = []string{}
		}
	}
	return st
}
