package datasource

// SelectionOptions configures a Selection's behavior.
type SelectionOptions struct {
	// Multiple allows more than one selected item.
	Multiple bool
	// MaxSources caps the selection size in multi mode. Zero means unlimited.
	MaxSources int
	// Deferred delays OnChange until Apply is called. When false every Toggle
	// notifies immediately.
	Deferred bool
	// OnChange receives the bound data source value whenever the selection is
	// committed.
	OnChange func(DataSourceOrList)
}

// Selection tracks the selected items of a data source picker. It is not safe
// for concurrent use; selector UIs drive it from a single goroutine.
type Selection struct {
	opts  SelectionOptions
	items []SelectedItem
	index map[SelectedItem]int
}

// NewSelection creates a selection seeded from an existing data source value,
// so a picker opens with the widget's current binding highlighted.
func NewSelection(current DataSourceOrList, opts SelectionOptions) *Selection {
	s := &Selection{opts: opts, index: make(map[SelectedItem]int)}
	for _, item := range SelectedItems(current) {
		if !opts.Multiple && len(s.items) == 1 {
			break
		}
		if opts.Multiple && opts.MaxSources > 0 && len(s.items) == opts.MaxSources {
			break
		}
		s.push(item)
	}
	return s
}

// Toggle flips the selected state of an item.
//
// In single mode, picking an unselected item replaces the selection, and
// picking the currently selected item clears it. In multi mode items toggle
// independently, except that adding beyond MaxSources is a no-op.
func (s *Selection) Toggle(item SelectedItem) {
	if _, selected := s.index[item]; selected {
		s.remove(item)
		s.changed()
		return
	}
	if !s.opts.Multiple {
		s.clear()
		s.push(item)
		s.changed()
		return
	}
	if s.opts.MaxSources > 0 && len(s.items) >= s.opts.MaxSources {
		return
	}
	s.push(item)
	s.changed()
}

// IsSelected reports whether the item is currently selected.
func (s *Selection) IsSelected(item SelectedItem) bool {
	_, ok := s.index[item]
	return ok
}

// Items returns the selected keys in selection order.
func (s *Selection) Items() []SelectedItem {
	out := make([]SelectedItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of selected items.
func (s *Selection) Len() int { return len(s.items) }

// Clear empties the selection.
func (s *Selection) Clear() {
	if len(s.items) == 0 {
		return
	}
	s.clear()
	s.changed()
}

// Value converts the current selection into a data source value.
func (s *Selection) Value() DataSourceOrList {
	return DataSourceFromItems(s.items, s.opts.Multiple)
}

// Apply commits a deferred selection, invoking OnChange with the bound value.
// It is a no-op in non-deferred mode, where changes commit as they happen.
func (s *Selection) Apply() {
	if !s.opts.Deferred {
		return
	}
	s.notify()
}

func (s *Selection) changed() {
	if s.opts.Deferred {
		return
	}
	s.notify()
}

func (s *Selection) notify() {
	if s.opts.OnChange != nil {
		s.opts.OnChange(s.Value())
	}
}

func (s *Selection) push(item SelectedItem) {
	s.index[item] = len(s.items)
	s.items = append(s.items, item)
}

func (s *Selection) remove(item SelectedItem) {
	pos, ok := s.index[item]
	if !ok {
		return
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, item)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i]] = i
	}
}

func (s *Selection) clear() {
	s.items = s.items[:0]
	for k := range s.index {
		delete(s.index, k)
	}
}
