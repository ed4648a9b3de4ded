package entities

// Selection is the ordered set of holdings chosen for harvesting.
// Every member is a record of the dataset it was created with.
type Selection struct {
	dataset *Dataset
	items   []HoldingRecord

	// removed remembers where the last toggled-off record sat so that
	// toggling it straight back restores the previous order.
	removed removal
}

type removal struct {
	id    string
	index int
}

// NewSelection creates an empty selection bound to a dataset
func NewSelection(dataset *Dataset) *Selection {
	return &Selection{dataset: dataset, items: []HoldingRecord{}}
}

func (s *Selection) ready() error {
	if s == nil || s.dataset == nil {
		return ErrSelectionNotInitialized
	}
	return nil
}

func (s *Selection) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Toggle removes id when selected, otherwise appends it if the dataset knows it.
// A record toggled back on right after being removed returns to its old
// position. Unknown ids are ignored.
func (s *Selection) Toggle(id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if i := s.indexOf(id); i >= 0 {
		items := make([]HoldingRecord, 0, len(s.items)-1)
		items = append(items, s.items[:i]...)
		s.items = append(items, s.items[i+1:]...)
		s.removed = removal{id: id, index: i}
		return nil
	}

	record, ok := s.dataset.Lookup(id)
	if !ok {
		return nil
	}

	at := len(s.items)
	if s.removed.id == id && s.removed.index < at {
		at = s.removed.index
	}
	s.removed = removal{}

	items := make([]HoldingRecord, 0, len(s.items)+1)
	items = append(items, s.items[:at]...)
	items = append(items, record)
	s.items = append(items, s.items[at:]...)
	return nil
}

// IsSelected reports whether id is a member
func (s *Selection) IsSelected(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.indexOf(id) >= 0, nil
}

// Clear empties the selection
func (s *Selection) Clear() error {
	if err := s.ready(); err != nil {
		return err
	}
	s.items = []HoldingRecord{}
	s.removed = removal{}
	return nil
}

// Replace sets the selection to exactly records, in order. Records are
// resolved against the dataset by id; unknown ids are dropped and repeated
// ids keep their first position.
func (s *Selection) Replace(records []HoldingRecord) error {
	if err := s.ready(); err != nil {
		return err
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return s.ReplaceIDs(ids)
}

// ReplaceIDs is Replace keyed by holding id
func (s *Selection) ReplaceIDs(ids []string) error {
	if err := s.ready(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(ids))
	items := make([]HoldingRecord, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		record, ok := s.dataset.Lookup(id)
		if !ok {
			continue
		}
		seen[id] = true
		items = append(items, record)
	}

	s.items = items
	s.removed = removal{}
	return nil
}

// Records returns a copy of the selected holdings in selection order
func (s *Selection) Records() ([]HoldingRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	out := make([]HoldingRecord, len(s.items))
	copy(out, s.items)
	return out, nil
}

// IDs returns the selected holding ids in selection order
func (s *Selection) IDs() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ids := make([]string, len(s.items))
	for i, item := range s.items {
		ids[i] = item.ID
	}
	return ids, nil
}

func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Clone returns an independent copy sharing the same dataset
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}
	items := make([]HoldingRecord, len(s.items))
	copy(items, s.items)
	return &Selection{dataset: s.dataset, items: items, removed: s.removed}
}
