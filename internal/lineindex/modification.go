package lineindex

// ModificationType is the kind of edit a Modification reports.
type ModificationType uint8

const (
	Insertion ModificationType = iota + 1
	Deletion
)

// Modification is an edit notification as a value. LinesAdded is signed:
// positive for inserts that create lines, negative for deletes that join
// them, zero for edits within one line.
type Modification struct {
	Type       ModificationType
	Position   int
	Length     int
	LinesAdded int
	Text       []byte
}

// Apply routes m to NotifyInserted or NotifyDeleted.
func (t *Tracker) Apply(m Modification) {
	switch m.Type {
	case Insertion:
		t.NotifyInserted(m.Position, m.Length, m.LinesAdded, m.Text)
	case Deletion:
		t.NotifyDeleted(m.Position, m.Length, -m.LinesAdded, m.Text)
	default:
		inconsistent("Apply", "unknown modification type %d", m.Type)
	}
}
