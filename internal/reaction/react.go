package reaction

import "time"

// State is the reaction value object embedded in every reactable model.
type State struct {
	Ledger    Ledger    `gorm:"column:reactions;type:jsonb;not null;default:'[]'" json:"-"`
	Aggregate Aggregate `gorm:"embedded" json:"-"`
}

// Reactable is implemented by models that carry a reaction State.
type Reactable interface {
	ReactionState() *State
	// ReactionKey identifies the target across kinds, e.g. "post:7".
	ReactionKey() string
}

// Change describes one applied transition.
type Change struct {
	From Status
	To   Status
}

// React records status for the user on the target and keeps the totals in step.
// Repeating the current status changes nothing and reports false.
func React(t Reactable, userID uint, login string, status Status, at time.Time) (Change, bool) {
	return t.ReactionState().React(userID, login, status, at)
}

// React applies a reaction to the state. See the package-level React.
func (s *State) React(userID uint, login string, status Status, at time.Time) (Change, bool) {
	old := s.Ledger.Get(userID)
	if old == status {
		return Change{From: old, To: status}, false
	}
	s.Ledger.Set(userID, login, status, at)
	s.Aggregate.Apply(old, status)
	return Change{From: old, To: status}, true
}

// MyStatus returns the viewer's status. Anonymous viewers (id 0) always see None.
func (s *State) MyStatus(viewerID uint) Status {
	if viewerID == 0 {
		return None
	}
	return s.Ledger.Get(viewerID)
}
