package reaction

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Record is one user's reaction to a target.
type Record struct {
	UserID    uint      `json:"userId"`
	Login     string    `json:"login"`
	Status    Status    `json:"reaction"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsBanned  bool      `json:"isBanned"`
}

// Ledger holds at most one Record per user, in first-reaction order.
// Records are mutated in place and never removed. The zero value is an empty ledger.
type Ledger struct {
	records []Record
	index   map[uint]int
}

// NewLedger builds a ledger from records in insertion order.
func NewLedger(records ...Record) (Ledger, error) {
	var l Ledger
	if err := l.load(records); err != nil {
		return Ledger{}, err
	}
	return l, nil
}

// Get returns the user's current status, or None when the user never reacted.
func (l *Ledger) Get(userID uint) Status {
	if i, ok := l.index[userID]; ok {
		return l.records[i].Status
	}
	return None
}

// Set stores status for the user and returns the previous one. A missing record counts as None
// and is appended; an existing record keeps its position and gets the latest login.
func (l *Ledger) Set(userID uint, login string, status Status, at time.Time) Status {
	if i, ok := l.index[userID]; ok {
		rec := &l.records[i]
		old := rec.Status
		rec.Login = login
		if old != status {
			rec.Status = status
			rec.UpdatedAt = at
		}
		return old
	}

	if l.index == nil {
		l.index = make(map[uint]int)
	}
	l.index[userID] = len(l.records)
	l.records = append(l.records, Record{
		UserID:    userID,
		Login:     login,
		Status:    status,
		AddedAt:   at,
		UpdatedAt: at,
	})
	return None
}

// Record returns a copy of the user's record.
func (l *Ledger) Record(userID uint) (Record, bool) {
	i, ok := l.index[userID]
	if !ok {
		return Record{}, false
	}
	return l.records[i], true
}

// SetBanned flags the user's record. It reports whether the ledger changed.
func (l *Ledger) SetBanned(userID uint, banned bool) bool {
	i, ok := l.index[userID]
	if !ok || l.records[i].IsBanned == banned {
		return false
	}
	l.records[i].IsBanned = banned
	return true
}

// Len is the number of distinct users that ever reacted.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the records in ledger order.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) load(records []Record) error {
	l.records = make([]Record, 0, len(records))
	l.index = make(map[uint]int, len(records))
	for _, rec := range records {
		if _, dup := l.index[rec.UserID]; dup {
			return fmt.Errorf("duplicate reaction record for user %d", rec.UserID)
		}
		if !rec.Status.Valid() {
			return fmt.Errorf("user %d: %w: %q", rec.UserID, ErrInvalidStatus, rec.Status)
		}
		l.index[rec.UserID] = len(l.records)
		l.records = append(l.records, rec)
	}
	return nil
}

// MarshalJSON encodes the ledger as an ordered array of records.
func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.records)
}

// UnmarshalJSON decodes an ordered array of records and rebuilds the user index.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	return l.load(records)
}

// Scan implements sql.Scanner so a ledger can live in a JSON column.
func (l *Ledger) Scan(value any) error {
	switch t := value.(type) {
	case nil:
		return l.load(nil)
	case string:
		return l.UnmarshalJSON([]byte(t))
	case []byte:
		return l.UnmarshalJSON(t)
	}
	return fmt.Errorf("cannot scan invalid data type %T", value)
}

// Value implements driver.Valuer.
func (l Ledger) Value() (driver.Value, error) {
	b, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
