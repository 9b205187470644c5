package reaction

import "fmt"

// Aggregate holds the like/dislike totals of a target.
type Aggregate struct {
	Likes    int `gorm:"column:likes_count;not null;default:0" json:"likesCount"`
	Dislikes int `gorm:"column:dislikes_count;not null;default:0" json:"dislikesCount"`
}

// delta is the effect of one transition on the totals.
type delta struct{ likes, dislikes int }

// transitions covers every (old, new) pair that changes the totals. Pairs not listed are
// same-value no-ops.
var transitions = map[[2]Status]delta{
	{None, Like}:    {likes: 1},
	{None, Dislike}: {dislikes: 1},
	{Like, Dislike}: {likes: -1, dislikes: 1},
	{Like, None}:    {likes: -1},
	{Dislike, Like}: {likes: 1, dislikes: -1},
	{Dislike, None}: {dislikes: -1},
}

// Apply updates the totals for a user moving between two statuses.
// It panics if either total would drop below zero, which only happens when the aggregate
// and its ledger were already out of sync.
func (a *Aggregate) Apply(from, to Status) {
	d, ok := transitions[[2]Status{from, to}]
	if !ok {
		return
	}
	a.Likes += d.likes
	a.Dislikes += d.dislikes
	if a.Likes < 0 || a.Dislikes < 0 {
		panic(fmt.Sprintf("reaction: negative aggregate %+v after %s -> %s", *a, from, to))
	}
}

// Recount rebuilds the totals by scanning the ledger.
func Recount(l *Ledger) Aggregate {
	var a Aggregate
	for _, rec := range l.records {
		switch rec.Status {
		case Like:
			a.Likes++
		case Dislike:
			a.Dislikes++
		}
	}
	return a
}
