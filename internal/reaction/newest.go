package reaction

import "sort"

// NewestLikesLimit is the size of the newest-likes projection shown on posts.
const NewestLikesLimit = 3

// NewestLikes returns up to n Like records, most recent first, where "recent" means
// ledger position. A user who re-likes keeps the position of their first reaction.
// Records for which skip returns true are left out; skip may be nil.
func NewestLikes(l *Ledger, n int, skip func(Record) bool) []Record {
	likes := filterLikes(l, skip)
	if len(likes) > n {
		likes = likes[len(likes)-n:]
	}
	for i, j := 0, len(likes)-1; i < j; i, j = i+1, j-1 {
		likes[i], likes[j] = likes[j], likes[i]
	}
	return likes
}

// NewestLikesByTime is the timestamp-ordered variant of NewestLikes: Like records sorted by
// the time of their last transition, newest first. Ties keep reverse ledger order.
func NewestLikesByTime(l *Ledger, n int, skip func(Record) bool) []Record {
	likes := filterLikes(l, skip)
	for i, j := 0, len(likes)-1; i < j; i, j = i+1, j-1 {
		likes[i], likes[j] = likes[j], likes[i]
	}
	sort.SliceStable(likes, func(i, j int) bool {
		return likes[i].UpdatedAt.After(likes[j].UpdatedAt)
	})
	if len(likes) > n {
		likes = likes[:n]
	}
	return likes
}

// SkipBanned is a NewestLikes filter that hides records of banned users.
func SkipBanned(r Record) bool {
	return r.IsBanned
}

func filterLikes(l *Ledger, skip func(Record) bool) []Record {
	var likes []Record
	for _, rec := range l.records {
		if rec.Status != Like {
			continue
		}
		if skip != nil && skip(rec) {
			continue
		}
		likes = append(likes, rec)
	}
	return likes
}
