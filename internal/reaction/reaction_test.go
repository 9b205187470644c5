package reaction

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	id    uint
	state State
}

func (t *target) ReactionState() *State { return &t.state }
func (t *target) ReactionKey() string    { return fmt.Sprintf("comment:%d", t.id) }

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"None", "Like", "Dislike"} {
		s, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, s.String())
	}

	for _, raw := range []string{"", "like", "LIKE", "invalid", " Like"} {
		_, err := ParseStatus(raw)
		assert.ErrorIs(t, err, ErrInvalidStatus, raw)
	}
}

func TestAggregate_TransitionTable(t *testing.T) {
	t.Parallel()

	statuses := []Status{None, Like, Dislike}
	expected := map[[2]Status][2]int{
		{None, Like}:       {1, 0},
		{None, Dislike}:    {0, 1},
		{Like, Dislike}:    {-1, 1},
		{Like, None}:       {-1, 0},
		{Dislike, Like}:    {1, -1},
		{Dislike, None}:    {0, -1},
		{None, None}:       {0, 0},
		{Like, Like}:       {0, 0},
		{Dislike, Dislike}: {0, 0},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			from, to := from, to
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				t.Parallel()
				start := Aggregate{Likes: 5, Dislikes: 5}
				a := start
				a.Apply(from, to)
				want := expected[[2]Status{from, to}]
				assert.Equal(t, want[0], a.Likes-start.Likes)
				assert.Equal(t, want[1], a.Dislikes-start.Dislikes)
			})
		}
	}
}

func TestAggregate_PanicsOnNegativeTotals(t *testing.T) {
	t.Parallel()

	a := Aggregate{}
	assert.Panics(t, func() { a.Apply(Like, None) })

	b := Aggregate{Likes: 1}
	assert.Panics(t, func() { b.Apply(Dislike, Like) })
}

func TestReact_FromEveryStartingStatus(t *testing.T) {
	t.Parallel()

	statuses := []Status{None, Like, Dislike}
	for _, from := range statuses {
		for _, to := range statuses {
			from, to := from, to
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				t.Parallel()
				tg := &target{id: 1}
				React(tg, 7, "alice", from, t0)
				_, changed := React(tg, 7, "alice", to, t0.Add(time.Minute))

				assert.Equal(t, from != to, changed)
				assert.Equal(t, to, tg.state.Ledger.Get(7))
				assert.Equal(t, Recount(&tg.state.Ledger), tg.state.Aggregate)
			})
		}
	}
}

func TestReact_Idempotent(t *testing.T) {
	t.Parallel()

	tg := &target{id: 1}
	_, changed := React(tg, 1, "alice", Like, t0)
	assert.True(t, changed)
	_, changed = React(tg, 1, "alice", Like, t0.Add(time.Second))
	assert.False(t, changed)

	assert.Equal(t, Aggregate{Likes: 1}, tg.state.Aggregate)
	assert.Equal(t, 1, tg.state.Ledger.Len())

	rec, ok := tg.state.Ledger.Record(1)
	require.True(t, ok)
	assert.Equal(t, t0, rec.UpdatedAt)
}

func TestReact_NoneFromNewUserCreatesNothing(t *testing.T) {
	t.Parallel()

	tg := &target{id: 1}
	_, changed := React(tg, 1, "alice", None, t0)
	assert.False(t, changed)
	assert.Equal(t, 0, tg.state.Ledger.Len())
	assert.Equal(t, Aggregate{}, tg.state.Aggregate)
}

func TestReact_RoundTripBackToZero(t *testing.T) {
	t.Parallel()

	tg := &target{id: 1}
	React(tg, 1, "alice", Like, t0)
	React(tg, 1, "alice", None, t0)
	assert.Equal(t, Aggregate{}, tg.state.Aggregate)

	tg2 := &target{id: 2}
	React(tg2, 1, "alice", Like, t0)
	React(tg2, 1, "alice", Dislike, t0)
	assert.Equal(t, Aggregate{Dislikes: 1}, tg2.state.Aggregate)
}

func TestReact_UniquenessPerUser(t *testing.T) {
	t.Parallel()

	tg := &target{id: 1}
	seq := []Status{Like, Dislike, None, Like, Like, None, Dislike, Dislike, Like, None}
	for i, s := range seq {
		React(tg, 42, "carol", s, t0.Add(time.Duration(i)*time.Second))
		assert.GreaterOrEqual(t, tg.state.Aggregate.Likes, 0)
		assert.GreaterOrEqual(t, tg.state.Aggregate.Dislikes, 0)
	}
	assert.Equal(t, 1, tg.state.Ledger.Len())
	assert.Equal(t, Aggregate{}, tg.state.Aggregate)
}

func TestReact_LoginRefreshedInPlace(t *testing.T) {
	t.Parallel()

	tg := &target{id: 1}
	React(tg, 1, "alice", Like, t0)
	React(tg, 2, "bob", Like, t0)
	React(tg, 1, "alice2", Dislike, t0.Add(time.Hour))

	records := tg.state.Ledger.Records()
	require.Len(t, records, 2)
	assert.Equal(t, uint(1), records[0].UserID)
	assert.Equal(t, "alice2", records[0].Login)
	assert.Equal(t, t0, records[0].AddedAt)
	assert.Equal(t, t0.Add(time.Hour), records[0].UpdatedAt)
}

func TestReact_Scenario(t *testing.T) {
	t.Parallel()

	const alice, bob = uint(1), uint(2)
	tg := &target{id: 1}

	React(tg, alice, "alice", Like, t0)
	assert.Equal(t, Aggregate{Likes: 1}, tg.state.Aggregate)
	records := tg.state.Ledger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, Like, records[0].Status)

	React(tg, bob, "bob", Dislike, t0)
	assert.Equal(t, Aggregate{Likes: 1, Dislikes: 1}, tg.state.Aggregate)

	React(tg, alice, "alice", Dislike, t0)
	assert.Equal(t, Aggregate{Likes: 0, Dislikes: 2}, tg.state.Aggregate)

	React(tg, alice, "alice", None, t0)
	assert.Equal(t, Aggregate{Likes: 0, Dislikes: 1}, tg.state.Aggregate)

	records = tg.state.Ledger.Records()
	require.Len(t, records, 2)
	assert.Equal(t, None, records[0].Status)
	assert.Equal(t, Dislike, records[1].Status)
}

func TestState_MyStatus(t *testing.T) {
	t.Parallel()

	var s State
	s.React(3, "dave", Dislike, t0)
	assert.Equal(t, Dislike, s.MyStatus(3))
	assert.Equal(t, None, s.MyStatus(4))
	assert.Equal(t, None, s.MyStatus(0))
}

func TestNewestLikes_PositionOrder(t *testing.T) {
	t.Parallel()

	var s State
	s.React(1, "a", Like, t0)
	s.React(2, "b", Dislike, t0.Add(time.Second))
	s.React(3, "c", Like, t0.Add(2*time.Second))
	s.React(4, "d", Like, t0.Add(3*time.Second))

	got := NewestLikes(&s.Ledger, NewestLikesLimit, nil)
	assert.Equal(t, []string{"d", "c", "a"}, logins(got))

	s.React(5, "e", Like, t0.Add(4*time.Second))
	got = NewestLikes(&s.Ledger, NewestLikesLimit, nil)
	assert.Equal(t, []string{"e", "d", "c"}, logins(got))
}

func TestNewestLikes_RelikeKeepsLedgerPosition(t *testing.T) {
	t.Parallel()

	var s State
	s.React(1, "a", Like, t0)
	s.React(2, "b", Like, t0.Add(time.Second))
	s.React(1, "a", None, t0.Add(2*time.Second))
	s.React(1, "a", Like, t0.Add(3*time.Second))

	assert.Equal(t, []string{"b", "a"}, logins(NewestLikes(&s.Ledger, 3, nil)))
	assert.Equal(t, []string{"a", "b"}, logins(NewestLikesByTime(&s.Ledger, 3, nil)))
}

func TestNewestLikes_SkipBanned(t *testing.T) {
	t.Parallel()

	var s State
	s.React(1, "a", Like, t0)
	s.React(2, "b", Like, t0)
	require.True(t, s.Ledger.SetBanned(2, true))
	assert.False(t, s.Ledger.SetBanned(2, true))
	assert.False(t, s.Ledger.SetBanned(9, true))

	assert.Equal(t, []string{"a"}, logins(NewestLikes(&s.Ledger, 3, SkipBanned)))
	assert.Equal(t, []string{"b", "a"}, logins(NewestLikes(&s.Ledger, 3, nil)))
}

func TestNewestLikes_Empty(t *testing.T) {
	t.Parallel()

	var l Ledger
	assert.Empty(t, NewestLikes(&l, 3, nil))
	assert.Empty(t, NewestLikesByTime(&l, 3, nil))
}

func TestLedger_JSONColumn(t *testing.T) {
	t.Parallel()

	var s State
	s.React(1, "alice", Like, t0)
	s.React(2, "bob", Dislike, t0)

	v, err := s.Ledger.Value()
	require.NoError(t, err)

	var restored Ledger
	require.NoError(t, restored.Scan(v))
	assert.Equal(t, Like, restored.Get(1))
	assert.Equal(t, Dislike, restored.Get(2))
	assert.Equal(t, s.Ledger.Records(), restored.Records())

	var fromBytes Ledger
	require.NoError(t, fromBytes.Scan([]byte(v.(string))))
	assert.Equal(t, 2, fromBytes.Len())

	var empty Ledger
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
	require.NoError(t, empty.Scan(nil))
	assert.Equal(t, 0, empty.Len())

	assert.Error(t, empty.Scan(42))
}

func TestLedger_RejectsCorruptRecords(t *testing.T) {
	t.Parallel()

	var l Ledger
	err := json.Unmarshal([]byte(`[{"userId":1,"reaction":"Like"},{"userId":1,"reaction":"None"}]`), &l)
	assert.ErrorContains(t, err, "duplicate reaction record")

	err = json.Unmarshal([]byte(`[{"userId":1,"reaction":"Love"}]`), &l)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = NewLedger(Record{UserID: 1, Status: Like}, Record{UserID: 2, Status: Dislike})
	assert.NoError(t, err)
}

func TestKeyedLocker_SerializesSameKey(t *testing.T) {
	t.Parallel()

	locker := NewKeyedLocker()
	tg := &target{id: 9}

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			unlock := locker.Lock(tg.ReactionKey())
			defer unlock()
			React(tg, userID, fmt.Sprintf("user%d", userID), Like, t0)
		}(uint(i))
	}
	wg.Wait()

	assert.Equal(t, Aggregate{Likes: 50}, tg.state.Aggregate)
	assert.Equal(t, 50, tg.state.Ledger.Len())
	assert.Equal(t, 0, locker.Size())
}

func TestKeyedLocker_DropsReleasedKeys(t *testing.T) {
	t.Parallel()

	locker := NewKeyedLocker()
	for i := 1; i <= 100; i++ {
		unlock := locker.Lock(fmt.Sprintf("post:%d", i))
		unlock()
	}
	assert.Equal(t, 0, locker.Size())

	unlock := locker.Lock("post:1")
	assert.Equal(t, 1, locker.Size())

	acquired := make(chan struct{})
	go func() {
		release := locker.Lock("post:1")
		close(acquired)
		release()
	}()
	select {
	case <-acquired:
		t.Fatal("second holder acquired a held key")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 1, locker.Size())

	unlock()
	<-acquired
	assert.Eventually(t, func() bool { return locker.Size() == 0 }, time.Second, time.Millisecond)
}

func TestKeyedLocker_ForgetWhileHeld(t *testing.T) {
	t.Parallel()

	locker := NewKeyedLocker()
	unlock := locker.Lock("comment:3")
	locker.Forget("comment:3")
	assert.Equal(t, 0, locker.Size())

	other := locker.Lock("comment:3")
	// the stale unlock leaves the recreated entry alone
	unlock()
	assert.Equal(t, 1, locker.Size())
	other()
	assert.Equal(t, 0, locker.Size())
}

func TestNoopLocker(t *testing.T) {
	t.Parallel()

	var l Locker = NoopLocker{}
	unlock := l.Lock("post:1")
	unlock()
	l.Forget("post:1")
}

func logins(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Login)
	}
	return out
}
