package service

import (
	"context"
	"sync"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/reaction"
	"inkwell/internal/repository"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByLoginOrEmailFn func(context.Context, string) (*models.User, error)
	takenFn             func(context.Context, string, string) (bool, bool, error)
	createFn            func(context.Context, *models.User) error
	deleteFn            func(context.Context, uint) error
	listFn              func(context.Context, repository.UserFilter) ([]models.User, int64, error)
	setBanFn            func(context.Context, uint, bool, string, time.Time) (repository.BanResult, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByLoginOrEmail(ctx context.Context, v string) (*models.User, error) {
	return s.getByLoginOrEmailFn(ctx, v)
}
func (s *userRepoStub) Taken(ctx context.Context, login, email string) (bool, bool, error) {
	return s.takenFn(ctx, login, email)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, f repository.UserFilter) ([]models.User, int64, error) {
	return s.listFn(ctx, f)
}
func (s *userRepoStub) SetBan(ctx context.Context, id uint, banned bool, reason string, at time.Time) (repository.BanResult, error) {
	return s.setBanFn(ctx, id, banned, reason, at)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Login: "user", Email: "user@example.com"}, nil
		},
		getByLoginOrEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		takenFn:             func(_ context.Context, _, _ string) (bool, bool, error) { return false, false, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.UserFilter) ([]models.User, int64, error) {
			return nil, 0, nil
		},
		setBanFn: func(_ context.Context, _ uint, _ bool, _ string, _ time.Time) (repository.BanResult, error) {
			return repository.BanResult{}, nil
		},
	}
}

// blogRepoStub is a stub for repository.BlogRepository.
type blogRepoStub struct {
	createFn          func(context.Context, *models.Blog) error
	getByIDFn         func(context.Context, uint) (*models.Blog, error)
	updateFn          func(context.Context, *models.Blog) error
	deleteFn          func(context.Context, uint) error
	listFn            func(context.Context, repository.BlogFilter) ([]models.Blog, int64, error)
	bindOwnerFn       func(context.Context, uint, *models.User) error
	setBannedFn       func(context.Context, uint, bool, time.Time) error
	banUserFn         func(context.Context, *models.BlogUserBan) error
	unbanUserFn       func(context.Context, uint, uint) error
	isUserBannedFn    func(context.Context, uint, uint) (bool, error)
	listBannedUsersFn func(context.Context, uint, repository.BannedUserFilter) ([]models.BlogUserBan, int64, error)
}

func (s *blogRepoStub) Create(ctx context.Context, b *models.Blog) error { return s.createFn(ctx, b) }
func (s *blogRepoStub) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	return s.getByIDFn(ctx, id)
}
func (s *blogRepoStub) Update(ctx context.Context, b *models.Blog) error { return s.updateFn(ctx, b) }
func (s *blogRepoStub) Delete(ctx context.Context, id uint) error        { return s.deleteFn(ctx, id) }
func (s *blogRepoStub) List(ctx context.Context, f repository.BlogFilter) ([]models.Blog, int64, error) {
	return s.listFn(ctx, f)
}
func (s *blogRepoStub) BindOwner(ctx context.Context, id uint, u *models.User) error {
	return s.bindOwnerFn(ctx, id, u)
}
func (s *blogRepoStub) SetBanned(ctx context.Context, id uint, banned bool, at time.Time) error {
	return s.setBannedFn(ctx, id, banned, at)
}
func (s *blogRepoStub) BanUser(ctx context.Context, b *models.BlogUserBan) error {
	return s.banUserFn(ctx, b)
}
func (s *blogRepoStub) UnbanUser(ctx context.Context, blogID, userID uint) error {
	return s.unbanUserFn(ctx, blogID, userID)
}
func (s *blogRepoStub) IsUserBanned(ctx context.Context, blogID, userID uint) (bool, error) {
	return s.isUserBannedFn(ctx, blogID, userID)
}
func (s *blogRepoStub) ListBannedUsers(ctx context.Context, blogID uint, f repository.BannedUserFilter) ([]models.BlogUserBan, int64, error) {
	return s.listBannedUsersFn(ctx, blogID, f)
}

// noopBlogRepo serves blog id N owned by user N.
func noopBlogRepo() *blogRepoStub {
	return &blogRepoStub{
		createFn: func(_ context.Context, b *models.Blog) error {
			b.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Blog, error) {
			owner := id
			return &models.Blog{ID: id, Name: "blog", OwnerID: &owner}, nil
		},
		updateFn: func(_ context.Context, _ *models.Blog) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.BlogFilter) ([]models.Blog, int64, error) {
			return nil, 0, nil
		},
		bindOwnerFn:    func(_ context.Context, _ uint, _ *models.User) error { return nil },
		setBannedFn:    func(_ context.Context, _ uint, _ bool, _ time.Time) error { return nil },
		banUserFn:      func(_ context.Context, _ *models.BlogUserBan) error { return nil },
		unbanUserFn:    func(_ context.Context, _, _ uint) error { return nil },
		isUserBannedFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		listBannedUsersFn: func(_ context.Context, _ uint, _ repository.BannedUserFilter) ([]models.BlogUserBan, int64, error) {
			return nil, 0, nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, repository.PostFilter) ([]models.Post, int64, error)
	saveReactionsFn func(context.Context, *models.Post, bool) error
	inBatchesFn     func(context.Context, int, func([]models.Post) error) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.Post) error { return s.updateFn(ctx, p) }
func (s *postRepoStub) Delete(ctx context.Context, id uint) error        { return s.deleteFn(ctx, id) }
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter) ([]models.Post, int64, error) {
	return s.listFn(ctx, f)
}
func (s *postRepoStub) SaveReactions(ctx context.Context, p *models.Post, checkVersion bool) error {
	return s.saveReactionsFn(ctx, p, checkVersion)
}
func (s *postRepoStub) InBatches(ctx context.Context, size int, fn func([]models.Post) error) error {
	if s.inBatchesFn == nil {
		return nil
	}
	return s.inBatchesFn(ctx, size, fn)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, BlogID: 1, BlogName: "blog"}, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, _ repository.PostFilter) ([]models.Post, int64, error) {
			return nil, 0, nil
		},
		saveReactionsFn: func(_ context.Context, _ *models.Post, _ bool) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	updateFn        func(context.Context, *models.Comment) error
	deleteFn        func(context.Context, uint) error
	listByPostFn    func(context.Context, uint, models.PageQuery) ([]models.Comment, int64, error)
	saveReactionsFn func(context.Context, *models.Comment, bool) error
	inBatchesFn     func(context.Context, int, func([]models.Comment) error) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, q models.PageQuery) ([]models.Comment, int64, error) {
	return s.listByPostFn(ctx, postID, q)
}
func (s *commentRepoStub) SaveReactions(ctx context.Context, c *models.Comment, checkVersion bool) error {
	return s.saveReactionsFn(ctx, c, checkVersion)
}
func (s *commentRepoStub) InBatches(ctx context.Context, size int, fn func([]models.Comment) error) error {
	if s.inBatchesFn == nil {
		return nil
	}
	return s.inBatchesFn(ctx, size, fn)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1, CommentatorID: 1}, nil
		},
		updateFn: func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listByPostFn: func(_ context.Context, _ uint, _ models.PageQuery) ([]models.Comment, int64, error) {
			return nil, 0, nil
		},
		saveReactionsFn: func(_ context.Context, _ *models.Comment, _ bool) error { return nil },
	}
}

// memPost keeps one post in memory and honours version checks like the real repository.
type memPost struct {
	mu    sync.Mutex
	post  models.Post
	saves int
}

func cloneLedger(l *reaction.Ledger) reaction.Ledger {
	raw, err := l.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var out reaction.Ledger
	if err := out.UnmarshalJSON(raw); err != nil {
		panic(err)
	}
	return out
}

func (m *memPost) repo() *postRepoStub {
	stub := noopPostRepo()
	stub.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if id != m.post.ID {
			return nil, models.NewNotFoundError("Post", id)
		}
		p := m.post
		p.Ledger = cloneLedger(&m.post.Ledger)
		return &p, nil
	}
	stub.saveReactionsFn = func(_ context.Context, p *models.Post, checkVersion bool) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if checkVersion && p.Version != m.post.Version {
			return repository.ErrVersionConflict
		}
		m.post.Ledger = cloneLedger(&p.Ledger)
		m.post.Aggregate = p.Aggregate
		m.post.Version++
		p.Version = m.post.Version
		m.saves++
		return nil
	}
	return stub
}
