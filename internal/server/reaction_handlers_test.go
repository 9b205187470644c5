package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/reaction"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	*testServer
	blogger string
	blog    models.Blog
	post    models.PostView
}

// newFixture registers a blogger owning one blog with one post.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ts := newTestServer(t)
	f := &fixture{testServer: ts, blogger: ts.signup(t, "blogger")}

	status, body := ts.do(t, testRequest{method: http.MethodPost, path: "/api/blogger/blogs", token: f.blogger, body: fiber.Map{
		"name": "gophers", "description": "all about go", "websiteUrl": "https://gophers.example.com",
	}})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	f.blog = decode[models.Blog](t, body)

	status, body = ts.do(t, testRequest{method: http.MethodPost, path: fmt.Sprintf("/api/blogger/blogs/%d/posts", f.blog.ID), token: f.blogger, body: fiber.Map{
		"title": "channels", "shortDescription": "on channels", "content": "buffered and unbuffered",
	}})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	f.post = decode[models.PostView](t, body)
	return f
}

func (f *fixture) postPath() string { return fmt.Sprintf("/api/posts/%d", f.post.ID) }

func (f *fixture) comment(t *testing.T, token, content string) models.CommentView {
	t.Helper()
	status, body := f.do(t, testRequest{method: http.MethodPost, path: f.postPath() + "/comments", token: token, body: fiber.Map{"content": content}})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	return decode[models.CommentView](t, body)
}

func (f *fixture) getPost(t *testing.T, token string) models.PostView {
	t.Helper()
	status, body := f.do(t, testRequest{method: http.MethodGet, path: f.postPath(), token: token})
	require.Equal(t, fiber.StatusOK, status, string(body))
	return decode[models.PostView](t, body)
}

func (f *fixture) react(t *testing.T, path, token, status string) int {
	t.Helper()
	code, _ := f.do(t, testRequest{method: http.MethodPut, path: path + "/like-status", token: token, body: fiber.Map{"likeStatus": status}})
	return code
}

func TestPostLikeStatus_AliceAndBob(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")

	assert.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), alice, "Like"))
	assert.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), bob, "Dislike"))
	// Repeating the same status is a no-op but still succeeds.
	assert.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), alice, "Like"))

	view := f.getPost(t, alice)
	info := view.ExtendedLikesInfo
	assert.Equal(t, 1, info.LikesCount)
	assert.Equal(t, 1, info.DislikesCount)
	assert.Equal(t, reaction.Like, info.MyStatus)
	require.Len(t, info.NewestLikes, 1)
	assert.Equal(t, "alice", info.NewestLikes[0].Login)

	assert.Equal(t, reaction.Dislike, f.getPost(t, bob).ExtendedLikesInfo.MyStatus)
	assert.Equal(t, reaction.None, f.getPost(t, "").ExtendedLikesInfo.MyStatus)

	// Bob switches to Like, Alice withdraws.
	assert.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), bob, "Like"))
	assert.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), alice, "None"))

	info = f.getPost(t, alice).ExtendedLikesInfo
	assert.Equal(t, 1, info.LikesCount)
	assert.Equal(t, 0, info.DislikesCount)
	assert.Equal(t, reaction.None, info.MyStatus)
	require.Len(t, info.NewestLikes, 1)
	assert.Equal(t, "bob", info.NewestLikes[0].Login)
}

func TestPostLikeStatus_NewestLikesLimit(t *testing.T) {
	f := newFixture(t)
	logins := []string{"a_user", "b_user", "c_user", "d_user"}
	statuses := []string{"Like", "Dislike", "Like", "Like"}
	for i, login := range logins {
		token := f.signup(t, login)
		require.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), token, statuses[i]))
	}

	info := f.getPost(t, "").ExtendedLikesInfo
	assert.Equal(t, 3, info.LikesCount)
	assert.Equal(t, 1, info.DislikesCount)
	got := make([]string, 0, len(info.NewestLikes))
	for _, l := range info.NewestLikes {
		got = append(got, l.Login)
	}
	assert.Equal(t, []string{"d_user", "c_user", "a_user"}, got)
}

func TestLikeStatus_Errors(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	comment := f.comment(t, alice, strings.Repeat("c", 25))
	commentPath := fmt.Sprintf("/api/comments/%d", comment.ID)

	for _, path := range []string{f.postPath(), commentPath} {
		t.Run(path, func(t *testing.T) {
			code, body := f.do(t, testRequest{method: http.MethodPut, path: path + "/like-status", token: alice, body: fiber.Map{"likeStatus": "Love"}})
			assert.Equal(t, fiber.StatusBadRequest, code)
			errs := decode[models.ErrorResponse](t, body)
			require.Len(t, errs.ErrorsMessages, 1)
			assert.Equal(t, "likeStatus", errs.ErrorsMessages[0].Field)

			code, body = f.do(t, testRequest{method: http.MethodPut, path: path + "/like-status", token: alice, body: fiber.Map{}})
			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.Equal(t, "likeStatus", decode[models.ErrorResponse](t, body).ErrorsMessages[0].Field)

			assert.Equal(t, fiber.StatusUnauthorized, f.react(t, path, "", "Like"))
			assert.Equal(t, fiber.StatusUnauthorized, f.react(t, path, "not-a-token", "Like"))
		})
	}

	assert.Equal(t, fiber.StatusNotFound, f.react(t, "/api/posts/9999", alice, "Like"))
	assert.Equal(t, fiber.StatusNotFound, f.react(t, "/api/comments/9999", alice, "Like"))
	assert.Equal(t, fiber.StatusNotFound, f.react(t, "/api/comments/abc", alice, "Like"))
}

func TestCommentLikeStatus(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	comment := f.comment(t, alice, "a thoughtful remark about channels")
	path := fmt.Sprintf("/api/comments/%d", comment.ID)

	assert.Equal(t, fiber.StatusNoContent, f.react(t, path, alice, "Like"))
	assert.Equal(t, fiber.StatusNoContent, f.react(t, path, bob, "Like"))
	assert.Equal(t, fiber.StatusNoContent, f.react(t, path, bob, "Dislike"))

	status, body := f.do(t, testRequest{method: http.MethodGet, path: path, token: bob})
	require.Equal(t, fiber.StatusOK, status, string(body))
	view := decode[models.CommentView](t, body)
	assert.Equal(t, 1, view.LikesInfo.LikesCount)
	assert.Equal(t, 1, view.LikesInfo.DislikesCount)
	assert.Equal(t, reaction.Dislike, view.LikesInfo.MyStatus)
	assert.Equal(t, "alice", view.CommentatorInfo.UserLogin)

	status, body = f.do(t, testRequest{method: http.MethodGet, path: f.postPath() + "/comments", token: alice})
	require.Equal(t, fiber.StatusOK, status)
	page := decode[models.Page[models.CommentView]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, reaction.Like, page.Items[0].LikesInfo.MyStatus)
}

func TestUserBanHidesCommentsAndLikes(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	comment := f.comment(t, alice, "alice was here and liked it")
	f.comment(t, bob, "bob was here and did not")

	require.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), alice, "Like"))
	require.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), bob, "Like"))

	status, body := f.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me", token: alice})
	require.Equal(t, fiber.StatusOK, status)
	aliceID := decode[struct {
		UserID uint `json:"userId"`
	}](t, body).UserID

	status, body = f.do(t, testRequest{method: http.MethodPut, path: fmt.Sprintf("/api/sa/users/%d/ban", aliceID), basic: true, body: fiber.Map{
		"isBanned": true, "banReason": "spamming the comment section repeatedly",
	}})
	require.Equal(t, fiber.StatusNoContent, status, string(body))

	info := f.getPost(t, "").ExtendedLikesInfo
	assert.Equal(t, 2, info.LikesCount, "counts are untouched by bans")
	require.Len(t, info.NewestLikes, 1)
	assert.Equal(t, "bob", info.NewestLikes[0].Login)

	status, body = f.do(t, testRequest{method: http.MethodGet, path: f.postPath() + "/comments"})
	require.Equal(t, fiber.StatusOK, status)
	page := decode[models.Page[models.CommentView]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].CommentatorInfo.UserLogin)

	status, _ = f.do(t, testRequest{method: http.MethodGet, path: fmt.Sprintf("/api/comments/%d", comment.ID)})
	assert.Equal(t, fiber.StatusNotFound, status)

	// Banned users cannot log in.
	status, _ = f.do(t, testRequest{method: http.MethodPost, path: "/api/auth/login", body: fiber.Map{
		"loginOrEmail": "alice", "password": "secret1",
	}})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestDeletedPostRejectsReactions(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	require.Equal(t, fiber.StatusNoContent, f.react(t, f.postPath(), alice, "Like"))

	status, _ := f.do(t, testRequest{method: http.MethodDelete, path: fmt.Sprintf("/api/blogger/blogs/%d/posts/%d", f.blog.ID, f.post.ID), token: f.blogger})
	require.Equal(t, fiber.StatusNoContent, status)

	assert.Equal(t, fiber.StatusNotFound, f.react(t, f.postPath(), alice, "Dislike"))
}

func TestHiddenTargetsRejectReactions(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice")
	bob := f.signup(t, "bob")
	comment := f.comment(t, alice, "a comment that will be hidden")
	commentPath := fmt.Sprintf("/api/comments/%d", comment.ID)

	status, body := f.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me", token: alice})
	require.Equal(t, fiber.StatusOK, status)
	aliceID := decode[struct {
		UserID uint `json:"userId"`
	}](t, body).UserID

	status, body = f.do(t, testRequest{method: http.MethodPut, path: fmt.Sprintf("/api/sa/users/%d/ban", aliceID), basic: true, body: fiber.Map{
		"isBanned": true, "banReason": "spamming the comment section repeatedly",
	}})
	require.Equal(t, fiber.StatusNoContent, status, string(body))
	assert.Equal(t, fiber.StatusNotFound, f.react(t, commentPath, bob, "Like"))

	status, body = f.do(t, testRequest{method: http.MethodPut, path: fmt.Sprintf("/api/sa/blogs/%d/ban", f.blog.ID), basic: true, body: fiber.Map{"isBanned": true}})
	require.Equal(t, fiber.StatusNoContent, status, string(body))
	assert.Equal(t, fiber.StatusNotFound, f.react(t, f.postPath(), bob, "Like"))

	// Body validation still comes first.
	assert.Equal(t, fiber.StatusBadRequest, f.react(t, f.postPath(), bob, "Love"))
}
