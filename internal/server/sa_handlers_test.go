package server

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperAdmin_RequiresBasicAuth(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, testRequest{method: http.MethodGet, path: "/api/sa/users"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	token := ts.signup(t, "alice")
	status, _ = ts.do(t, testRequest{method: http.MethodGet, path: "/api/sa/users", token: token})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ts.do(t, testRequest{method: http.MethodGet, path: "/api/sa/users", basic: true})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestSuperAdmin_Users(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, testRequest{method: http.MethodPost, path: "/api/sa/users", basic: true, body: fiber.Map{
		"login": "dave", "password": "secret1", "email": "dave@example.com",
	}})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	dave := decode[models.SAUserView](t, body)
	assert.Equal(t, "dave", dave.Login)
	assert.False(t, dave.BanInfo.IsBanned)
	assert.Nil(t, dave.BanInfo.BanReason)

	status, _ = ts.do(t, testRequest{method: http.MethodPost, path: "/api/sa/users", basic: true, body: fiber.Map{
		"login": "dave", "password": "secret1", "email": "other@example.com",
	}})
	assert.Equal(t, fiber.StatusBadRequest, status)

	ts.signup(t, "erin")

	banPath := fmt.Sprintf("/api/sa/users/%d/ban", dave.ID)
	status, _ = ts.do(t, testRequest{method: http.MethodPut, path: banPath, basic: true, body: fiber.Map{"isBanned": true, "banReason": "short"}})
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = ts.do(t, testRequest{method: http.MethodPut, path: banPath, basic: true, body: fiber.Map{
		"isBanned": true, "banReason": "abusive language in many comments",
	}})
	require.Equal(t, fiber.StatusNoContent, status)

	status, body = ts.do(t, testRequest{method: http.MethodGet, path: "/api/sa/users?banStatus=banned", basic: true})
	require.Equal(t, fiber.StatusOK, status)
	page := decode[models.Page[models.SAUserView]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "dave", page.Items[0].Login)
	require.NotNil(t, page.Items[0].BanInfo.BanReason)
	assert.Equal(t, "abusive language in many comments", *page.Items[0].BanInfo.BanReason)

	status, body = ts.do(t, testRequest{method: http.MethodGet, path: "/api/sa/users?banStatus=notBanned&searchLoginTerm=er", basic: true})
	require.Equal(t, fiber.StatusOK, status)
	page = decode[models.Page[models.SAUserView]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "erin", page.Items[0].Login)

	status, _ = ts.do(t, testRequest{method: http.MethodDelete, path: fmt.Sprintf("/api/sa/users/%d", dave.ID), basic: true})
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = ts.do(t, testRequest{method: http.MethodDelete, path: fmt.Sprintf("/api/sa/users/%d", dave.ID), basic: true})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSuperAdmin_Blogs(t *testing.T) {
	f := newFixture(t)
	blogPath := fmt.Sprintf("/api/sa/blogs/%d", f.blog.ID)

	status, body := f.do(t, testRequest{method: http.MethodGet, path: "/api/sa/blogs", basic: true})
	require.Equal(t, fiber.StatusOK, status)
	page := decode[models.Page[models.SABlogView]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "blogger", page.Items[0].BlogOwnerInfo.UserLogin)

	// Binding a blog that already has an owner is rejected.
	status, _ = f.do(t, testRequest{method: http.MethodPut, path: blogPath + "/bind-with-user/1", basic: true})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = f.do(t, testRequest{method: http.MethodPut, path: blogPath + "/ban", basic: true, body: fiber.Map{"isBanned": true}})
	require.Equal(t, fiber.StatusNoContent, status)

	status, _ = f.do(t, testRequest{method: http.MethodGet, path: fmt.Sprintf("/api/blogs/%d", f.blog.ID)})
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = f.do(t, testRequest{method: http.MethodGet, path: f.postPath()})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = f.do(t, testRequest{method: http.MethodGet, path: "/api/posts"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(0), decode[models.Page[models.PostView]](t, body).TotalCount)

	status, body = f.do(t, testRequest{method: http.MethodGet, path: "/api/sa/blogs", basic: true})
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, decode[models.Page[models.SABlogView]](t, body).Items[0].BanInfo.IsBanned)

	status, _ = f.do(t, testRequest{method: http.MethodPut, path: blogPath + "/ban", basic: true, body: fiber.Map{"isBanned": false}})
	require.Equal(t, fiber.StatusNoContent, status)
	status, _ = f.do(t, testRequest{method: http.MethodGet, path: f.postPath()})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestSuperAdmin_FeatureFlags(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.FeatureFlags = "newest_likes_by_time=on,reaction_events=off"
	})

	status, body := ts.do(t, testRequest{method: http.MethodGet, path: "/api/sa/feature-flags?userId=7", basic: true})
	require.Equal(t, fiber.StatusOK, status)
	out := decode[struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
		Known     map[string]string `json:"known"`
	}](t, body)
	assert.Equal(t, "on", out.Raw["newest_likes_by_time"])
	assert.True(t, out.Evaluated["newest_likes_by_time"])
	assert.False(t, out.Evaluated["reaction_events"])
	assert.Contains(t, out.Known, "reaction_events")
}

func TestAuth_Me(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "alice")

	status, body := ts.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me", token: token})
	require.Equal(t, fiber.StatusOK, status)
	me := decode[map[string]any](t, body)
	assert.Equal(t, "alice", me["login"])
	assert.Equal(t, "alice@example.com", me["email"])

	status, _ = ts.do(t, testRequest{method: http.MethodGet, path: "/api/auth/me"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ts.do(t, testRequest{method: http.MethodPost, path: "/api/auth/login", body: fiber.Map{"loginOrEmail": "alice", "password": "wrong-pass"}})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = ts.do(t, testRequest{method: http.MethodPost, path: "/api/auth/registration", body: fiber.Map{
		"login": "alice", "password": "secret1", "email": "again@example.com",
	}})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
