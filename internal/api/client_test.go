// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/").WithBackoff(time.Millisecond)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// TRANSPORT TESTS
// =============================================================================

func TestClient_TrimsBaseURL(t *testing.T) {
	c := NewClient("http://localhost:5000/")
	assert.Equal(t, "http://localhost:5000", c.BaseURL())
	assert.Equal(t, "http://localhost:5000/posts/a.png", c.PostImageURL("a.png"))
	assert.Equal(t, "http://localhost:5000/users/me.jpg", c.UserPhotoURL("me.jpg"))
	assert.Empty(t, c.UserPhotoURL(""))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "posts": []any{}})
	})

	feed, err := c.Home(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "ok", feed.Message)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Post not found"})
	})

	_, err := c.Post(context.Background(), "42")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Post not found", Message(err, "fallback"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ServerErrorAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "db down"})
	})
	c.WithMaxRetries(2)

	_, err := c.Home(context.Background(), "alice")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "db down", apiErr.Message)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_WritesAreSentOnce(t *testing.T) {
	tests := []struct {
		name   string
		status int
		call   func(*Client) error
	}{
		{"like", http.StatusBadGateway, func(c *Client) error {
			_, err := c.ToggleLike(context.Background(), "5", "alice")
			return err
		}},
		{"comment", http.StatusInternalServerError, func(c *Client) error {
			_, err := c.AddComment(context.Background(), "5", "nice", "alice")
			return err
		}},
		{"login", http.StatusBadGateway, func(c *Client) error {
			_, err := c.Login(context.Background(), "alice", "Secret1!")
			return err
		}},
		{"delete comment", http.StatusServiceUnavailable, func(c *Client) error {
			return c.DeleteComment(context.Background(), "1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				// The first attempt is applied and then reported as failed.
				if calls.Add(1) == 1 {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"success": true})
			})

			err := tt.call(c)
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr), "err = %v", err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClient_WriteNotRetriedOnTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url).WithBackoff(time.Hour)
	_, err := c.ToggleLike(context.Background(), "5", "alice")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url).WithBackoff(time.Millisecond).WithMaxRetries(1)
	_, err := c.Home(context.Background(), "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, Message(err, "fallback"), "Cannot reach the server")
}

func TestClient_ErrorInSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Comment cannot be empty"})
	})

	_, err := c.AddComment(context.Background(), "1", "hi", "alice")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Comment cannot be empty", apiErr.Message)
}

func TestClient_ResponseTooLarge(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = io.Copy(w, io.LimitReader(zeroReader{}, MaxResponseSize+10))
	})

	_, err := c.Home(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Equal(t, int32(1), calls.Load())
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = ' '
	}
	return len(p), nil
}

func TestClient_Headers(t *testing.T) {
	var ids []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		if len(ids) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	_, err := c.Home(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1], "retries reuse the request id")
}

func TestClient_ContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c.WithBackoff(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Home(ctx, "alice")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCalculateBackoff(t *testing.T) {
	c := NewClient("http://x")
	assert.Equal(t, 500*time.Millisecond, c.calculateBackoff(0))
	assert.Equal(t, time.Second, c.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, c.calculateBackoff(2))
	assert.Equal(t, retryMaxDelay, c.calculateBackoff(10))
}

// =============================================================================
// ENDPOINT TESTS
// =============================================================================

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["UsernameOrEmail"] == "alice" && body["Password"] == "pw" {
			writeJSON(w, http.StatusOK, map[string]string{"message": LoginSuccessMessage, "loggedUser": "alice"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	})

	res, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.LoggedUser)

	_, err = c.Login(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", Message(err, ""))
}

func TestLogin_RejectedWithoutIdentity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
	})
	_, err := c.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrLoginRejected)
}

func TestHome_SendsUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/home", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("userId"))
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Welcome",
			"posts": []map[string]any{
				{"id": 7, "caption": "sunset", "content": "a.png", "author": map[string]string{"username": "bob"}},
			},
		})
	})

	feed, err := c.Home(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, ID("7"), feed.Posts[0].ID)
	assert.Equal(t, "bob", feed.Posts[0].Author.Username)
}

func TestCreatePost_Multipart(t *testing.T) {
	img := filepath.Join(t.TempDir(), "photo.png")
	png := []byte("\x89PNG\r\n\x1a\nPNGDATA")
	require.NoError(t, os.WriteFile(img, png, 0o600))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/post/store", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "sunset", r.FormValue("caption"))
		assert.Equal(t, "alice", r.FormValue("loggedUser"))
		f, hdr, err := r.FormFile("content")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "photo.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, png, data)
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Post created"})
	})

	msg, err := c.CreatePost(context.Background(), NewPost{Caption: "sunset", ImagePath: img, LoggedUser: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "Post created", msg)
}

func TestCreatePost_RejectsNonImage(t *testing.T) {
	txt := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(txt, []byte("just some text"), 0o600))

	c := NewClient("http://unused")
	_, err := c.CreatePost(context.Background(), NewPost{Caption: "hi", ImagePath: txt})
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestCreatePost_Incomplete(t *testing.T) {
	c := NewClient("http://unused")
	_, err := c.CreatePost(context.Background(), NewPost{Caption: "  ", ImagePath: "x.png"})
	assert.ErrorIs(t, err, ErrIncompletePost)
	_, err = c.CreatePost(context.Background(), NewPost{Caption: "hi"})
	assert.ErrorIs(t, err, ErrIncompletePost)
}

func TestPostDetailAndComments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/post/5":
			writeJSON(w, http.StatusOK, map[string]any{
				"post":       map[string]any{"id": "5", "caption": "c"},
				"comments":   []map[string]any{{"id": 1, "text": "nice", "user": map[string]string{"username": "bob"}}},
				"totalLikes": 3,
				"isLiked":    true,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/post/5/like":
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/post/comment/1":
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	d, err := c.Post(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalLikes)
	assert.True(t, d.IsLiked)
	require.Len(t, d.Comments, 1)
	assert.Equal(t, ID("1"), d.Comments[0].ID)

	ok, err := c.ToggleLike(ctx, "5", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.DeleteComment(ctx, "1"))
}

func TestUpdateProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "alice", r.URL.Query().Get("loggedUser"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		if r.FormValue("username") == "taken" {
			writeJSON(w, http.StatusOK, map[string]string{"status": "error", "message": "Username taken"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": StatusSuccess, "loggedUser": r.FormValue("username")})
	})
	ctx := context.Background()

	res, err := c.UpdateProfile(ctx, "alice", ProfileUpdate{Username: "alice2", Fullname: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", res.LoggedUser)

	_, err = c.UpdateProfile(ctx, "alice", ProfileUpdate{Username: "taken"})
	require.Error(t, err)
	assert.Equal(t, "Username taken", Message(err, ""))
}

func TestCheckUsernameAndSearch(t *testing.T) {
	var searched atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/profile/check-username":
			status := "taken"
			if r.URL.Query().Get("username") == "free" {
				status = StatusAvailable
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": status})
		case strings.HasPrefix(r.URL.Path, "/api/profile/search/"):
			searched.Add(1)
			assert.Equal(t, "alice", r.URL.Query().Get("loggedUser"))
			writeJSON(w, http.StatusOK, []map[string]string{{"username": "bob", "fullName": "Bob B"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	free, err := c.CheckUsername(ctx, "free")
	require.NoError(t, err)
	assert.True(t, free)
	free, err = c.CheckUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, free)

	hits, err := c.Search(ctx, "bo", "alice")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Bob B", hits[0].FullName)

	hits, err = c.Search(ctx, "   ", "alice")
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, int32(1), searched.Load())
}

func TestIDUnmarshal(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12, "b": "x9", "c": null}`), &v))
	assert.Equal(t, ID("12"), v.A)
	assert.Equal(t, ID("x9"), v.B)
	assert.Equal(t, ID(""), v.C)
	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}
