package duolingo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userJSON = `{
	"username": "owner",
	"id": 1,
	"languages": [
		{"language": "es", "language_string": "Spanish", "learning": true, "points": 1200},
		{"language": "fr", "language_string": "French", "learning": true, "points": 300},
		{"language": "de", "language_string": "German", "learning": false, "points": 0}
	],
	"language_data": {
		"fr": {"points_ranking_data": [
			{"username": "carol", "id": 4, "points_data": {"total": 50}},
			{"username": "alice", "id": 2, "points_data": {"total": 999}}
		]},
		"es": {"points_ranking_data": [
			{"username": "alice", "id": 2, "points_data": {"total": 120}},
			{"username": "owner", "id": 1, "points_data": {"total": 1500}},
			{"username": "bob", "id": 3, "points_data": {"total": 80}}
		]}
	}
}`

// fakeAPI serves /login and /users/owner the way the platform does.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Login != "owner" || req.Password != "secret" {
			_, _ = w.Write([]byte(`{"failure": "invalid_password", "message": "bad"}`))
			return
		}
		w.Header().Set("jwt", "token-123")
		_, _ = w.Write([]byte(`{"response": "OK", "username": "owner"}`))
	})
	mux.HandleFunc("/users/owner", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(userJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, password string) *Client {
	srv := fakeAPI(t)
	return New(Config{
		BaseURL:  srv.URL + "/",
		Username: "owner",
		Password: password,
		Timeout:  5 * time.Second,
	})
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, "secret")
	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, "token-123", c.jwt)
}

func TestLogin_Failure(t *testing.T) {
	c := newTestClient(t, "wrong")
	err := c.Login(context.Background())
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Empty(t, c.jwt)
}

func TestCallsBeforeLogin(t *testing.T) {
	c := newTestClient(t, "secret")

	_, err := c.Friends(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.TotalPoints(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestFriends_DedupedInLanguageOrder(t *testing.T) {
	c := newTestClient(t, "secret")
	require.NoError(t, c.Login(context.Background()))

	friends, err := c.Friends(context.Background())
	require.NoError(t, err)

	// "es" sorts before "fr", so alice's total comes from the es ranking.
	require.Len(t, friends, 4)
	assert.Equal(t, Friend{Username: "alice", ID: 2, Points: 120}, friends[0])
	assert.Equal(t, "owner", friends[1].Username)
	assert.Equal(t, "bob", friends[2].Username)
	assert.Equal(t, Friend{Username: "carol", ID: 4, Points: 50}, friends[3])
}

func TestFriendsByUsernames(t *testing.T) {
	c := newTestClient(t, "secret")
	require.NoError(t, c.Login(context.Background()))

	friends, err := c.FriendsByUsernames(context.Background(), []string{"carol", "alice", "nobody"})
	require.NoError(t, err)

	require.Len(t, friends, 2)
	assert.Equal(t, "alice", friends[0].Username)
	assert.Equal(t, "carol", friends[1].Username)
}

func TestLanguagesAndTotalPoints(t *testing.T) {
	c := newTestClient(t, "secret")
	require.NoError(t, c.Login(context.Background()))

	langs, err := c.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Language{
		{Abbr: "es", Name: "Spanish", Points: 1200},
		{Abbr: "fr", Name: "French", Points: 300},
	}, langs)

	total, err := c.TotalPoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1500, total)
}

func TestDoRequest_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Username: "owner"})
	c.jwt = "x"

	_, err := c.Friends(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.NotErrorIs(t, err, ErrAuthFailed)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
