package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/internal/kv/memkv"
	"github.com/dyluth/kanban/pkg/board"
	"github.com/dyluth/kanban/pkg/persist"
)

type sequenceIDs struct{ n int }

func (s *sequenceIDs) NewID() string {
	s.n++
	return []string{"", "aaaaaaaa-0001", "bbbbbbbb-0002", "bbbbbbbb-0003", "cccccccc-0004"}[s.n]
}

func setupTestServer(t *testing.T) (*httptest.Server, *board.Engine, *memkv.Store) {
	t.Helper()
	kv := memkv.New()
	eng, err := board.New(board.Config{Columns: []board.ColumnSpec{
		{ID: "todo", Name: "To do"},
		{ID: "doing", Name: "Doing"},
		{ID: "done", Name: "Done"},
	}}, persist.New(kv), board.WithIDGenerator(&sequenceIDs{}))
	require.NoError(t, err)

	ts := httptest.NewServer(New(eng, "work").Handler())
	t.Cleanup(ts.Close)
	return ts, eng, kv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts, eng, _ := setupTestServer(t)
	_, err := eng.AddCard("todo")
	require.NoError(t, err)

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, HealthResponse{Status: "healthy", Board: "work", Cards: 1}, decode[HealthResponse](t, resp))
}

func TestAddAndReadBoard(t *testing.T) {
	ts, _, kv := setupTestServer(t)

	resp := do(t, http.MethodPost, ts.URL+"/api/columns/todo/cards", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	card := decode[board.Card](t, resp)
	assert.Equal(t, "aaaaaaaa-0001", card.ID)
	assert.Equal(t, board.DefaultCardTitle, card.Title)
	assert.Equal(t, 1, kv.Writes())

	resp = do(t, http.MethodGet, ts.URL+"/api/board", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b := decode[BoardResponse](t, resp)
	assert.Equal(t, "work", b.Board)
	require.Len(t, b.Columns, 3)
	assert.Equal(t, "todo", b.Columns[0].ID)
	assert.Equal(t, []board.Card{card}, b.Columns[0].Cards)
	assert.Equal(t, map[string]int{"todo": 1, "doing": 0, "done": 0}, b.Counts)

	resp = do(t, http.MethodGet, ts.URL+"/api/counts", "")
	assert.Equal(t, map[string]int{"todo": 1, "doing": 0, "done": 0}, decode[map[string]int](t, resp))

	resp = do(t, http.MethodGet, ts.URL+"/api/columns/todo", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "To do", decode[board.Column](t, resp).Name)
}

func TestInvalidColumn(t *testing.T) {
	ts, _, _ := setupTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/columns/archive"},
		{http.MethodPost, "/api/columns/archive/cards"},
		{http.MethodPost, "/api/columns/archive/recolor"},
		{http.MethodPost, "/api/columns/archive/sort"},
	} {
		resp := do(t, tc.method, ts.URL+tc.path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Contains(t, decode[map[string]string](t, resp)["error"], "invalid column")
	}
}

func TestRenameMoveAndShortIDs(t *testing.T) {
	ts, eng, _ := setupTestServer(t)
	card, _ := eng.AddCard("todo")

	resp := do(t, http.MethodPut, ts.URL+"/api/cards/aaaaaa/title", `{"title":"  Ship it  "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[CardResponse](t, resp)
	assert.Equal(t, "Ship it", got.Card.Title)
	assert.Equal(t, "todo", got.ColumnID)

	resp = do(t, http.MethodPost, ts.URL+"/api/cards/"+card.ID+"/move", `{"direction":"left"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[board.MoveResult](t, resp).Moved)

	resp = do(t, http.MethodPost, ts.URL+"/api/cards/"+card.ID+"/move", `{"direction":"right"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[board.MoveResult](t, resp)
	assert.True(t, result.Moved)
	assert.Equal(t, "doing", result.To)

	resp = do(t, http.MethodGet, ts.URL+"/api/cards/"+card.ID, "")
	assert.Equal(t, "doing", decode[CardResponse](t, resp).ColumnID)
}

func TestCardErrors(t *testing.T) {
	ts, eng, _ := setupTestServer(t)
	eng.AddCard("todo")
	eng.AddCard("todo")
	eng.AddCard("todo")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown card rename", http.MethodPut, "/api/cards/no-such-card/title", `{"title":"x"}`, http.StatusNotFound},
		{"unknown card move", http.MethodPost, "/api/cards/no-such-card/move", `{"direction":"right"}`, http.StatusNotFound},
		{"unknown card recolor", http.MethodPost, "/api/cards/no-such-card/recolor", "", http.StatusNotFound},
		{"unknown card removal", http.MethodPost, "/api/cards/no-such-card/removal", "", http.StatusNotFound},
		{"unknown card delete", http.MethodDelete, "/api/cards/no-such-card", "", http.StatusNotFound},
		{"ambiguous prefix", http.MethodGet, "/api/cards/bbbbbbbb", "", http.StatusConflict},
		{"prefix too short", http.MethodGet, "/api/cards/bbb", "", http.StatusBadRequest},
		{"bad json", http.MethodPut, "/api/cards/aaaaaaaa-0001/title", `{`, http.StatusBadRequest},
		{"missing title", http.MethodPut, "/api/cards/aaaaaaaa-0001/title", `{}`, http.StatusBadRequest},
		{"bad direction", http.MethodPost, "/api/cards/aaaaaaaa-0001/move", `{"direction":"up"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestTwoPhaseDelete(t *testing.T) {
	ts, eng, kv := setupTestServer(t)
	card, _ := eng.AddCard("todo")
	writes := kv.Writes()

	resp := do(t, http.MethodPost, ts.URL+"/api/cards/"+card.ID+"/removal", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.True(t, decode[CardResponse](t, resp).Pending)
	assert.True(t, eng.IsPendingDelete(card.ID))
	assert.Equal(t, writes, kv.Writes())

	resp = do(t, http.MethodDelete, ts.URL+"/api/cards/"+card.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, eng.Counts()["todo"])
	assert.Equal(t, writes+1, kv.Writes())
}

func TestRecolorAndSort(t *testing.T) {
	ts, eng, _ := setupTestServer(t)
	a, _ := eng.AddCard("todo")
	b, _ := eng.AddCard("todo")
	require.NoError(t, eng.RenameCard(a.ID, "alpha"))
	require.NoError(t, eng.RenameCard(b.ID, "beta"))

	resp := do(t, http.MethodPost, ts.URL+"/api/columns/todo/sort", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	col := decode[board.Column](t, resp)
	assert.False(t, col.SortAscending)
	assert.Equal(t, "beta", col.Cards[0].Title)

	resp = do(t, http.MethodPost, ts.URL+"/api/columns/todo/recolor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[board.Column](t, resp).Cards, 2)

	resp = do(t, http.MethodPost, ts.URL+"/api/cards/"+a.ID+"/recolor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, ok := board.ParseHSL(decode[CardResponse](t, resp).Card.Attribute)
	assert.True(t, ok)
}

func TestExport(t *testing.T) {
	ts, eng, _ := setupTestServer(t)
	eng.AddCard("todo")

	resp := do(t, http.MethodGet, ts.URL+"/api/export?format=csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `"work.csv"`)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "todo,1,aaaaaaaa-0001,New card,")

	resp = do(t, http.MethodGet, ts.URL+"/api/export?format=xlsx", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
