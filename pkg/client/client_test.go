package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestQueryValues(t *testing.T) {
	q := Query{
		Page:   2,
		Sort:   "email",
		Search: "  ana ",
		Filters: map[string][]string{
			"role":  {"teacher", "", "admin"},
			"empty": {""},
		},
	}

	v := q.Values()
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "email", v.Get("sort"))
	assert.Equal(t, "ana", v.Get("search"))
	assert.Equal(t, []string{"teacher", "admin"}, v["role"])
	assert.NotContains(t, v, "limit")
	assert.NotContains(t, v, "order")
	assert.NotContains(t, v, "empty")
}

func TestListDecodesPageEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"code":    200,
			"message": "success",
			"data":    []user{{ID: 5, Email: "ana@example.com"}},
			"total":   7,
			"page":    2,
			"limit":   1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	c.SetToken("tok")

	page, err := List[user](context.Background(), c, "/api/users", Query{Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 7, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 1, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ana@example.com", page.Items[0].Email)
}

func TestAPIErrorCarriesFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"code":    400,
			"message": "validation failed",
			"data": map[string]interface{}{
				"fields": []map[string]string{{"field": "dni", "error": "dni must contain between 7 and 9 digits"}},
			},
		})
	}))
	defer srv.Close()

	err := New(srv.URL).Post(context.Background(), "/api/users", map[string]string{"dni": "1"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation failed", apiErr.Message)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "dni", apiErr.Fields[0].Field)
	assert.Contains(t, apiErr.Error(), "dni:")
}

func TestLoginKeepsTokenAndDeleteAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret1" {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"code": 401, "message": "invalid credentials"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"code": 200, "data": map[string]string{"token": "abc"}})
		case r.Method == http.MethodDelete:
			assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Login(context.Background(), "ana@example.com", "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Empty(t, c.Token())

	require.NoError(t, c.Login(context.Background(), "ana@example.com", "secret1"))
	assert.Equal(t, "abc", c.Token())
	assert.NoError(t, c.Delete(context.Background(), "/api/users/3"))

	err = c.Get(context.Background(), "/missing", nil, nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Not Found", apiErr.Message)
}
