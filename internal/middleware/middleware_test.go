package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type staticID struct {
	id  string
	err error
}

func (s staticID) UserID(context.Context) (string, error) { return s.id, s.err }

func TestIdentity_StoresUserID(t *testing.T) {
	var got string
	h := Identity(staticID{id: "user_1_abcdefg"}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserID(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "user_1_abcdefg", got)
}

func TestIdentity_Failure(t *testing.T) {
	called := false
	h := Identity(staticID{err: errors.New("disk gone")}, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Failed to load local identity"}`, rec.Body.String())
}

func TestGetUserID_Missing(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/items", nil))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "POST", fields["method"])
		assert.Equal(t, "/api/items", fields["path"])
		assert.EqualValues(t, http.StatusTeapot, fields["status"])
	}
}
