package opsapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lodthe/tagwatch/internal/watcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatusProvider struct {
	status watcher.Status
}

func (f *fakeStatusProvider) LastStatus() watcher.Status {
	return f.status
}

func TestHealthz(t *testing.T) {
	router := NewRouter(&fakeStatusProvider{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatus(t *testing.T) {
	provider := &fakeStatusProvider{
		status: watcher.Status{
			CycleID:       "b4a5b4f0-0000-0000-0000-000000000000",
			FinishedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			ImagesChecked: 4,
			UpdatesFound:  1,
			Failures:      0,
		},
	}

	router := NewRouter(provider)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var decoded watcher.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, provider.status, decoded)
}
