package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jitsucom/snapshotview/adapters"
	"github.com/jitsucom/snapshotview/snapshot"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	ctx := context.Background()
	storage := adapters.NewInMemory()
	require.NoError(t, storage.CreateTable(ctx, "events", []string{"id"}))
	dataset, err := snapshot.NewDataset("events")
	require.NoError(t, err)

	router := SetupRouter(storage, []*snapshot.Dataset{dataset})
	tests := []struct {
		name         string
		path         string
		expectedCode int
		expectedBody string
	}{
		{"ping", "/ping", http.StatusOK, "pong"},
		{"active before materialize", "/api/v1/datasets/events/active", http.StatusOK, `{"dataset":"events","active":"events"}`},
		{"metrics are disabled", "/metrics", http.StatusNotFound, "404 page not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}
