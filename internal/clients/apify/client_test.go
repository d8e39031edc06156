package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunActorReturnsDatasetItems(t *testing.T) {
	var gotPath, gotToken string
	var gotInput map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotInput))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "1"}, {"id": "2"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 30)
	items, err := client.RunActor(context.Background(), "clockworks/tiktok-scraper", map[string]interface{}{
		"profiles": []string{"creator"},
	})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	// actor 路徑中的 "/" 以 "~" 編碼
	assert.Equal(t, "/v2/acts/clockworks~tiktok-scraper/run-sync-get-dataset-items", gotPath)
	assert.Equal(t, "test-token", gotToken)
	assert.Contains(t, gotInput, "profiles")
}

func TestRunActorDetectsCreditsExhaustedByStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "payment required", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 30)
	_, err := client.RunActor(context.Background(), "some/actor", nil)
	assert.ErrorIs(t, err, ErrCreditsExhausted)
}

func TestRunActorDetectsCreditsExhaustedByMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Monthly usage limit exceeded"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 30)
	_, err := client.RunActor(context.Background(), "some/actor", nil)
	assert.ErrorIs(t, err, ErrCreditsExhausted)
}

func TestRunActorOtherHTTPErrorsAreNotCreditsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal actor failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token", 30)
	_, err := client.RunActor(context.Background(), "some/actor", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCreditsExhausted)
}

func TestRunActorWithoutTokenSkipsExecution(t *testing.T) {
	client := NewClient("https://api.apify.com", "", 30)
	items, err := client.RunActor(context.Background(), "some/actor", nil)
	assert.NoError(t, err)
	assert.Nil(t, items)
}

func TestRunActorRejectsEmptyActorID(t *testing.T) {
	client := NewClient("https://api.apify.com", "token", 30)
	_, err := client.RunActor(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestIsCreditsError(t *testing.T) {
	assert.True(t, isCreditsError("Insufficient credits on account"))
	assert.True(t, isCreditsError("monthly QUOTA reached"))
	assert.False(t, isCreditsError("actor build not found"))
}
