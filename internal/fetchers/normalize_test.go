package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"ViralTrends-admin/internal/clients/apify"
	"ViralTrends-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTikTokItemClockworksFormat(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "7312345678901234567",
		"text": "超好笑的貓咪影片 #cat",
		"webVideoUrl": "https://www.tiktok.com/@creator/video/7312345678901234567",
		"createTimeISO": "2026-08-01T10:30:00Z",
		"videoMeta": {"duration": 42, "coverUrl": "https://cdn.example/cover.jpg"}
	}`)
	c, ok := normalizeTikTokItem(raw)
	require.True(t, ok)
	assert.Equal(t, models.PlatformTikTok, c.Platform)
	assert.Equal(t, "7312345678901234567", c.ExternalID)
	assert.Equal(t, "超好笑的貓咪影片 #cat", c.Title)
	assert.Equal(t, "https://www.tiktok.com/@creator/video/7312345678901234567", c.URL)
	assert.Equal(t, 42, c.DurationSecs)
	assert.Equal(t, "https://cdn.example/cover.jpg", c.ThumbnailURL)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC), c.PublishedAt.UTC())
}

func TestNormalizeTikTokItemApidojoFormat(t *testing.T) {
	raw := json.RawMessage(`{
		"videoId": "7399999",
		"title": "另一個格式",
		"uploadedAt": 1722500000,
		"video": {"duration": 35000, "cover": "https://cdn.example/c2.jpg"}
	}`)
	c, ok := normalizeTikTokItem(raw)
	require.True(t, ok)
	assert.Equal(t, "7399999", c.ExternalID)
	assert.Equal(t, "另一個格式", c.Title)
	// 毫秒格式的長度換算為秒
	assert.Equal(t, 35, c.DurationSecs)
	// 沒有 URL 欄位時重建觀看連結
	assert.Equal(t, "https://www.tiktok.com/@_/video/7399999", c.URL)
	assert.False(t, c.PublishedAt.IsZero())
}

func TestNormalizeTikTokItemRejectsMissingID(t *testing.T) {
	_, ok := normalizeTikTokItem(json.RawMessage(`{"text": "沒有 ID"}`))
	assert.False(t, ok)
	_, ok = normalizeTikTokItem(json.RawMessage(`not json`))
	assert.False(t, ok)
}

func TestNormalizeReelItemKeepsOnlyVideos(t *testing.T) {
	video := json.RawMessage(`{
		"type": "Video",
		"shortCode": "Cxyz123",
		"caption": "新品開箱",
		"url": "https://www.instagram.com/reel/Cxyz123/",
		"displayUrl": "https://cdn.example/thumb.jpg",
		"videoDuration": 58,
		"timestamp": "2026-07-15T08:00:00Z"
	}`)
	c, ok := normalizeReelItem(video)
	require.True(t, ok)
	assert.Equal(t, models.PlatformReels, c.Platform)
	assert.Equal(t, "Cxyz123", c.ExternalID)
	assert.Equal(t, "新品開箱", c.Title)
	assert.Equal(t, 58, c.DurationSecs)
	assert.Equal(t, "https://cdn.example/thumb.jpg", c.ThumbnailURL)

	image := json.RawMessage(`{"type": "Image", "shortCode": "Cimg1", "caption": "照片"}`)
	_, ok = normalizeReelItem(image)
	assert.False(t, ok, "圖片貼文應被過濾")
}

func TestNormalizeReelItemReconstructsURL(t *testing.T) {
	raw := json.RawMessage(`{"type": "clips", "shortCode": "Cabc9", "caption": "short"}`)
	c, ok := normalizeReelItem(raw)
	require.True(t, ok)
	assert.Equal(t, "https://www.instagram.com/reel/Cabc9/", c.URL)
}

func TestParseISO8601Duration(t *testing.T) {
	assert.Equal(t, 90, parseISO8601Duration("PT1M30S"))
	assert.Equal(t, 58, parseISO8601Duration("PT58S"))
	assert.Equal(t, 3661, parseISO8601Duration("PT1H1M1S"))
	assert.Equal(t, 0, parseISO8601Duration(""))
	assert.Equal(t, 0, parseISO8601Duration("P1D"))
}

func TestParseTimestamp(t *testing.T) {
	assert.Equal(t, time.Date(2024, 8, 1, 7, 33, 20, 0, time.UTC), parseTimestamp(float64(1722497600)))
	assert.Equal(t, time.Date(2026, 7, 15, 8, 0, 0, 0, time.UTC), parseTimestamp("2026-07-15T08:00:00Z").UTC())
	assert.True(t, parseTimestamp("not-a-time").IsZero())
	assert.True(t, parseTimestamp(nil).IsZero())
}

func TestCapCandidates(t *testing.T) {
	candidates := make([]models.Candidate, 5)
	assert.Len(t, capCandidates(candidates, 3), 3)
	assert.Len(t, capCandidates(candidates, 10), 5)
	assert.Len(t, capCandidates(candidates, 0), 5)
}

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	got, err := withRetry(context.Background(), models.PlatformTikTok, 3, time.Millisecond, func(ctx context.Context) ([]models.Candidate, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf("暫時性失敗")
		}
		return []models.Candidate{{ExternalID: "ok"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnCreditsExhausted(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), models.PlatformReels, 3, time.Millisecond, func(ctx context.Context) ([]models.Candidate, error) {
		attempts++
		return nil, fmt.Errorf("actor: %w", apify.ErrCreditsExhausted)
	})
	assert.ErrorIs(t, err, apify.ErrCreditsExhausted)
	assert.Equal(t, 1, attempts, "額度用盡不應重試")
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), models.PlatformShorts, 3, time.Millisecond, func(ctx context.Context) ([]models.Candidate, error) {
		attempts++
		return nil, fmt.Errorf("永遠失敗")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}
