package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore 是測試用的 DBStore，回傳預先設定的資料
type stubStore struct {
	sources     []models.Source
	topics      []models.Topic
	videos      []models.Video
	viralVideos []models.Video

	createdSource *models.Source
	createdTopic  *models.Topic
	updatedSource *models.Source
	updatedTopic  *models.Topic
	deletedIDs    []int64

	err error
}

func (s *stubStore) ListSources() ([]models.Source, error)       { return s.sources, s.err }
func (s *stubStore) ListActiveSources() ([]models.Source, error) { return s.sources, s.err }
func (s *stubStore) GetSourceByID(id int64) (*models.Source, error) {
	return nil, s.err
}
func (s *stubStore) CreateSource(src *models.Source) (*models.Source, error) {
	if s.err != nil {
		return nil, s.err
	}
	created := *src
	created.ID = 42
	s.createdSource = &created
	return &created, nil
}
func (s *stubStore) UpdateSource(id int64, platform *models.Platform, url *string, status *models.SourceStatus) (*models.Source, error) {
	return s.updatedSource, s.err
}
func (s *stubStore) DeleteSource(id int64) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.err
}

func (s *stubStore) ListTopics() ([]models.Topic, error)        { return s.topics, s.err }
func (s *stubStore) GetTopicByID(id int64) (*models.Topic, error) { return nil, s.err }
func (s *stubStore) CreateTopic(t *models.Topic) (*models.Topic, error) {
	if s.err != nil {
		return nil, s.err
	}
	created := *t
	created.ID = 7
	s.createdTopic = &created
	return &created, nil
}
func (s *stubStore) UpdateTopic(id int64, keyword *string, description *string) (*models.Topic, error) {
	return s.updatedTopic, s.err
}
func (s *stubStore) DeleteTopic(id int64) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.err
}

func (s *stubStore) ListVideos(viralOnly bool) ([]models.Video, error) {
	if viralOnly {
		return s.viralVideos, s.err
	}
	return s.videos, s.err
}
func (s *stubStore) GetVideoByID(id int64) (*models.Video, error) { return nil, s.err }
func (s *stubStore) DeleteVideo(id int64) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.err
}
func (s *stubStore) VideoExists(sourceID int64, externalID string) (bool, error) { return false, nil }
func (s *stubStore) InsertVideo(v *models.Video) (int64, error)                  { return 1, nil }
func (s *stubStore) Close() error                                                { return nil }

// stubRunner 模擬攝取服務
type stubRunner struct {
	summary *models.RunSummary
	err     error
	running bool
}

func (r *stubRunner) Run(ctx context.Context) (*models.RunSummary, error) {
	return r.summary, r.err
}
func (r *stubRunner) IsRunning() bool { return r.running }

func doRequest(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSourceHandlerCreate(t *testing.T) {
	store := &stubStore{}
	h := NewSourceHandler(store)

	rec := doRequest(h, http.MethodPost, "/api/sources", `{"platform": "tiktok", "url": "https://www.tiktok.com/@creator"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Source
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, models.PlatformTikTok, created.Platform)
	assert.Equal(t, models.SourceActive, created.Status, "未指定狀態時預設為 active")
}

func TestSourceHandlerCreateRejectsInvalidPlatform(t *testing.T) {
	h := NewSourceHandler(&stubStore{})
	rec := doRequest(h, http.MethodPost, "/api/sources", `{"platform": "vimeo", "url": "https://vimeo.com/x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h, http.MethodPost, "/api/sources", `{"platform": "tiktok"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "缺少 url 應被拒絕")
}

func TestSourceHandlerUpdateNotFound(t *testing.T) {
	h := NewSourceHandler(&stubStore{updatedSource: nil})
	rec := doRequest(h, http.MethodPatch, "/api/sources/99", `{"status": "inactive"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSourceHandlerRejectsBadID(t *testing.T) {
	h := NewSourceHandler(&stubStore{})
	rec := doRequest(h, http.MethodDelete, "/api/sources/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSourceHandlerDelete(t *testing.T) {
	store := &stubStore{}
	h := NewSourceHandler(store)
	rec := doRequest(h, http.MethodDelete, "/api/sources/5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{5}, store.deletedIDs)
}

func TestTopicHandlerCreateRequiresKeyword(t *testing.T) {
	h := NewTopicHandler(&stubStore{})
	rec := doRequest(h, http.MethodPost, "/api/topics", `{"description": "沒有關鍵字"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h, http.MethodPost, "/api/topics", `{"keyword": "料理", "description": "家常菜"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestVideoHandlerSplitsViralAndAllLists(t *testing.T) {
	store := &stubStore{
		videos: []models.Video{
			{ID: 1, ExternalID: "shorts:a", IsViral: true},
			{ID: 2, ExternalID: "shorts:b"},
		},
		viralVideos: []models.Video{
			{ID: 1, ExternalID: "shorts:a", IsViral: true},
		},
	}
	h := NewVideoHandler(store)

	rec := doRequest(h, http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var viral []models.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &viral))
	assert.Len(t, viral, 1)

	rec = doRequest(h, http.MethodGet, "/api/videos/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)
}

func TestVideoHandlerListReturnsEmptyArrayNotNull(t *testing.T) {
	h := NewVideoHandler(&stubStore{})
	rec := doRequest(h, http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTriggerIngestHandlerReturnsSummary(t *testing.T) {
	runner := &stubRunner{summary: &models.RunSummary{RunID: "run-1", NewVideos: 3, ViralVideos: 1}}
	h := NewTriggerIngestHandler(runner)

	rec := doRequest(h, http.MethodPost, "/api/ingest-now", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 3, summary.NewVideos)
}

func TestTriggerIngestHandlerBusyReturns409(t *testing.T) {
	runner := &stubRunner{err: models.ErrRunInProgress}
	h := NewTriggerIngestHandler(runner)

	rec := doRequest(h, http.MethodPost, "/api/ingest-now", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTriggerIngestHandlerFailureReturns500(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("載入來源失敗")}
	h := NewTriggerIngestHandler(runner)

	rec := doRequest(h, http.MethodPost, "/api/ingest-now", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTriggerIngestHandlerRejectsGet(t *testing.T) {
	h := NewTriggerIngestHandler(&stubRunner{})
	rec := doRequest(h, http.MethodGet, "/api/ingest-now", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIngestStatusHandler(t *testing.T) {
	h := NewIngestStatusHandler(&stubRunner{running: true})
	rec := doRequest(h, http.MethodGet, "/api/ingest-now/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status["running"])
}

// stubExporter 模擬 Google Sheets 匯出
type stubExporter struct {
	exported int
	err      error
}

func (e *stubExporter) ExportVideos(ctx context.Context, videos []models.Video) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	e.exported = len(videos)
	return len(videos), nil
}

func TestExportHandlerExportsAllVideos(t *testing.T) {
	store := &stubStore{videos: []models.Video{{ID: 1}, {ID: 2}}}
	exporter := &stubExporter{}
	h := NewExportHandler(store, exporter)

	rec := doRequest(h, http.MethodPost, "/api/export/google-sheets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, exporter.exported)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["exported"])
}

func TestExportHandlerWithoutExporterReturns503(t *testing.T) {
	h := NewExportHandler(&stubStore{}, nil)
	rec := doRequest(h, http.MethodPost, "/api/export/google-sheets", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConfigHandlerExposesNoSecrets(t *testing.T) {
	cfg := &config.Config{
		AppName:      "ViralTrends-admin",
		GeminiClient: config.GeminiClientConfig{APIKey: "super-secret-gemini", Model: "gemini-1.5-flash-latest"},
		ApifyClient:  config.ApifyClientConfig{Token: "super-secret-apify"},
	}
	h := NewConfigHandler(cfg)

	rec := doRequest(h, http.MethodGet, "/api/config/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "super-secret-gemini")
	assert.NotContains(t, body, "super-secret-apify")

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, true, status["gemini_configured"])
	assert.Equal(t, true, status["apify_configured"])
	assert.Equal(t, false, status["youtube_configured"])
}

func TestConfigHandlerParserSettings(t *testing.T) {
	cfg := &config.Config{
		Ingestion: config.IngestionConfig{MaxResultsPerPlatform: 20, ViralScoreThreshold: 7},
	}
	h := NewConfigHandler(cfg)

	rec := doRequest(h, http.MethodGet, "/api/config/parser", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var parser map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parser))
	assert.Equal(t, float64(20), parser["max_results_per_platform"])
	assert.Equal(t, float64(7), parser["viral_score_threshold"])
}

func TestIDFromPath(t *testing.T) {
	id, err := idFromPath("/api/sources/42", "/api/sources")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = idFromPath("/api/sources/", "/api/sources")
	assert.Error(t, err)
	_, err = idFromPath("/api/sources/0", "/api/sources")
	assert.Error(t, err)
	_, err = idFromPath("/api/sources/42/extra", "/api/sources")
	assert.Error(t, err)
}
