package handlers

import (
	"log"
	"net/http"

	"ViralTrends-admin/internal/config"
)

// ConfigHandler 提供設定的唯讀檢視，不洩漏任何金鑰或憑證
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler 建立一個 ConfigHandler 實例
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	if cfg == nil {
		log.Panicln("ConfigHandler：設定不得為空")
	}
	return &ConfigHandler{cfg: cfg}
}

// ServeHTTP 實現 http.Handler 介面
// 路由：/api/config/status（各整合是否已設定）與 /api/config/parser（攝取相關參數）
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "僅支援 GET 方法")
		return
	}

	switch r.URL.Path {
	case "/api/config/status":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"app_name":          h.cfg.AppName,
			"gemini_configured": h.cfg.GeminiClient.APIKey != "",
			"gemini_model":      h.cfg.GeminiClient.Model,
			"youtube_configured": h.cfg.YouTubeClient.APIKey != "",
			"apify_configured":  h.cfg.ApifyClient.Token != "",
			"sheets_configured": h.cfg.Sheets.SpreadsheetID != "" && h.cfg.Sheets.CredentialsFile != "",
			"scheduler_enabled": h.cfg.Scheduler.Enabled,
			"ingest_cron_spec":  h.cfg.Scheduler.IngestCronSpec,
		})
	case "/api/config/parser":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"max_results_per_platform": h.cfg.Ingestion.MaxResultsPerPlatform,
			"request_timeout_secs":     h.cfg.Ingestion.RequestTimeoutSecs,
			"retry_count":              h.cfg.Ingestion.RetryCount,
			"retry_delay_secs":         h.cfg.Ingestion.RetryDelaySecs,
			"max_concurrent_fetches":   h.cfg.Ingestion.MaxConcurrentFetches,
			"viral_score_threshold":    h.cfg.Ingestion.ViralScoreThreshold,
		})
	default:
		writeError(w, http.StatusNotFound, "找不到資源")
	}
}
