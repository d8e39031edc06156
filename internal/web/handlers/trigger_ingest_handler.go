package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"ViralTrends-admin/internal/models"
)

// IngestRunner 定義觸發攝取所需的行為
type IngestRunner interface {
	Run(ctx context.Context) (*models.RunSummary, error)
	IsRunning() bool
}

// TriggerIngestHandler 負責處理手動觸發攝取的請求
type TriggerIngestHandler struct {
	runner IngestRunner
}

// NewTriggerIngestHandler 建立一個 TriggerIngestHandler 實例
func NewTriggerIngestHandler(runner IngestRunner) *TriggerIngestHandler {
	if runner == nil {
		log.Panicln("TriggerIngestHandler：IngestRunner 不得為空")
	}
	return &TriggerIngestHandler{runner: runner}
}

// ServeHTTP 實現 http.Handler 介面。
// 同步執行一次攝取並回傳執行摘要；若已有攝取在進行中則回傳 409。
func (h *TriggerIngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[TriggerIngestHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "僅支援 POST 方法")
		return
	}

	summary, err := h.runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrRunInProgress) {
			log.Println("警告：[TriggerIngestHandler] 已有攝取任務進行中，拒絕本次觸發")
			writeError(w, http.StatusConflict, "攝取任務已在進行中")
			return
		}
		log.Printf("錯誤：[TriggerIngestHandler] 攝取執行失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "攝取執行失敗: "+err.Error())
		return
	}

	log.Printf("資訊：[TriggerIngestHandler] 攝取完成 (run_id=%s, 新影片 %d, 病毒式 %d)\n",
		summary.RunID, summary.NewVideos, summary.ViralVideos)
	writeJSON(w, http.StatusOK, summary)
}

// IngestStatusHandler 回報目前是否有攝取任務正在執行
type IngestStatusHandler struct {
	runner IngestRunner
}

// NewIngestStatusHandler 建立一個 IngestStatusHandler 實例
func NewIngestStatusHandler(runner IngestRunner) *IngestStatusHandler {
	if runner == nil {
		log.Panicln("IngestStatusHandler：IngestRunner 不得為空")
	}
	return &IngestStatusHandler{runner: runner}
}

// ServeHTTP 實現 http.Handler 介面
func (h *IngestStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "僅支援 GET 方法")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": h.runner.IsRunning()})
}
