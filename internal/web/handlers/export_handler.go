package handlers

import (
	"context"
	"log"
	"net/http"

	"ViralTrends-admin/internal/models"
)

// SheetsExporter 定義匯出影片到 Google 試算表所需的行為
type SheetsExporter interface {
	ExportVideos(ctx context.Context, videos []models.Video) (int, error)
}

// ExportHandler 負責將全部影片匯出到 Google 試算表
type ExportHandler struct {
	db       DBStore
	exporter SheetsExporter
}

// NewExportHandler 建立一個 ExportHandler 實例。
// exporter 可為 nil（未設定 Sheets 憑證時），此時回傳 503。
func NewExportHandler(db DBStore, exporter SheetsExporter) *ExportHandler {
	if db == nil {
		log.Panicln("ExportHandler：DBStore 不得為空")
	}
	return &ExportHandler{db: db, exporter: exporter}
}

// ServeHTTP 實現 http.Handler 介面
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[ExportHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "僅支援 POST 方法")
		return
	}
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "Google Sheets 匯出未設定")
		return
	}

	videos, err := h.db.ListVideos(false)
	if err != nil {
		log.Printf("錯誤：[ExportHandler] 查詢影片失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "無法取得影片清單")
		return
	}

	count, err := h.exporter.ExportVideos(r.Context(), videos)
	if err != nil {
		log.Printf("錯誤：[ExportHandler] 匯出失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "匯出失敗: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"exported": count,
	})
}
