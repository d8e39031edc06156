package handlers

import (
	"log"
	"net/http"
	"strings"

	"ViralTrends-admin/internal/models"
)

// VideoHandler 提供影片的查詢與刪除介面
// /api/videos 僅回傳病毒式影片，/api/videos/all 回傳全部
type VideoHandler struct {
	db DBStore
}

// NewVideoHandler 建立一個 VideoHandler 實例
func NewVideoHandler(db DBStore) *VideoHandler {
	if db == nil {
		log.Panicln("VideoHandler：DBStore 不得為空")
	}
	return &VideoHandler{db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[VideoHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	switch {
	case r.URL.Path == "/api/videos":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "僅支援 GET 方法")
			return
		}
		h.list(w, true)
	case r.URL.Path == "/api/videos/all":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "僅支援 GET 方法")
			return
		}
		h.list(w, false)
	case strings.HasPrefix(r.URL.Path, "/api/videos/"):
		id, err := idFromPath(r.URL.Path, "/api/videos")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.get(w, id)
		case http.MethodDelete:
			h.delete(w, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "僅支援 GET 與 DELETE 方法")
		}
	default:
		writeError(w, http.StatusNotFound, "找不到資源")
	}
}

func (h *VideoHandler) list(w http.ResponseWriter, viralOnly bool) {
	videos, err := h.db.ListVideos(viralOnly)
	if err != nil {
		log.Printf("錯誤：[VideoHandler] 查詢影片失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "無法取得影片清單")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}

func (h *VideoHandler) get(w http.ResponseWriter, id int64) {
	video, err := h.db.GetVideoByID(id)
	if err != nil {
		log.Printf("錯誤：[VideoHandler] 查詢影片 %d 失敗: %v", id, err)
		writeError(w, http.StatusInternalServerError, "無法取得影片")
		return
	}
	if video == nil {
		writeError(w, http.StatusNotFound, "找不到影片")
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (h *VideoHandler) delete(w http.ResponseWriter, id int64) {
	if err := h.db.DeleteVideo(id); err != nil {
		log.Printf("錯誤：[VideoHandler] 刪除影片 %d 失敗: %v", id, err)
		writeError(w, http.StatusInternalServerError, "無法刪除影片")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
