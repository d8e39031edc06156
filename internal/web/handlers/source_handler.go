package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"ViralTrends-admin/internal/models"
)

// SourceHandler 負責來源的 CRUD 管理介面
type SourceHandler struct {
	db DBStore
}

// NewSourceHandler 建立一個 SourceHandler 實例
func NewSourceHandler(db DBStore) *SourceHandler {
	if db == nil {
		log.Panicln("SourceHandler：DBStore 不得為空")
	}
	return &SourceHandler{db: db}
}

type sourceRequest struct {
	Platform *models.Platform     `json:"platform"`
	URL      *string              `json:"url"`
	Status   *models.SourceStatus `json:"status"`
}

// ServeHTTP 實現 http.Handler 介面
// 路由：/api/sources (GET, POST) 與 /api/sources/{id} (PATCH, DELETE)
func (h *SourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[SourceHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.URL.Path == "/api/sources" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "僅支援 GET 與 POST 方法")
		}
		return
	}

	id, err := idFromPath(r.URL.Path, "/api/sources")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch r.Method {
	case http.MethodPatch:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "僅支援 PATCH 與 DELETE 方法")
	}
}

func (h *SourceHandler) list(w http.ResponseWriter) {
	sources, err := h.db.ListSources()
	if err != nil {
		log.Printf("錯誤：[SourceHandler] 查詢來源失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "無法取得來源清單")
		return
	}
	if sources == nil {
		sources = []models.Source{}
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *SourceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "無效的請求內容")
		return
	}
	if req.Platform == nil || !models.ValidPlatform(*req.Platform) {
		writeError(w, http.StatusBadRequest, "platform 必須是 shorts、tiktok 或 reels")
		return
	}
	if req.URL == nil || *req.URL == "" {
		writeError(w, http.StatusBadRequest, "url 不得為空")
		return
	}
	src := &models.Source{Platform: *req.Platform, URL: *req.URL, Status: models.SourceActive}
	if req.Status != nil {
		src.Status = *req.Status
	}
	created, err := h.db.CreateSource(src)
	if err != nil {
		log.Printf("錯誤：[SourceHandler] 新增來源失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "無法新增來源")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *SourceHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "無效的請求內容")
		return
	}
	if req.Platform == nil && req.URL == nil && req.Status == nil {
		writeError(w, http.StatusBadRequest, "沒有要更新的欄位")
		return
	}
	if req.Platform != nil && !models.ValidPlatform(*req.Platform) {
		writeError(w, http.StatusBadRequest, "platform 必須是 shorts、tiktok 或 reels")
		return
	}
	updated, err := h.db.UpdateSource(id, req.Platform, req.URL, req.Status)
	if err != nil {
		log.Printf("錯誤：[SourceHandler] 更新來源 %d 失敗: %v", id, err)
		writeError(w, http.StatusInternalServerError, "無法更新來源")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "找不到來源")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *SourceHandler) delete(w http.ResponseWriter, id int64) {
	if err := h.db.DeleteSource(id); err != nil {
		log.Printf("錯誤：[SourceHandler] 刪除來源 %d 失敗: %v", id, err)
		writeError(w, http.StatusInternalServerError, "無法刪除來源")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
