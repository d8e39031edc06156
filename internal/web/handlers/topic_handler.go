package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"ViralTrends-admin/internal/models"
)

// TopicHandler 負責主題的 CRUD 管理介面
type TopicHandler struct {
	db DBStore
}

// NewTopicHandler 建立一個 TopicHandler 實例
func NewTopicHandler(db DBStore) *TopicHandler {
	if db == nil {
		log.Panicln("TopicHandler：DBStore 不得為空")
	}
	return &TopicHandler{db: db}
}

type topicRequest struct {
	Keyword     *string `json:"keyword"`
	Description *string `json:"description"`
}

// ServeHTTP 實現 http.Handler 介面
// 路由：/api/topics (GET, POST) 與 /api/topics/{id} (PATCH, DELETE)
func (h *TopicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[TopicHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.URL.Path == "/api/topics" {
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

	id, err := idFromPath(r.URL.Path, "/api/topics")
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

func (h *TopicHandler) list(w http.ResponseWriter) {
	topics, err := h.db.ListTopics()
	if err != nil {
		log.Printf("錯誤：[TopicHandler] 查詢主題失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "無法取得主題清單")
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *TopicHandler) create(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "無效的請求內容")
		return
	}
	if req.Keyword == nil || *req.Keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword 不得為空")
		return
	}
	t := &models.Topic{Keyword: *req.Keyword}
	if req.Description != nil {
		t.Description = models.NullString(*req.Description)
	}
	created, err := h.db.CreateTopic(t)
	if err != nil {
		log.Printf("錯誤：[TopicHandler] 新增主題失敗: %v", err)
		writeError(w, http.StatusInternalServerError, "無法新增主題")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TopicHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "無效的請求內容")
		return
	}
	if req.Keyword == nil && req.Description == nil {
		writeError(w, http.StatusBadRequest, "沒有要更新的欄位")
		return
	}
	updated, err := h.db.UpdateTopic(id, req.Keyword, req.Description)
	if err != nil {
		log.Printf("錯誤：[TopicHandler] 更新主題 %d 失敗: %v", id, err)
		writeError(w, http.StatusInternalServerError, "無法更新主題")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "找不到主題")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TopicHandler) delete(w http.ResponseWriter, id int64) {
	if err := h.db.DeleteTopic(id); err != nil {
		log.Printf("錯誤：[TopicHandler] 刪除主題 %d 失敗: %v", id, err)
		writeError(w, http.StatusInternalServerError, "無法刪除主題")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
