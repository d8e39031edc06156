package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// writeJSON 以 JSON 回應
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("錯誤：寫入 JSON 回應失敗: %v", err)
	}
}

// writeError 以統一的 {"error": ...} 格式回應錯誤
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// idFromPath 從 URL 路徑取出尾端的數字 ID，例如 /api/sources/42 → 42
func idFromPath(path string, prefix string) (int64, error) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, fmt.Errorf("無效的資源路徑: %s", path)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("無效的資源 ID: %s", rest)
	}
	return id, nil
}
