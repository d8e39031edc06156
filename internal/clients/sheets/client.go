package sheets

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ViralTrends-admin/internal/models"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Exporter 負責把影片清單寫入 Google 試算表
type Exporter struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewExporter 以 service account 憑證建立 Exporter
func NewExporter(credentialsFile string, spreadsheetID string) (*Exporter, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("Google 憑證檔路徑不得為空")
	}
	id := NormalizeSpreadsheetID(spreadsheetID)
	if id == "" {
		return nil, fmt.Errorf("spreadsheetID 不得為空")
	}
	svc, err := sheetsapi.NewService(context.Background(), option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("無法建立 Google Sheets 服務: %w", err)
	}
	log.Printf("資訊：[Sheets Exporter] 初始化成功 (spreadsheet: %s)。\n", id)
	return &Exporter{svc: svc, spreadsheetID: id}, nil
}

// NormalizeSpreadsheetID 從完整 URL 或原始 ID 中取出試算表 ID
func NormalizeSpreadsheetID(value string) string {
	s := strings.Trim(strings.TrimSpace(value), `"'`)
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, "/d/"); idx != -1 {
		s = s[idx+len("/d/"):]
	}
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(s, sep); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// ExportVideos 將全部影片覆寫到試算表（自 A1 起）。回傳寫入的資料列數。
func (e *Exporter) ExportVideos(ctx context.Context, videos []models.Video) (int, error) {
	headers := []interface{}{"連結", "標題", "描述", "AI 摘要", "評分", "病毒式", "日期"}
	rows := [][]interface{}{headers}

	for _, v := range videos {
		viral := "否"
		if v.IsViral {
			viral = "是"
		}
		rows = append(rows, []interface{}{
			videoURL(v),
			truncate(v.Title, 500),
			truncate(v.Description.String, 2000),
			truncate(v.AISummary.String, 1000),
			v.ViralityScore,
			viral,
			v.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	body := &sheetsapi.ValueRange{Values: rows}
	// 不帶工作表名稱的 A1，無論語系都會指向第一個工作表
	_, err := e.svc.Spreadsheets.Values.
		Update(e.spreadsheetID, "A1", body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("寫入 Google 試算表失敗: %w", err)
	}
	count := len(rows) - 1
	log.Printf("資訊：[Sheets Exporter] 已匯出 %d 個影片到試算表。\n", count)
	return count, nil
}

// videoURL 依平台與外部 ID 重建觀看連結；storage_path 若已是 http(s) 連結則直接使用
func videoURL(v models.Video) string {
	if v.StoragePath.Valid && (strings.HasPrefix(v.StoragePath.String, "http://") || strings.HasPrefix(v.StoragePath.String, "https://")) {
		return v.StoragePath.String
	}
	platform, id, found := strings.Cut(v.ExternalID, ":")
	if !found {
		id = v.ExternalID
		platform = ""
	}
	switch models.Platform(platform) {
	case models.PlatformShorts:
		return "https://www.youtube.com/shorts/" + id
	case models.PlatformTikTok:
		return "https://www.tiktok.com/@_/video/" + id
	case models.PlatformReels:
		if id != "" {
			return "https://www.instagram.com/reel/" + id + "/"
		}
	}
	return v.StoragePath.String
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
