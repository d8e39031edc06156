package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ViralTrends-admin/internal/config"
	"ViralTrends-admin/internal/models"

	"github.com/go-sql-driver/mysql"
)

// MySQLStore 結構
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 建立資料庫連線
func NewMySQLStore(dbCfg config.DatabaseConfig) (*MySQLStore, error) {
	if dbCfg.Driver != "mysql" {
		return nil, fmt.Errorf("不支援的資料庫驅動程式: %s", dbCfg.Driver)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("開啟資料庫連線失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("無法連線到資料庫 (ping 失敗): %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	log.Println("資訊：成功連線到 MySQL 資料庫。")
	return &MySQLStore{db: db}, nil
}

// Close 關閉連線
func (s *MySQLStore) Close() error {
	if s.db != nil {
		log.Println("資訊：正在關閉 MySQL 資料庫連線...")
		return s.db.Close()
	}
	return nil
}

func isDuplicateKeyErr(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// --- Sources ---

const sourceColumns = "id, platform, url, status, created_at"

func scanSource(row interface{ Scan(...interface{}) error }) (models.Source, error) {
	var src models.Source
	err := row.Scan(&src.ID, &src.Platform, &src.URL, &src.Status, &src.CreatedAt)
	return src, err
}

// ListSources 回傳所有來源，依建立時間新到舊
func (s *MySQLStore) ListSources() ([]models.Source, error) {
	return s.querySources("SELECT " + sourceColumns + " FROM sources ORDER BY created_at DESC")
}

// ListActiveSources 只回傳啟用中的來源；只有這些來源會參與攝取
func (s *MySQLStore) ListActiveSources() ([]models.Source, error) {
	return s.querySources("SELECT "+sourceColumns+" FROM sources WHERE status = ? ORDER BY created_at DESC", models.SourceActive)
}

func (s *MySQLStore) querySources(query string, args ...interface{}) ([]models.Source, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("查詢來源失敗: %w", err)
	}
	defer rows.Close()
	var sources []models.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			log.Printf("錯誤：掃描來源查詢結果行失敗: %v", err)
			continue
		}
		sources = append(sources, src)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("處理來源查詢結果集時發生錯誤: %w", err)
	}
	return sources, nil
}

// CreateSource 新增一個來源
func (s *MySQLStore) CreateSource(src *models.Source) (*models.Source, error) {
	if src == nil {
		return nil, fmt.Errorf("傳入的 source 物件不得為 nil")
	}
	status := src.Status
	if status == "" {
		status = models.SourceActive
	}
	res, err := s.db.Exec("INSERT INTO sources (platform, url, status) VALUES (?, ?, ?)", src.Platform, src.URL, status)
	if err != nil {
		return nil, fmt.Errorf("插入來源記錄失敗 (platform: %s): %w", src.Platform, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("獲取新插入來源的 ID 失敗: %w", err)
	}
	log.Printf("資訊：新增來源記錄成功，ID: %d (platform: %s)\n", id, src.Platform)
	return s.GetSourceByID(id)
}

// GetSourceByID 查詢單一來源；不存在時回傳 (nil, nil)
func (s *MySQLStore) GetSourceByID(id int64) (*models.Source, error) {
	row := s.db.QueryRow("SELECT "+sourceColumns+" FROM sources WHERE id = ?", id)
	src, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查詢來源 ID %d 失敗: %w", id, err)
	}
	return &src, nil
}

// UpdateSource 部分更新來源欄位；nil 欄位保持不變。找不到時回傳 (nil, nil)。
func (s *MySQLStore) UpdateSource(id int64, platform *models.Platform, url *string, status *models.SourceStatus) (*models.Source, error) {
	var sets []string
	var args []interface{}
	if platform != nil {
		sets = append(sets, "platform = ?")
		args = append(args, *platform)
	}
	if url != nil {
		sets = append(sets, "url = ?")
		args = append(args, *url)
	}
	if status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *status)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("沒有要更新的欄位")
	}
	args = append(args, id)
	_, err := s.db.Exec("UPDATE sources SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("更新來源 ID %d 失敗: %w", id, err)
	}
	return s.GetSourceByID(id)
}

// DeleteSource 刪除來源
func (s *MySQLStore) DeleteSource(id int64) error {
	if _, err := s.db.Exec("DELETE FROM sources WHERE id = ?", id); err != nil {
		return fmt.Errorf("刪除來源 ID %d 失敗: %w", id, err)
	}
	return nil
}

// --- Topics ---

const topicColumns = "id, keyword, description, created_at"

// ListTopics 回傳所有主題，依建立時間新到舊
func (s *MySQLStore) ListTopics() ([]models.Topic, error) {
	rows, err := s.db.Query("SELECT " + topicColumns + " FROM topics ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("查詢主題失敗: %w", err)
	}
	defer rows.Close()
	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		var descSQL sql.NullString
		if err := rows.Scan(&t.ID, &t.Keyword, &descSQL, &t.CreatedAt); err != nil {
			log.Printf("錯誤：掃描主題查詢結果行失敗: %v", err)
			continue
		}
		t.Description = models.JsonNullString{NullString: descSQL}
		topics = append(topics, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("處理主題查詢結果集時發生錯誤: %w", err)
	}
	return topics, nil
}

// CreateTopic 新增一個主題
func (s *MySQLStore) CreateTopic(t *models.Topic) (*models.Topic, error) {
	if t == nil {
		return nil, fmt.Errorf("傳入的 topic 物件不得為 nil")
	}
	res, err := s.db.Exec("INSERT INTO topics (keyword, description) VALUES (?, ?)", t.Keyword, t.Description)
	if err != nil {
		return nil, fmt.Errorf("插入主題記錄失敗 (keyword: %s): %w", t.Keyword, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("獲取新插入主題的 ID 失敗: %w", err)
	}
	log.Printf("資訊：新增主題記錄成功，ID: %d (keyword: %s)\n", id, t.Keyword)
	return s.GetTopicByID(id)
}

// GetTopicByID 查詢單一主題；不存在時回傳 (nil, nil)
func (s *MySQLStore) GetTopicByID(id int64) (*models.Topic, error) {
	var t models.Topic
	var descSQL sql.NullString
	err := s.db.QueryRow("SELECT "+topicColumns+" FROM topics WHERE id = ?", id).
		Scan(&t.ID, &t.Keyword, &descSQL, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查詢主題 ID %d 失敗: %w", id, err)
	}
	t.Description = models.JsonNullString{NullString: descSQL}
	return &t, nil
}

// UpdateTopic 部分更新主題欄位；nil 欄位保持不變。找不到時回傳 (nil, nil)。
func (s *MySQLStore) UpdateTopic(id int64, keyword *string, description *string) (*models.Topic, error) {
	var sets []string
	var args []interface{}
	if keyword != nil {
		sets = append(sets, "keyword = ?")
		args = append(args, *keyword)
	}
	if description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *description)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("沒有要更新的欄位")
	}
	args = append(args, id)
	_, err := s.db.Exec("UPDATE topics SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("更新主題 ID %d 失敗: %w", id, err)
	}
	return s.GetTopicByID(id)
}

// DeleteTopic 刪除主題
func (s *MySQLStore) DeleteTopic(id int64) error {
	if _, err := s.db.Exec("DELETE FROM topics WHERE id = ?", id); err != nil {
		return fmt.Errorf("刪除主題 ID %d 失敗: %w", id, err)
	}
	return nil
}

// --- Videos ---

const videoColumns = "id, source_id, external_id, title, description, ai_summary, virality_score, is_viral, storage_path, quality_reason, created_at"

func scanVideo(row interface{ Scan(...interface{}) error }) (models.Video, error) {
	var v models.Video
	var descSQL, summarySQL, pathSQL, reasonSQL sql.NullString
	err := row.Scan(&v.ID, &v.SourceID, &v.ExternalID, &v.Title, &descSQL, &summarySQL,
		&v.ViralityScore, &v.IsViral, &pathSQL, &reasonSQL, &v.CreatedAt)
	if err != nil {
		return v, err
	}
	v.Description = models.JsonNullString{NullString: descSQL}
	v.AISummary = models.JsonNullString{NullString: summarySQL}
	v.StoragePath = models.JsonNullString{NullString: pathSQL}
	v.QualityReason = models.JsonNullString{NullString: reasonSQL}
	return v, nil
}

// ListVideos 回傳影片，viralOnly 為 true 時只回傳跨過門檻的影片
func (s *MySQLStore) ListVideos(viralOnly bool) ([]models.Video, error) {
	query := "SELECT " + videoColumns + " FROM videos"
	if viralOnly {
		query += " WHERE is_viral = TRUE"
	}
	query += " ORDER BY created_at DESC"
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("查詢影片失敗: %w", err)
	}
	defer rows.Close()
	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			log.Printf("錯誤：掃描影片查詢結果行失敗: %v", err)
			continue
		}
		videos = append(videos, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("處理影片查詢結果集時發生錯誤: %w", err)
	}
	log.Printf("資訊：查詢到 %d 個影片 (viralOnly: %t)。\n", len(videos), viralOnly)
	return videos, nil
}

// GetVideoByID 查詢單一影片；不存在時回傳 (nil, nil)
func (s *MySQLStore) GetVideoByID(id int64) (*models.Video, error) {
	if id == 0 {
		return nil, fmt.Errorf("無效的 VideoID")
	}
	row := s.db.QueryRow("SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查詢影片 ID %d 失敗: %w", id, err)
	}
	return &v, nil
}

// DeleteVideo 刪除影片
func (s *MySQLStore) DeleteVideo(id int64) error {
	if _, err := s.db.Exec("DELETE FROM videos WHERE id = ?", id); err != nil {
		return fmt.Errorf("刪除影片 ID %d 失敗: %w", id, err)
	}
	return nil
}

// VideoExists 以 (source_id, external_id) 檢查影片是否已入庫，為去重的依據
func (s *MySQLStore) VideoExists(sourceID int64, externalID string) (bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM videos WHERE source_id = ? AND external_id = ?", sourceID, externalID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("檢查影片是否存在失敗 (source: %d, external: %s): %w", sourceID, externalID, err)
	}
	return true, nil
}

// InsertVideo 寫入一筆攝取結果。
// 唯一性約束衝突回傳 ErrDuplicateVideo，呼叫端視為良性重複。
func (s *MySQLStore) InsertVideo(v *models.Video) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("傳入的 video 物件不得為 nil")
	}
	if v.SourceID == 0 || v.ExternalID == "" {
		return 0, fmt.Errorf("video 物件必須提供 SourceID 與 ExternalID")
	}
	query := `INSERT INTO videos
		(source_id, external_id, title, description, ai_summary, virality_score, is_viral, storage_path, quality_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.Exec(query,
		v.SourceID, v.ExternalID, v.Title, v.Description, v.AISummary,
		v.ViralityScore, v.IsViral, v.StoragePath, v.QualityReason)
	if err != nil {
		if isDuplicateKeyErr(err) {
			return 0, models.ErrDuplicateVideo
		}
		return 0, fmt.Errorf("插入影片記錄失敗 (source: %d, external: %s): %w", v.SourceID, v.ExternalID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("獲取新插入影片的 ID 失敗: %w", err)
	}
	log.Printf("資訊：新增影片記錄成功，ID: %d (external: %s, score: %d, viral: %t)\n", id, v.ExternalID, v.ViralityScore, v.IsViral)
	return id, nil
}
