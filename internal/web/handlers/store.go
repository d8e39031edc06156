package handlers

import (
	"ViralTrends-admin/internal/models"
)

// DBStore 定義了應用程式需要的資料庫操作介面
type DBStore interface {
	ListSources() ([]models.Source, error)
	ListActiveSources() ([]models.Source, error)
	GetSourceByID(id int64) (*models.Source, error)
	CreateSource(src *models.Source) (*models.Source, error)
	UpdateSource(id int64, platform *models.Platform, url *string, status *models.SourceStatus) (*models.Source, error)
	DeleteSource(id int64) error

	ListTopics() ([]models.Topic, error)
	GetTopicByID(id int64) (*models.Topic, error)
	CreateTopic(t *models.Topic) (*models.Topic, error)
	UpdateTopic(id int64, keyword *string, description *string) (*models.Topic, error)
	DeleteTopic(id int64) error

	ListVideos(viralOnly bool) ([]models.Video, error)
	GetVideoByID(id int64) (*models.Video, error)
	DeleteVideo(id int64) error
	VideoExists(sourceID int64, externalID string) (bool, error)
	InsertVideo(v *models.Video) (int64, error)

	Close() error
}
