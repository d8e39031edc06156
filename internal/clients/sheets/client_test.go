package sheets

import (
	"testing"

	"ViralTrends-admin/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpreadsheetID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1AbCdEfGhIjKlMnOp", "1AbCdEfGhIjKlMnOp"},
		{"https://docs.google.com/spreadsheets/d/1AbCdEfGhIjKlMnOp/edit#gid=0", "1AbCdEfGhIjKlMnOp"},
		{"https://docs.google.com/spreadsheets/d/1AbCdEfGhIjKlMnOp?usp=sharing", "1AbCdEfGhIjKlMnOp"},
		{`"1AbCdEfGhIjKlMnOp"`, "1AbCdEfGhIjKlMnOp"},
		{"  1AbCdEfGhIjKlMnOp  ", "1AbCdEfGhIjKlMnOp"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSpreadsheetID(tt.in), tt.in)
	}
}

func TestVideoURLReconstruction(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/shorts/abc123",
		videoURL(models.Video{ExternalID: "shorts:abc123"}))
	assert.Equal(t, "https://www.tiktok.com/@_/video/7312345",
		videoURL(models.Video{ExternalID: "tiktok:7312345"}))
	assert.Equal(t, "https://www.instagram.com/reel/Cxyz/",
		videoURL(models.Video{ExternalID: "reels:Cxyz"}))
}

func TestVideoURLPrefersStoredLink(t *testing.T) {
	v := models.Video{
		ExternalID:  "tiktok:999",
		StoragePath: models.NullString("https://www.tiktok.com/@creator/video/999"),
	}
	assert.Equal(t, "https://www.tiktok.com/@creator/video/999", videoURL(v))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "中文字", truncate("中文字", 5))
	assert.Equal(t, "中文", truncate("中文字串很長", 2))
}
