package domain

import (
	"math"
	"time"
)

// Video represents one fetched snapshot of a YouTube video. YoutubeVideoID is
// the natural unique key: re-ingesting the same video refreshes the stored
// record in place instead of creating a duplicate.
type Video struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	YoutubeVideoID string    `gorm:"type:text;uniqueIndex;not null" json:"youtube_video_id"`
	Title          string    `gorm:"type:text" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Views          int64     `gorm:"default:0" json:"views"`
	Likes          int64     `gorm:"default:0" json:"likes"`
	Comments       int64     `gorm:"default:0" json:"comments"`
	Posted         string    `gorm:"type:text" json:"posted"`
	VideoLength    string    `gorm:"type:text" json:"video_length"`
	Transcript     string    `gorm:"type:text" json:"transcript"`
	ChannelID      uint      `gorm:"index" json:"channel_id"`
	SavedAt        time.Time `gorm:"autoUpdateTime" json:"saved_at"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string {
	return "videos"
}

// rate returns numerator as a 2-decimal percentage of views, zero when views
// is zero.
func (v *Video) rate(numerator int64) float64 {
	if v.Views == 0 {
		return 0.0
	}
	return math.Round(float64(numerator)/float64(v.Views)*100*100) / 100
}

// LikeRate returns likes as a percentage of views.
func (v *Video) LikeRate() float64 {
	return v.rate(v.Likes)
}

// CommentRate returns comments as a percentage of views.
func (v *Video) CommentRate() float64 {
	return v.rate(v.Comments)
}

// EngagementRate returns combined likes + comments as a percentage of views.
func (v *Video) EngagementRate() float64 {
	return v.rate(v.Likes + v.Comments)
}

// VideoSnapshot is the point-in-time metadata fetched for one video, including
// its owning channel's denormalized stats. It is the unit handed from the API
// client to the persistence gateway.
type VideoSnapshot struct {
	YoutubeVideoID  string `json:"youtube_video_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Views           int64  `json:"views"`
	Likes           int64  `json:"likes"`
	Comments        int64  `json:"comments"`
	Posted          string `json:"posted"`
	VideoLength     string `json:"video_length"`
	Transcript      string `json:"transcript"`
	ChannelUsername string `json:"channel_username"`
	Subscribers     int64  `json:"subscribers"`
}
