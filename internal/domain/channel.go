package domain

import "time"

// Channel holds the denormalized latest-known state of one channel, keyed by
// its public username/handle. At most one record exists per username.
type Channel struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	ChannelUsername string `gorm:"type:text;uniqueIndex;not null" json:"channel_username"`
	Subscribers     int64  `gorm:"not null;default:0" json:"subscribers"`
}

// TableName returns the database table name for Channel.
func (Channel) TableName() string {
	return "channels"
}

// ChannelHistory records one observed change in a channel's subscriber count.
// Rows are appended when a newly fetched value differs from the stored one and
// carry the value that was superseded; they are never mutated or deleted.
type ChannelHistory struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ChannelID           uint      `gorm:"not null;index" json:"channel_id"`
	PreviousSubscribers int64     `gorm:"not null;default:0" json:"previous_subscribers"`
	RecordedAt          time.Time `gorm:"autoCreateTime" json:"recorded_at"`
}

// TableName returns the database table name for ChannelHistory.
func (ChannelHistory) TableName() string {
	return "channel_history"
}

// ChannelVideo links a video to the channel it was ingested under.
type ChannelVideo struct {
	VideoID   uint `gorm:"primaryKey" json:"video_id"`
	ChannelID uint `gorm:"primaryKey" json:"channel_id"`
}

// TableName returns the database table name for ChannelVideo.
func (ChannelVideo) TableName() string {
	return "channel_videos"
}
