package model

import "time"

// Milestone is a top-level unit of the course curriculum
type Milestone struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Order       int       `gorm:"column:sort_order" json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Module groups lessons under a milestone
type Module struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	MilestoneID string    `gorm:"index;not null" json:"milestoneId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Order       int       `gorm:"column:sort_order" json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Content is one uploaded lesson asset (video, image, audio or document)
// hosted on the media bucket
type Content struct {
	ID       string `gorm:"primaryKey" json:"id"`
	ModuleID string `gorm:"index" json:"moduleId"`
	Title    string `json:"title"`
	// Coarse kind derived from the MIME type: image, video, audio, raw
	Type string `json:"type"`
	URL  string `json:"url"`
	// S3 object key behind URL
	StorageKey string    `json:"-"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
}
