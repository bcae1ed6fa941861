package models

import "time"

// Blacklist entry sources.
const (
	SourceManual      = "manual"
	SourceModel       = "model"
	SourceExternalAPI = "external_api"
)

type URLBlacklist struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	URL        string    `gorm:"column:url;uniqueIndex;not null" json:"url"`
	Domain     string    `gorm:"column:domain;index" json:"domain"`
	IsPhishing bool      `gorm:"column:is_phishing;not null" json:"is_phishing"`
	Confidence float64   `gorm:"column:confidence" json:"confidence"`
	Source     string    `gorm:"column:source" json:"source"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (URLBlacklist) TableName() string { return "url_blacklist" }
