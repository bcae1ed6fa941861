package models

import "time"

// AnalyticsData is one pre-aggregated UTC day of prediction_logs.
type AnalyticsData struct {
	ID               uint      `gorm:"column:id;primaryKey" json:"id"`
	Date             time.Time `gorm:"column:date;uniqueIndex" json:"date"`
	TotalPredictions int       `gorm:"column:total_predictions;default:0" json:"total_predictions"`
	PhishingCount    int       `gorm:"column:phishing_count;default:0" json:"phishing_count"`
	LegitimateCount  int       `gorm:"column:legitimate_count;default:0" json:"legitimate_count"`
	AvgConfidence    float64   `gorm:"column:avg_confidence;default:0" json:"avg_confidence"`
}

func (AnalyticsData) TableName() string { return "analytics_data" }
