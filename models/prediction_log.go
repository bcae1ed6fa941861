package models

import "time"

// Model types recorded in prediction_logs.model_type.
const (
	ModelTypeURL       = "url"
	ModelTypeText      = "text"
	ModelTypeHybrid    = "hybrid"
	ModelTypeLLMURL    = "llm_url"
	ModelTypeLLMText   = "llm_text"
	ModelTypeLLMHybrid = "llm_hybrid"
)

type PredictionLog struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	URL        *string   `gorm:"column:url;index" json:"url"`
	Text       *string   `gorm:"column:text" json:"text"`
	Prediction string    `gorm:"column:prediction;index" json:"prediction"`
	Confidence float64   `gorm:"column:confidence" json:"confidence"`
	ModelType  string    `gorm:"column:model_type;index" json:"model_type"`
	Timestamp  time.Time `gorm:"column:timestamp;index;autoCreateTime" json:"timestamp"`
	IPAddress  *string   `gorm:"column:ip_address" json:"ip_address"`
	UserAgent  *string   `gorm:"column:user_agent" json:"-"`
}

func (PredictionLog) TableName() string { return "prediction_logs" }
