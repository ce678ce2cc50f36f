package models

import "time"

// Alert severities
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Alert flags a count whose variance is non-zero. Exactly one alert exists
// per triggering count.
type Alert struct {
	ID             int64      `json:"id"`
	DailyCountID   int64      `json:"daily_count_id"`
	Severity       string     `json:"severity"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty"`
	AcknowledgedOn *time.Time `json:"acknowledged_on,omitempty"`
}

// AlertRow is the denormalized alert listing row
type AlertRow struct {
	ID             int64   `json:"id"`
	Severity       string  `json:"severity"`
	Acknowledged   bool    `json:"acknowledged"`
	AcknowledgedBy *string `json:"acknowledged_by,omitempty"`
	AcknowledgedOn *string `json:"acknowledged_on,omitempty"`
	DailyCountID   int64   `json:"daily_count_id"`
	CountDate      string  `json:"count_date"`
	QtyCounted     int     `json:"qty_counted"`
	Variance       int     `json:"variance"`
	Reviewed       bool    `json:"reviewed"`
	AssetName      string  `json:"asset_name"`
	AssetType      string  `json:"asset_type"`
	Room           string  `json:"room"`
	Department     string  `json:"department"`
}
