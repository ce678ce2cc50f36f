package recon

import "ward-inventory-api/internal/models"

// GradeSeverity maps a count's variance against its baseline to an alert
// severity. A zero baseline makes the ratio undefined, so any variance on
// top of it grades Low regardless of magnitude.
func GradeSeverity(baseline, variance int) string {
	if baseline == 0 {
		return models.SeverityLow
	}
	abs := variance
	if abs < 0 {
		abs = -abs
	}
	ratio := float64(abs) / float64(baseline)
	switch {
	case ratio > 0.20:
		return models.SeverityHigh
	case ratio > 0.10:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
