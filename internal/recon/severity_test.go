package recon_test

import (
	"testing"

	"ward-inventory-api/internal/models"
	"ward-inventory-api/internal/recon"

	"github.com/stretchr/testify/assert"
)

func TestGradeSeverity(t *testing.T) {
	tests := []struct {
		name     string
		baseline int
		variance int
		want     string
	}{
		{"zero variance on zero baseline", 0, 0, models.SeverityLow},
		{"any variance on zero baseline is low", 0, 500, models.SeverityLow},
		{"negative variance on zero baseline is low", 0, -3, models.SeverityLow},
		{"ratio at 10% stays low", 100, 10, models.SeverityLow},
		{"ratio just above 10% is medium", 100, 11, models.SeverityMedium},
		{"ratio at 20% stays medium", 100, 20, models.SeverityMedium},
		{"ratio just above 20% is high", 100, 21, models.SeverityHigh},
		{"shortfall grades on magnitude", 100, -25, models.SeverityHigh},
		{"small shortfall stays low", 100, -5, models.SeverityLow},
		{"count of 75 against baseline 100", 100, -25, models.SeverityHigh},
		{"count of 88 against baseline 100", 100, -12, models.SeverityMedium},
		{"count of 95 against baseline 100", 100, -5, models.SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recon.GradeSeverity(tt.baseline, tt.variance))
		})
	}
}
