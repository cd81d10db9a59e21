package promotion_test

import (
	"testing"
	"time"

	"academy/internal/domain/promotion"
)

// TestPromotion_Validate tests validation of Promotion.
func TestPromotion_Validate(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		promo   promotion.Promotion
		wantErr error
	}{
		{name: "valid with dates", promo: promotion.Promotion{Name: "CDA 2024", StartAt: jan, EndAt: jun}},
		{name: "valid without dates", promo: promotion.Promotion{Name: "CDA 2024"}},
		{name: "same day", promo: promotion.Promotion{Name: "Bootcamp", StartAt: jan, EndAt: jan}},
		{name: "empty name", promo: promotion.Promotion{Name: " "}, wantErr: promotion.ErrEmptyName},
		{name: "reversed dates", promo: promotion.Promotion{Name: "CDA", StartAt: jun, EndAt: jan}, wantErr: promotion.ErrInvalidDates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.promo.Validate(); err != tt.wantErr {
				t.Errorf("Promotion.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
