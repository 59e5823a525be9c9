package policy

import (
	"context"
	"strings"
	"time"

	"cleansched/internal/domain"
)

// RiskBand is ordered: a higher band never loosens what a lower band
// would require.
type RiskBand int

const (
	RiskLow RiskBand = iota
	RiskMedium
	RiskHigh
)

func (b RiskBand) String() string {
	switch b {
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

type RiskAssessment struct {
	Band            RiskBand `json:"band"`
	RequiresDeposit bool     `json:"requires_deposit"`
	Reasons         []string `json:"reasons,omitempty"`
}

// AssessRisk scores a prospective booking. Query-only: it reads booking
// history but writes nothing.
func (s *Service) AssessRisk(ctx context.Context, lead *domain.Lead, startsAt time.Time, postalCode string) (RiskAssessment, error) {
	returning, err := s.history.HasPriorCompletedBooking(ctx, lead.ID)
	if err != nil {
		return RiskAssessment{}, err
	}
	cancellations, err := s.history.CountCancellations(ctx, lead.ID)
	if err != nil {
		return RiskAssessment{}, err
	}

	score := 0
	if !returning {
		score++
	}
	if cancellations >= 2 {
		score += 2
	}
	if time.Until(startsAt) < time.Duration(s.cfg.ShortNoticeHours)*time.Hour {
		score++
	}
	if s.highRiskPostal(postalCode) {
		score++
	}

	band := RiskLow
	switch {
	case score >= 3:
		band = RiskHigh
	case score == 2:
		band = RiskMedium
	}

	a := RiskAssessment{Band: band, RequiresDeposit: band >= RiskHigh}
	if band > RiskLow {
		a.Reasons = []string{"risk_" + band.String()}
	}
	return a, nil
}

func (s *Service) highRiskPostal(postalCode string) bool {
	code := strings.TrimSpace(postalCode)
	if code == "" {
		return false
	}
	for _, prefix := range s.cfg.HighRiskPostalPrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}
