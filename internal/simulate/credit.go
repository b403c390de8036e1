package simulate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// CreditRatings is ordered from best to worst.
var CreditRatings = []string{
	"AAA", "AA+", "AA", "AA-", "A+", "A", "A-",
	"BBB+", "BBB", "BBB-", "BB+", "BB", "BB-",
	"B+", "B", "B-", "CCC+", "CCC", "CCC-",
}

// SubIndustries groups the seeded companies by industry.
var SubIndustries = map[string][]string{
	"Healthcare":   {"Pharmaceuticals", "Medical Devices", "Health Services"},
	"Solar Energy": {"Panel Manufacturing", "Solar Installation"},
	"Technology":   {"Software", "Semiconductors", "IT Services"},
	"AI":           {"Machine Learning Platforms", "Computer Vision"},
}

// seededIndustries fixes the iteration order of SubIndustries.
var seededIndustries = []string{"Healthcare", "Solar Energy", "Technology", "AI"}

// CompaniesPerSubIndustry is how many profiles are seeded per sub-industry.
const CompaniesPerSubIndustry = 5

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// CreditProfiles seeds the credit-risk table. Better ratings get lower PD
// and higher coverage; the rating-change probability grows as ratios drift
// from their ideal values.
func (s *Simulator) CreditProfiles(now time.Time) []model.CreditProfile {
	var out []model.CreditProfile
	n := float64(len(CreditRatings))
	for _, industry := range seededIndustries {
		for _, sub := range SubIndustries[industry] {
			for i := 0; i < CompaniesPerSubIndustry; i++ {
				idx := s.rng.Intn(len(CreditRatings))
				rating := CreditRatings[idx]

				pd := round(float64(idx)/n*s.uniform(0.05, 0.15), 4)
				lgd := round(s.uniform(0.3, 0.6), 2)
				loan := round(s.uniform(500_000, 5_000_000), 2)
				currentRatio := round(s.uniform(0.8, 3.0), 2)
				roa := round(s.uniform(-0.05, 0.15), 4)
				roe := round(s.uniform(-0.1, 0.25), 4)
				leverage := round(s.uniform(0.2, 0.8), 2)

				baseCoverage := (n - float64(idx)) / n
				fcr := round((baseCoverage*5+1)*(1+roa*2)*(1-leverage*0.3)*s.uniform(0.8, 1.2), 2)
				switch {
				case idx <= 2:
					fcr = math.Max(fcr, 3.0)
				case idx >= len(CreditRatings)-3:
					fcr = math.Min(fcr, 1.2)
				}

				change := math.Abs(currentRatio-1.5)/1.5*0.2 + math.Abs(leverage-0.5)/0.5*0.3
				if roa < 0.1 {
					change += (0.1 - roa) * 2
				}
				if roe < 0.15 {
					change += (0.15 - roe) * 2
				}
				if fcr < 2 {
					change += (2 - fcr) * 0.3
				}
				change = round(change*s.uniform(0.8, 1.2), 4)
				change = math.Max(0, math.Min(1, change))

				out = append(out, model.CreditProfile{
					Company:          fmt.Sprintf("%s_%d", strings.ReplaceAll(sub, " ", "_"), i+1),
					Industry:         industry,
					SubIndustry:      sub,
					CreditRating:     rating,
					PD:               pd,
					LGD:              lgd,
					ExpectedLoss:     round(pd*lgd*loan, 2),
					CurrentRatio:     currentRatio,
					ROA:              roa,
					ROE:              roe,
					LeverageRatio:    leverage,
					CreditVaR:        round(s.uniform(0.05, 0.20), 4),
					LoanAmount:       loan,
					FCR:              fcr,
					RatingChangeProb: change,
					CreatedAt:        now,
				})
			}
		}
	}
	return out
}
