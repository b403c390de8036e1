// Package simulate generates deterministic-per-county risk metrics for the
// map when live county data is unavailable or too sparse to be useful.
package simulate

import (
	"fmt"
	"math/rand"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

const (
	// MaxCompaniesPerCounty caps every generated county, whatever the caller asks for.
	MaxCompaniesPerCounty = 3

	// ImportantPerState is how many catalog counties are used for each non-NC state.
	ImportantPerState = 3

	// DefaultSampleSize bounds how many boundary features the sparse pass inspects.
	DefaultSampleSize = 1000

	// DefaultPerStateFill bounds how many counties the sparse pass adds per state.
	DefaultPerStateFill = 15

	northCarolina = "North Carolina"
	newHanover    = "New Hanover"
)

// baseMetrics is the financial starting point of each risk bucket.
type baseMetrics struct {
	revenue float64
	pd      float64
	fcr     float64
	cr      float64
}

var bucketMetrics = map[model.RiskLevel]baseMetrics{
	model.RiskHigh:   {revenue: 10_000_000, pd: 0.08, fcr: 0.8, cr: 0.9},
	model.RiskMedium: {revenue: 25_000_000, pd: 0.03, fcr: 1.5, cr: 1.5},
	model.RiskLow:    {revenue: 50_000_000, pd: 0.005, fcr: 2.5, cr: 2.5},
}

// RiskBucket assigns a county to a risk tier from the character codes of
// state+county. It is pure: the same pair always lands in the same bucket.
func RiskBucket(state, county string) model.RiskLevel {
	sum := 0
	for _, r := range state + county {
		sum += int(r)
	}
	switch sum % 3 {
	case 0:
		return model.RiskHigh
	case 1:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Simulator produces county metrics. Company counts are random, everything
// else is derived from the county and state names.
type Simulator struct {
	rng         *rand.Rand
	clientTypes model.ClientTypes

	SampleSize   int
	PerStateFill int
}

// New creates a simulator seeded with seed that only emits companies whose
// client type is in clientTypes.
func New(seed int64, clientTypes model.ClientTypes) *Simulator {
	return &Simulator{
		rng:          rand.New(rand.NewSource(seed)),
		clientTypes:  clientTypes,
		SampleSize:   DefaultSampleSize,
		PerStateFill: DefaultPerStateFill,
	}
}

// SetClientTypes changes the client-type filter applied at generation time.
func (s *Simulator) SetClientTypes(ct model.ClientTypes) { s.clientTypes = ct }

// ClientTypes returns the current client-type filter.
func (s *Simulator) ClientTypes() model.ClientTypes { return s.clientTypes }

// smallCount draws the usual 1-3 companies.
func (s *Simulator) smallCount() int { return s.rng.Intn(3) + 1 }

// County builds the metric for one county. companyCount is clamped to
// [1, MaxCompaniesPerCounty]. Companies whose client type is filtered out are
// dropped here, so the numbering of the remaining ones can have gaps.
func (s *Simulator) County(county, state string, companyCount int) *model.CountyMetric {
	companyCount = min(companyCount, MaxCompaniesPerCounty)
	companyCount = max(companyCount, 1)

	risk := RiskBucket(state, county)
	var counts model.RiskCounts
	switch risk {
	case model.RiskHigh:
		counts.High = companyCount
	case model.RiskMedium:
		counts.Medium = companyCount
	default:
		counts.Low = companyCount
	}

	currentClients := companyCount / 2
	potentialClients := companyCount - currentClients

	companies := make([]model.Company, 0, companyCount+1)
	for i := 0; i < companyCount; i++ {
		isClient := i < currentClients
		c := model.Company{
			Name:      fmt.Sprintf("Company %d in %s", i+1, county),
			Industry:  model.CompanyIndustries[i%len(model.CompanyIndustries)],
			RiskLevel: risk,
			IsClient:  isClient,
		}
		if !s.clientTypes.Has(c.ClientType()) {
			continue
		}
		companies = append(companies, c)
	}

	if county == newHanover && state == northCarolina {
		companies = append([]model.Company{{
			Name:      "Live Oak Bank",
			Industry:  "Banking",
			RiskLevel: model.RiskLow,
			IsClient:  true,
		}}, companies...)
	}

	base := bucketMetrics[risk]
	revenue := base.revenue + float64(len(state))*1_000_000
	pd, fcr, cr := base.pd, base.fcr, base.cr
	if state == northCarolina {
		revenue *= 1.25
		pd *= 0.8
		fcr *= 1.2
		cr *= 1.2
	}
	if county == newHanover && state == northCarolina {
		revenue *= 1.5
		pd *= 0.6
		fcr *= 1.5
		cr *= 1.5
	}

	var clients model.ClientCounts
	if s.clientTypes.Has(model.ClientCurrent) {
		clients.Current = currentClients
	}
	if s.clientTypes.Has(model.ClientPotential) {
		clients.Potential = potentialClients
	}

	return &model.CountyMetric{
		County:       county,
		State:        state,
		Companies:    companies,
		RevenueTotal: revenue,
		PDAvg:        pd,
		FCRAvg:       fcr,
		CRAvg:        cr,
		RiskCounts:   counts,
		ClientCounts: clients,
		DominantRisk: risk,
	}
}

// Simulate replaces the county set with every North Carolina county plus up
// to ImportantPerState catalog counties for each other state.
func (s *Simulator) Simulate() model.CountyData {
	data := make(model.CountyData, len(NorthCarolinaCounties)+len(ImportantCounties))
	for _, county := range NorthCarolinaCounties {
		data[model.CountyKey(county, northCarolina)] = s.County(county, northCarolina, s.smallCount())
	}

	perState := map[string]int{}
	for _, ref := range ImportantCounties {
		if perState[ref.State] >= ImportantPerState {
			continue
		}
		perState[ref.State]++
		data[model.CountyKey(ref.County, ref.State)] = s.County(ref.County, ref.State, s.smallCount())
	}
	return data
}

// FillSparse adds counties from an evenly strided sample of at most
// SampleSize boundary features, skipping counties already present and adding
// no more than PerStateFill per state. It returns how many were added.
func (s *Simulator) FillSparse(data model.CountyData, features []model.Feature) int {
	if len(features) == 0 {
		return 0
	}
	toProcess := min(len(features), s.SampleSize)
	if toProcess <= 0 {
		return 0
	}
	stride := max(len(features)/toProcess, 1)

	added := 0
	stateCounts := map[string]int{}
	for i := 0; i < len(features); i += stride {
		props := features[i].Properties
		state := StateFromFIPS(props.State)
		key := model.CountyKey(props.Name, state)
		if _, ok := data[key]; ok {
			continue
		}
		stateCounts[state]++
		if stateCounts[state] > s.PerStateFill {
			continue
		}
		// The sparse pass asks for 3-7 companies; County clamps to the cap.
		data[key] = s.County(props.Name, state, s.rng.Intn(5)+3)
		added++
	}
	return added
}

// Coverage returns the fraction of features that have county data, and the
// number of features with data.
func Coverage(data model.CountyData, features []model.Feature) (float64, int) {
	if len(features) == 0 {
		return 0, 0
	}
	withData := 0
	for _, f := range features {
		key := model.CountyKey(f.Properties.Name, StateFromFIPS(f.Properties.State))
		if _, ok := data[key]; ok {
			withData++
		}
	}
	return float64(withData) / float64(len(features)), withData
}
