package simulate

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type SimulatorSuite struct {
	sim *Simulator
}

var _ = Suite(&SimulatorSuite{})

func (s *SimulatorSuite) SetUpTest(c *C) {
	s.sim = New(42, model.AllClientTypes())
}

func (s *SimulatorSuite) TestRiskBucketIsStable(c *C) {
	pairs := [][2]string{
		{"North Carolina", "Wake"},
		{"Texas", "Harris"},
		{"New Mexico", "Doña Ana"},
		{"", ""},
	}
	for _, p := range pairs {
		c.Assert(RiskBucket(p[0], p[1]), Equals, RiskBucket(p[0], p[1]))
	}
	c.Assert(RiskBucket("North Carolina", "Wake"), Equals, model.RiskMedium)
	c.Assert(RiskBucket("Texas", "Harris"), Equals, model.RiskHigh)
	c.Assert(RiskBucket("North Carolina", "New Hanover"), Equals, model.RiskLow)
}

func (s *SimulatorSuite) TestWakeCountyScenario(c *C) {
	m := s.sim.County("Wake", "North Carolina", 2)
	c.Assert(m.DominantRisk, Equals, model.RiskMedium)
	c.Assert(m.RevenueTotal, Equals, (25_000_000.0+14*1_000_000)*1.25)
	c.Assert(math.Abs(m.PDAvg-0.024) < 1e-12, Equals, true)
	c.Assert(len(m.Companies) <= MaxCompaniesPerCounty, Equals, true)
	c.Assert(m.Key(), Equals, "Wake, North Carolina")
}

func (s *SimulatorSuite) TestCompanyCountIsClamped(c *C) {
	for _, requested := range []int{-4, 0, 1, 3, 7, 100} {
		m := s.sim.County("Harris", "Texas", requested)
		total := m.RiskCounts.Total()
		c.Assert(total >= 1 && total <= MaxCompaniesPerCounty, Equals, true, Commentf("requested %d", requested))
		c.Assert(len(m.Companies), Equals, total)
	}
}

func (s *SimulatorSuite) TestExactlyOneRiskCountIsNonZero(c *C) {
	s.sim.SetClientTypes(model.ClientTypes{model.ClientPotential})
	for _, ref := range ImportantCounties {
		m := s.sim.County(ref.County, ref.State, 3)
		nonZero := 0
		for _, v := range []int{m.RiskCounts.High, m.RiskCounts.Medium, m.RiskCounts.Low} {
			if v != 0 {
				nonZero++
				c.Assert(v, Equals, 3)
			}
		}
		c.Assert(nonZero, Equals, 1)
	}
}

func (s *SimulatorSuite) TestClientSplit(c *C) {
	for n := 1; n <= MaxCompaniesPerCounty; n++ {
		m := s.sim.County("Cook", "Illinois", n)
		c.Assert(m.ClientCounts.Current, Equals, n/2)
		c.Assert(m.ClientCounts.Current+m.ClientCounts.Potential, Equals, n)
		for i, company := range m.Companies {
			c.Assert(company.IsClient, Equals, i < n/2)
		}
	}
}

func (s *SimulatorSuite) TestClientTypeFilterLeavesGaps(c *C) {
	s.sim.SetClientTypes(model.ClientTypes{model.ClientPotential})
	m := s.sim.County("Cook", "Illinois", 3)
	c.Assert(m.Companies, HasLen, 2)
	c.Assert(m.Companies[0].Name, Equals, "Company 2 in Cook")
	c.Assert(m.ClientCounts.Current, Equals, 0)
	c.Assert(m.ClientCounts.Potential, Equals, 2)
	c.Assert(m.RiskCounts.Total(), Equals, 3)
}

func (s *SimulatorSuite) TestNewHanoverLiveOakBank(c *C) {
	for _, ct := range []model.ClientTypes{model.AllClientTypes(), {model.ClientPotential}, {}} {
		s.sim.SetClientTypes(ct)
		m := s.sim.County("New Hanover", "North Carolina", 2)
		c.Assert(len(m.Companies) > 0, Equals, true)
		c.Assert(m.Companies[0].Name, Equals, "Live Oak Bank")
		c.Assert(m.Companies[0].Industry, Equals, "Banking")
		c.Assert(m.Companies[0].RiskLevel, Equals, model.RiskLow)
		c.Assert(m.Companies[0].IsClient, Equals, true)
	}
	m := s.sim.County("New Hanover", "North Carolina", 1)
	c.Assert(m.RevenueTotal, Equals, 120_000_000.0)
}

func (s *SimulatorSuite) TestSimulateCoversNorthCarolinaAndCatalog(c *C) {
	data := s.sim.Simulate()
	for _, county := range NorthCarolinaCounties {
		_, ok := data[model.CountyKey(county, "North Carolina")]
		c.Assert(ok, Equals, true, Commentf("missing %s", county))
	}
	perState := map[string]int{}
	for _, m := range data {
		if m.State != "North Carolina" {
			perState[m.State]++
		}
	}
	for state, n := range perState {
		c.Assert(n <= ImportantPerState, Equals, true, Commentf("%s has %d", state, n))
	}
	_, ok := data["Riverside, California"]
	c.Assert(ok, Equals, false)
	_, ok = data["Los Angeles, California"]
	c.Assert(ok, Equals, true)
}

func syntheticFeatures(states map[string]int) []model.Feature {
	var out []model.Feature
	for fips, n := range states {
		for i := 0; i < n; i++ {
			out = append(out, model.Feature{Properties: model.FeatureProperties{
				Name:  fmt.Sprintf("County%03d", i),
				State: fips,
			}})
		}
	}
	return out
}

func (s *SimulatorSuite) TestFillSparseCapsPerState(c *C) {
	features := syntheticFeatures(map[string]int{"48": 40, "06": 10})
	data := model.CountyData{}
	added := s.sim.FillSparse(data, features)
	c.Assert(added, Equals, DefaultPerStateFill+10)

	texas := 0
	for _, m := range data {
		if m.State == "Texas" {
			texas++
		}
		c.Assert(m.RiskCounts.Total() <= MaxCompaniesPerCounty, Equals, true)
	}
	c.Assert(texas, Equals, DefaultPerStateFill)
}

func (s *SimulatorSuite) TestFillSparseSkipsExisting(c *C) {
	features := syntheticFeatures(map[string]int{"06": 5})
	existing := &model.CountyMetric{County: "County000", State: "California"}
	data := model.CountyData{"County000, California": existing}
	added := s.sim.FillSparse(data, features)
	c.Assert(added, Equals, 4)
	c.Assert(data["County000, California"], Equals, existing)
}

func (s *SimulatorSuite) TestFillSparseStridesLargeSets(c *C) {
	s.sim.SampleSize = 10
	s.sim.PerStateFill = 100
	features := syntheticFeatures(map[string]int{"17": 100})
	added := s.sim.FillSparse(model.CountyData{}, features)
	c.Assert(added, Equals, 10)
}

func (s *SimulatorSuite) TestCoverage(c *C) {
	features := syntheticFeatures(map[string]int{"48": 4})
	ratio, n := Coverage(model.CountyData{}, features)
	c.Assert(ratio, Equals, 0.0)
	c.Assert(n, Equals, 0)

	data := model.CountyData{"County001, Texas": &model.CountyMetric{}}
	ratio, n = Coverage(data, features)
	c.Assert(ratio, Equals, 0.25)
	c.Assert(n, Equals, 1)

	ratio, _ = Coverage(data, nil)
	c.Assert(ratio, Equals, 0.0)
}

func (s *SimulatorSuite) TestFallbackBoundaries(c *C) {
	fc, err := FallbackBoundaries()
	c.Assert(err, IsNil)
	c.Assert(fc.Features, HasLen, 12)

	nc := 0
	for _, f := range fc.Features {
		if f.Properties.State == "37" {
			nc++
		}
		c.Assert(f.Geometry.Type, Equals, "Polygon")
		var ring [][][2]float64
		c.Assert(json.Unmarshal(f.Geometry.Coordinates, &ring), IsNil)
		c.Assert(ring[0], HasLen, 5)
		c.Assert(ring[0][0], Equals, ring[0][4])
	}
	c.Assert(nc, Equals, 7)

	data := model.CountyData{}
	positions := s.sim.Fallback(data)
	c.Assert(data, HasLen, 12)
	c.Assert(positions["Cook, Illinois"], Equals, model.LatLng{Lat: 41.8781, Lng: -87.6298})
	ratio, _ := Coverage(data, fc.Features)
	c.Assert(ratio, Equals, 1.0)
}

func (s *SimulatorSuite) TestStateFIPS(c *C) {
	c.Assert(StateFromFIPS("37"), Equals, "North Carolina")
	c.Assert(StateFromFIPS("72"), Equals, UnknownState)
	c.Assert(FIPSFromState("Texas"), Equals, "48")
	c.Assert(FIPSFromState("Atlantis"), Equals, "00")
}

func (s *SimulatorSuite) TestCreditProfiles(c *C) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	profiles := s.sim.CreditProfiles(now)
	c.Assert(profiles, HasLen, 10*CompaniesPerSubIndustry)

	again := New(42, model.AllClientTypes()).CreditProfiles(now)
	c.Assert(again, DeepEquals, profiles)

	for _, p := range profiles {
		c.Assert(p.RatingChangeProb >= 0 && p.RatingChangeProb <= 1, Equals, true)
		switch p.CreditRating {
		case "AAA", "AA+", "AA":
			c.Assert(p.FCR >= 3.0, Equals, true, Commentf("%s", p.Company))
		case "CCC+", "CCC", "CCC-":
			c.Assert(p.FCR <= 1.2, Equals, true, Commentf("%s", p.Company))
		}
		if p.CreditRating == "AAA" {
			c.Assert(p.PD, Equals, 0.0)
		}
	}
	c.Assert(profiles[0].Company, Equals, "Pharmaceuticals_1")
}
