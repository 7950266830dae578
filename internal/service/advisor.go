package service

import (
	"fmt"
	"strconv"
	"strings"

	"agribot/internal/dataset"
	"agribot/internal/model"
	"agribot/internal/utils"
)

// Urea is 46% elemental nitrogen by mass. Domain fact, not configurable.
const ureaNitrogenFraction = 0.46

// CropNotFoundError indicates a crop has no nutrient requirement row
type CropNotFoundError struct {
	Crop string
}

func (e *CropNotFoundError) Error() string {
	return fmt.Sprintf("no nutrient requirements for crop %q", e.Crop)
}

// SoilDataNotFoundError indicates a (district, state) pair has no soil row
type SoilDataNotFoundError struct {
	District string
	State    string
}

func (e *SoilDataNotFoundError) Error() string {
	return fmt.Sprintf("no soil data for district %q in state %q", e.District, e.State)
}

// Advisor resolves nitrogen figures from the loaded tables and turns them
// into a urea reduction recommendation.
type Advisor struct {
	store *dataset.Store
}

// NewAdvisor creates a new advisor
func NewAdvisor(store *dataset.Store) *Advisor {
	return &Advisor{store: store}
}

// CropNitrogenRequirement returns the nitrogen requirement in kg/ha for a
// normalized crop key. Range values like "100-120" collapse to their
// midpoint. An absent or unparsable value is reported as not found.
func (a *Advisor) CropNitrogenRequirement(cropKey string) (float64, error) {
	crops, _, err := a.store.Tables()
	if err != nil {
		return 0, err
	}

	for _, row := range crops.Rows {
		if row.CropKey != cropKey {
			continue
		}
		value, err := parseNitrogenValue(row.Nitrogen)
		if err != nil {
			return 0, &CropNotFoundError{Crop: cropKey}
		}
		return value, nil
	}

	return 0, &CropNotFoundError{Crop: cropKey}
}

// SoilNitrogen returns the average soil nitrogen in kg/ha for a normalized
// (district, state) key pair.
func (a *Advisor) SoilNitrogen(districtKey, stateKey string) (float64, error) {
	_, districts, err := a.store.Tables()
	if err != nil {
		return 0, err
	}

	for _, row := range districts.Rows {
		if row.DistrictKey == districtKey && row.StateKey == stateKey {
			return row.SoilNitrogen, nil
		}
	}

	return 0, &SoilDataNotFoundError{District: districtKey, State: stateKey}
}

// Recommend computes the excess nitrogen and potential urea reduction for a
// crop grown in a district/state, and renders the four-part report.
func (a *Advisor) Recommend(districtKey, stateKey, cropKey string) (*model.Report, error) {
	requirement, err := a.CropNitrogenRequirement(cropKey)
	if err != nil {
		return nil, err
	}

	soil, err := a.SoilNitrogen(districtKey, stateKey)
	if err != nil {
		return nil, err
	}

	excess := soil - requirement
	reduction := excess / ureaNitrogenFraction

	report := &model.Report{
		Crop:            utils.TitleCase(cropKey),
		District:        utils.TitleCase(districtKey),
		State:           utils.TitleCase(stateKey),
		CropRequirement: requirement,
		SoilNitrogen:    soil,
		ExcessNitrogen:  excess,
		UreaReduction:   reduction,
	}
	report.Text = renderReport(report)

	return report, nil
}

// renderReport renders the fixed four-part report: requirement, soil
// status, excess, recommendation.
func renderReport(r *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### 🌾 Analysis for %s in %s, %s\n\n", r.Crop, r.District, r.State)
	fmt.Fprintf(&b, "**1. Crop Requirement:** %s needs approx **%.1f kg/ha** of Nitrogen.\n", r.Crop, r.CropRequirement)
	fmt.Fprintf(&b, "**2. Soil Status:** Your soil already has **%.1f kg/ha** of Nitrogen.\n", r.SoilNitrogen)
	fmt.Fprintf(&b, "**3. Excess Nitrogen:** You have an excess of **%.1f kg/ha**.\n\n", r.ExcessNitrogen)
	fmt.Fprintf(&b, "#### 📉 Recommendation:\n")
	fmt.Fprintf(&b, "You can potentially reduce Urea application by **%.2f kg/ha** while still meeting the crop's needs.", r.UreaReduction)
	return b.String()
}

// parseNitrogenValue parses a requirement that is either a plain number or
// a "low-high" range, which collapses to its arithmetic mean.
func parseNitrogenValue(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if low, high, ok := strings.Cut(value, "-"); ok {
		lowVal, err := strconv.ParseFloat(strings.TrimSpace(low), 64)
		if err != nil {
			return 0, err
		}
		highVal, err := strconv.ParseFloat(strings.TrimSpace(high), 64)
		if err != nil {
			return 0, err
		}
		return (lowVal + highVal) / 2, nil
	}
	return strconv.ParseFloat(value, 64)
}
