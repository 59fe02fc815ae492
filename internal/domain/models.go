package domain

import "time"

// ReportRequest is the input tuple of a single feasibility estimate.
type ReportRequest struct {
	PropertyType string  `json:"property_type" yaml:"property_type"`
	District     string  `json:"district" yaml:"district"`
	LandArea     float64 `json:"land_area" yaml:"land_area"`
	NumFloors    int     `json:"num_floors" yaml:"num_floors"`
}

type InvestmentReport struct {
	Title          string         `json:"title"`
	Introduction   string         `json:"introduction"`
	PropertyType   string         `json:"property_type"`
	District       string         `json:"district"`
	NumFloors      int            `json:"num_floors"`
	RatiosUsed     string         `json:"ratios_used"`
	Ratios         RatioSet       `json:"ratios"`
	ProjectDetails ProjectDetails `json:"project_details"`
	Costs          CostSection    `json:"costs"`
	Revenue        RevenueSection `json:"revenue"`
	Figures        Figures        `json:"figures"`
	Supplementary  *Supplementary `json:"supplementary,omitempty"`
	Notes          []string       `json:"notes,omitempty"`
}

type RatioSet struct {
	GroundFloor   float64 `json:"ground_floor"`
	RepeatedFloor float64 `json:"repeated_floor"`
	TopFloor      float64 `json:"top_floor"`
}

type ProjectDetails struct {
	Location           string `json:"location"`
	LandArea           string `json:"land_area"`
	EffectiveBuildArea string `json:"effective_build_area"`
}

type CostSection struct {
	LandCost         string `json:"land_cost"`
	ConstructionCost string `json:"construction_cost"`
	TotalInvestment  string `json:"total_investment"`
}

type RevenueSection struct {
	SaleRevenue   string `json:"sale_revenue"`
	GrossProfit   string `json:"gross_profit"`
	GrossMargin   string `json:"gross_margin"`
	AnnualRent    string `json:"annual_rent"`
	NetAnnualRent string `json:"net_annual_rent"`
	RentalROI     string `json:"rental_roi"`
}

// Figures carries every computed quantity as a raw number.
type Figures struct {
	LandArea           float64 `json:"land_area"`
	EffectiveBuildArea float64 `json:"effective_build_area"`
	BasePricePerSqm    float64 `json:"base_price_per_sqm"`
	Premium            float64 `json:"premium"`
	LandCost           float64 `json:"land_cost"`
	ConstructionCost   float64 `json:"construction_cost"`
	AdditionalCosts    float64 `json:"additional_costs"`
	TotalInvestment    float64 `json:"total_investment"`
	SalePricePerSqm    float64 `json:"sale_price_per_sqm"`
	TotalRevenue       float64 `json:"total_revenue"`
	GrossProfit        float64 `json:"gross_profit"`
	GrossMargin        float64 `json:"gross_margin"`
	AnnualRentPerSqm   float64 `json:"annual_rent_per_sqm"`
	TotalAnnualRent    float64 `json:"total_annual_rent"`
	OperatingExpenses  float64 `json:"operating_expenses"`
	NetAnnualRent      float64 `json:"net_annual_rent"`
	RentalROI          float64 `json:"rental_roi"`
}

// Supplementary holds the property-type specific part of a report.
type Supplementary struct {
	ProjectKind        string         `json:"project_kind"`
	GroundFloorRatio   string         `json:"ground_floor_ratio"`
	RepeatedFloorRatio string         `json:"repeated_floor_ratio"`
	TopFloorRatio      string         `json:"top_floor_ratio"`
	Villas             *VillasDetails `json:"villas,omitempty"`
}

type VillasDetails struct {
	BuildableLandRatio      string          `json:"buildable_land_ratio"`
	BuildableLandArea       string          `json:"buildable_land_area"`
	VillaFootprint          string          `json:"villa_footprint"`
	EffectiveBuildArea      string          `json:"effective_build_area"`
	VillaCount              int             `json:"villa_count"`
	LandPurchasePricePerSqm string          `json:"land_purchase_price_per_sqm"`
	LandCost                string          `json:"land_cost"`
	ConstructionCostPerSqm  string          `json:"construction_cost_per_sqm"`
	ConstructionCost        string          `json:"construction_cost"`
	AdditionalCosts         AdditionalCosts `json:"additional_costs"`
	ConstructionTotal       string          `json:"construction_total"`
}

type AdditionalCosts struct {
	Design          float64 `json:"design" yaml:"design"`
	LegalAndAdmin   float64 `json:"legal_and_admin" yaml:"legal_and_admin"`
	SiteDevelopment float64 `json:"site_development" yaml:"site_development"`
}

func (a AdditionalCosts) Total() float64 {
	return a.Design + a.LegalAndAdmin + a.SiteDevelopment
}

// StoredReport is a report persisted in the history store.
type StoredReport struct {
	ID        string           `json:"id"`
	Request   ReportRequest    `json:"request"`
	Report    InvestmentReport `json:"report"`
	CreatedAt time.Time        `json:"created_at"`
}

// DatasetRow is one training sample: inputs and the five model targets.
type DatasetRow struct {
	PropertyType    string  `json:"property_type"`
	District        string  `json:"district"`
	LandArea        float64 `json:"land_area"`
	NumFloors       int     `json:"num_floors"`
	TotalInvestment float64 `json:"total_investment"`
	TotalRevenue    float64 `json:"total_revenue"`
	GrossProfit     float64 `json:"gross_profit"`
	AnnualRent      float64 `json:"annual_rent"`
	ROI             float64 `json:"roi"`
}

func (r DatasetRow) Request() ReportRequest {
	return ReportRequest{
		PropertyType: r.PropertyType,
		District:     r.District,
		LandArea:     r.LandArea,
		NumFloors:    r.NumFloors,
	}
}

// Prediction holds model estimates of the dataset targets.
type Prediction struct {
	TotalInvestment float64 `json:"total_investment"`
	TotalRevenue    float64 `json:"total_revenue"`
	GrossProfit     float64 `json:"gross_profit"`
	AnnualRent      float64 `json:"annual_rent"`
	ROI             float64 `json:"roi"`
}

// Comparison sets the engine figures beside a model prediction. DifferencePct is
// (model - formula) / formula * 100, and 0 where the formula value is 0.
type Comparison struct {
	Request       ReportRequest `json:"request"`
	Formula       Prediction    `json:"formula"`
	Model         Prediction    `json:"model"`
	Difference    Prediction    `json:"difference"`
	DifferencePct Prediction    `json:"difference_pct"`

	MeanAbsDifferencePct float64      `json:"mean_abs_difference_pct"`
	Assessments          []Assessment `json:"assessments"`
}

// Assessment grades how far one model target is from the formula value.
type Assessment struct {
	Target        string  `json:"target"`
	AbsDifference float64 `json:"abs_difference_pct"`
	Level         string  `json:"level"`
	Message       string  `json:"message"`
}

// Targets projects the figures onto the five dataset/model targets.
func (f Figures) Targets() Prediction {
	return Prediction{
		TotalInvestment: f.TotalInvestment,
		TotalRevenue:    f.TotalRevenue,
		GrossProfit:     f.GrossProfit,
		AnnualRent:      f.TotalAnnualRent,
		ROI:             f.RentalROI,
	}
}

// MatchRequest describes a plot and the investor's hard limits. An empty
// PropertyTypes list means every supported type.
type MatchRequest struct {
	District      string   `json:"district"`
	LandArea      float64  `json:"land_area"`
	NumFloors     int      `json:"num_floors"`
	PropertyTypes []string `json:"property_types,omitempty"`
	BudgetMax     float64  `json:"budget_max,omitempty"`
	MinRentalROI  float64  `json:"min_rental_roi,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

type ScoreReason struct {
	Type    string  `json:"type"`
	Message string  `json:"message"`
	Impact  float64 `json:"impact"`
}

// MatchCandidate is one property type scored for the plot (0..100).
type MatchCandidate struct {
	PropertyType string        `json:"property_type"`
	Score        float64       `json:"score"`
	Figures      Figures       `json:"figures"`
	Reasons      []ScoreReason `json:"reasons"`
}

type MatchExclusion struct {
	PropertyType string `json:"property_type"`
	Reason       string `json:"reason"`
}

type MatchResult struct {
	Request    MatchRequest     `json:"request"`
	Candidates []MatchCandidate `json:"candidates"`
	Excluded   []MatchExclusion `json:"excluded,omitempty"`
}
