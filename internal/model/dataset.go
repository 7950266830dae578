package model

// CropRequirement represents one row of the crop requirements table
type CropRequirement struct {
	Crop     string `json:"crop"`
	CropKey  string `json:"-"` // lowercase+trimmed lookup key
	Nitrogen string `json:"n_kg_ha"` // raw value, single number or "low-high" range
}

// DistrictSoil represents one row of the district soil table
type DistrictSoil struct {
	District     string  `json:"district"`
	State        string  `json:"state"`
	DistrictKey  string  `json:"-"` // lowercase+trimmed lookup key
	StateKey     string  `json:"-"` // lowercase+trimmed lookup key
	SoilNitrogen float64 `json:"avg_soil_n_kg_ha"`
}

// CropTable holds the loaded crop requirements dataset
type CropTable struct {
	Rows []CropRequirement
}

// DistrictTable holds the loaded district soil dataset
type DistrictTable struct {
	Rows []DistrictSoil
	// StatesByDistrict maps a district key to the distinct state keys it
	// appears under. District names are not unique across states.
	StatesByDistrict map[string][]string
}

// TableStatus describes one loaded table for the status surface
type TableStatus struct {
	Loaded  bool                `json:"loaded"`
	Rows    int                 `json:"rows"`
	Preview []map[string]string `json:"preview,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// DatasetStatus is the operator-facing view of both tables
type DatasetStatus struct {
	Crops     TableStatus `json:"crops"`
	Districts TableStatus `json:"districts"`
}
