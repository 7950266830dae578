package service

import (
	"strings"

	"agribot/internal/dataset"
	"agribot/internal/model"
	"agribot/internal/utils"
)

// Extractor finds crop, district and state mentions in free-form text by
// scanning the vocabularies of the loaded tables.
type Extractor struct {
	store *dataset.Store
}

// NewExtractor creates a new entity extractor
func NewExtractor(store *dataset.Store) *Extractor {
	return &Extractor{store: store}
}

// Extract scans text for known crop, district and state names. Matching is
// whole-word and case-insensitive, first hit per category. If a district is
// found without a state and the district exists in exactly one state, the
// state is auto-filled; if it exists in several, the candidates are returned
// for the caller to surface. Returns an empty result if the tables are not
// loaded.
func (e *Extractor) Extract(text string) *model.ExtractedEntities {
	crops, districts, err := e.store.Tables()
	if err != nil {
		return &model.ExtractedEntities{}
	}

	text = strings.ToLower(text)
	found := &model.ExtractedEntities{
		Crop:     utils.FirstWholeWordMatch(text, cropVocabulary(crops)),
		District: utils.FirstWholeWordMatch(text, districtVocabulary(districts)),
		State:    utils.FirstWholeWordMatch(text, stateVocabulary(districts)),
	}

	if found.District != "" && found.State == "" {
		states := districts.StatesByDistrict[found.District]
		switch {
		case len(states) == 1:
			found.State = states[0]
		case len(states) > 1:
			found.CandidateStates = states
		}
	}

	return found
}

func cropVocabulary(table *model.CropTable) []string {
	keys := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		keys = append(keys, row.CropKey)
	}
	return utils.SortVocabulary(keys)
}

func districtVocabulary(table *model.DistrictTable) []string {
	keys := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		keys = append(keys, row.DistrictKey)
	}
	return utils.SortVocabulary(keys)
}

func stateVocabulary(table *model.DistrictTable) []string {
	keys := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		keys = append(keys, row.StateKey)
	}
	return utils.SortVocabulary(keys)
}
