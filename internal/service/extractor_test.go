package service

import (
	"reflect"
	"testing"

	"agribot/internal/dataset"
)

const testCropCSV = `Crop Nutrient Requirements
crop,N(kg/ha)
Rice,100-120
Wheat,120
Basmati Rice,90
Maize,not-a-number
`

const testDistrictCSV = `District Soil Survey
district,state,Avg. soil N(kg/ha)
Ludhiana,Punjab,150
Hisar,Haryana,95.5
Aurangabad,Maharashtra,110
Aurangabad,Bihar,120
`

func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	store := dataset.NewStore("no-such-crops.csv", "no-such-districts.csv", 3)
	store.SetCropUpload("crops.csv", []byte(testCropCSV))
	store.SetDistrictUpload("districts.csv", []byte(testDistrictCSV))
	return store
}

func TestExtractor_Extract(t *testing.T) {
	extractor := NewExtractor(newTestStore(t))

	tests := []struct {
		name         string
		text         string
		wantCrop     string
		wantDistrict string
		wantState    string
	}{
		{
			name:         "crop and district, state auto-filled",
			text:         "Plan for Rice in Ludhiana",
			wantCrop:     "rice",
			wantDistrict: "ludhiana",
			wantState:    "punjab",
		},
		{
			name:         "all three explicit",
			text:         "wheat in hisar, haryana please",
			wantCrop:     "wheat",
			wantDistrict: "hisar",
			wantState:    "haryana",
		},
		{
			name:     "crop only",
			text:     "how much urea for wheat?",
			wantCrop: "wheat",
		},
		{
			name:         "district only",
			text:         "tell me about Ludhiana",
			wantDistrict: "ludhiana",
			wantState:    "punjab",
		},
		{
			name: "no entities",
			text: "hello there",
		},
		{
			name:     "whole word only, no substring hit",
			text:     "my ricecrop is ready",
			wantCrop: "",
		},
		{
			name:         "longest crop name wins",
			text:         "basmati rice in ludhiana",
			wantCrop:     "basmati rice",
			wantDistrict: "ludhiana",
			wantState:    "punjab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(tt.text)
			if got.Crop != tt.wantCrop {
				t.Errorf("Crop = %q, want %q", got.Crop, tt.wantCrop)
			}
			if got.District != tt.wantDistrict {
				t.Errorf("District = %q, want %q", got.District, tt.wantDistrict)
			}
			if got.State != tt.wantState {
				t.Errorf("State = %q, want %q", got.State, tt.wantState)
			}
		})
	}
}

func TestExtractor_AmbiguousDistrict(t *testing.T) {
	extractor := NewExtractor(newTestStore(t))

	// Aurangabad exists in two states; no auto-fill, candidates surfaced
	got := extractor.Extract("rice in aurangabad")
	if got.State != "" {
		t.Errorf("Expected no auto-filled state, got %q", got.State)
	}
	if !reflect.DeepEqual(got.CandidateStates, []string{"bihar", "maharashtra"}) {
		t.Errorf("CandidateStates = %v, want [bihar maharashtra]", got.CandidateStates)
	}

	// An explicit state suppresses the candidate list
	got = extractor.Extract("rice in aurangabad, bihar")
	if got.State != "bihar" {
		t.Errorf("Expected explicit state 'bihar', got %q", got.State)
	}
	if len(got.CandidateStates) != 0 {
		t.Errorf("Expected no candidates with explicit state, got %v", got.CandidateStates)
	}
}

func TestExtractor_Idempotent(t *testing.T) {
	extractor := NewExtractor(newTestStore(t))

	first := extractor.Extract("Plan for Rice in Ludhiana")
	second := extractor.Extract("Plan for Rice in Ludhiana")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extraction not idempotent: %+v vs %+v", first, second)
	}
}

func TestExtractor_EmptyWhenNotLoaded(t *testing.T) {
	store := dataset.NewStore("no-such-crops.csv", "no-such-districts.csv", 3)
	extractor := NewExtractor(store)

	got := extractor.Extract("Plan for Rice in Ludhiana")
	if got.Crop != "" || got.District != "" || got.State != "" {
		t.Errorf("Expected empty result without loaded tables, got %+v", got)
	}
}
