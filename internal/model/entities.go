package model

// ExtractedEntities represents the crop/district/state mentions found in a
// single user message. Fields hold normalized lookup keys; empty means the
// entity was not mentioned. Produced fresh per turn, never persisted.
type ExtractedEntities struct {
	Crop     string `json:"crop,omitempty"`
	District string `json:"district,omitempty"`
	State    string `json:"state,omitempty"`
	// CandidateStates lists the possible states for District when the
	// district exists in more than one state and none was mentioned.
	CandidateStates []string `json:"candidate_states,omitempty"`
}

// Complete reports whether all three entities needed for a recommendation
// are present.
func (e *ExtractedEntities) Complete() bool {
	return e.Crop != "" && e.District != "" && e.State != ""
}
