package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"agribot/internal/model"
)

// Expected column names, matched after trimming surrounding whitespace.
// Both files carry a title/metadata line above the real header, so the
// header is always on the second row.
const (
	colCrop     = "crop"
	colCropN    = "N(kg/ha)"
	colDistrict = "district"
	colState    = "state"
	colSoilN    = "Avg. soil N(kg/ha)"
)

// ErrSourceMissing indicates an expected default file is absent. This is the
// soft failure: the caller should prompt for an upload rather than surface a
// parse error.
var ErrSourceMissing = errors.New("dataset source missing")

// ParseError indicates a source was supplied but could not be parsed
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.Source, e.Reason)
}

// ParseCropTable parses the crop requirements CSV
func ParseCropTable(source string, data []byte) (*model.CropTable, error) {
	records, header, err := readTable(source, data)
	if err != nil {
		return nil, err
	}

	cropIdx, err := columnIndex(source, header, colCrop)
	if err != nil {
		return nil, err
	}
	nIdx, err := columnIndex(source, header, colCropN)
	if err != nil {
		return nil, err
	}

	table := &model.CropTable{}
	for _, rec := range records {
		if cropIdx >= len(rec) || nIdx >= len(rec) {
			continue
		}
		crop := strings.TrimSpace(rec[cropIdx])
		if crop == "" {
			continue
		}
		table.Rows = append(table.Rows, model.CropRequirement{
			Crop:     crop,
			CropKey:  strings.ToLower(crop),
			Nitrogen: strings.TrimSpace(rec[nIdx]),
		})
	}

	return table, nil
}

// ParseDistrictTable parses the district soil CSV and builds the
// district→states index used for state auto-fill.
func ParseDistrictTable(source string, data []byte) (*model.DistrictTable, error) {
	records, header, err := readTable(source, data)
	if err != nil {
		return nil, err
	}

	distIdx, err := columnIndex(source, header, colDistrict)
	if err != nil {
		return nil, err
	}
	stateIdx, err := columnIndex(source, header, colState)
	if err != nil {
		return nil, err
	}
	soilIdx, err := columnIndex(source, header, colSoilN)
	if err != nil {
		return nil, err
	}

	table := &model.DistrictTable{
		StatesByDistrict: make(map[string][]string),
	}
	seen := make(map[string]map[string]bool)

	for i, rec := range records {
		if distIdx >= len(rec) || stateIdx >= len(rec) || soilIdx >= len(rec) {
			continue
		}
		district := strings.TrimSpace(rec[distIdx])
		state := strings.TrimSpace(rec[stateIdx])
		if district == "" || state == "" {
			continue
		}
		soil, err := strconv.ParseFloat(strings.TrimSpace(rec[soilIdx]), 64)
		if err != nil {
			return nil, &ParseError{
				Source: source,
				Reason: fmt.Sprintf("row %d: invalid soil nitrogen value %q", i+3, rec[soilIdx]),
			}
		}

		row := model.DistrictSoil{
			District:     district,
			State:        state,
			DistrictKey:  strings.ToLower(district),
			StateKey:     strings.ToLower(state),
			SoilNitrogen: soil,
		}
		table.Rows = append(table.Rows, row)

		if seen[row.DistrictKey] == nil {
			seen[row.DistrictKey] = make(map[string]bool)
		}
		seen[row.DistrictKey][row.StateKey] = true
	}

	for district, states := range seen {
		for state := range states {
			table.StatesByDistrict[district] = append(table.StatesByDistrict[district], state)
		}
		sort.Strings(table.StatesByDistrict[district])
	}

	return table, nil
}

// readTable parses delimited text, skips the title row and returns the
// trimmed header plus the data records.
func readTable(source string, data []byte) ([][]string, []string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // rows may be ragged
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &ParseError{Source: source, Reason: err.Error()}
	}
	if len(rows) < 2 {
		return nil, nil, &ParseError{Source: source, Reason: "expected a title row followed by a header row"}
	}

	header := make([]string, len(rows[1]))
	for i, cell := range rows[1] {
		header[i] = strings.TrimSpace(cell)
	}

	return rows[2:], header, nil
}

// columnIndex finds a required column in the header
func columnIndex(source string, header []string, name string) (int, error) {
	for i, cell := range header {
		if cell == name {
			return i, nil
		}
	}
	return 0, &ParseError{Source: source, Reason: fmt.Sprintf("missing expected column %q", name)}
}
