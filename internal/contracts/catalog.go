package contracts

// Sector is a FRED sector; the backend only knows names, so ID == Name
type Sector struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IndustryModel is one entry of the Industry model menu
type IndustryModel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
}

// AllModelsID is the pseudo model that means "no model filter"
const AllModelsID = "all"

// SearchResult is a search hit from either backend.
// FRED hits carry SeriesDescription and SectorID; Industry hits carry Name.
type SearchResult struct {
	SeriesID          RawID  `json:"series_id"`
	SeriesDescription string `json:"series_description,omitempty"`
	Name              string `json:"name,omitempty"`
	SectorID          string `json:"sector_id,omitempty"`
	Frequency         string `json:"frequency,omitempty"`
}

// Label is the text shown in result lists
func (r SearchResult) Label() string {
	switch {
	case r.SeriesDescription != "":
		return r.SeriesDescription
	case r.Name != "":
		return r.Name
	default:
		return "Unnamed Series"
	}
}

// ID classifies the hit's series_id like any other series ID
func (r SearchResult) ID() (SeriesID, error) {
	return ParseSeriesID(string(r.SeriesID))
}

// ModelSeries is the series listing of one Industry model
type ModelSeries struct {
	Name   string         `json:"model_name"`
	ID     string         `json:"model_id"`
	Series []SearchResult `json:"series"`
}
