package models

// Address is a structured postal address from geocoding.
type Address struct {
	Line1               string `json:"address_line_1"`
	Line2               string `json:"address_line_2"`
	City                string `json:"city"`
	StateOrProvinceCode string `json:"state_or_province_code"`
	CountryCode         string `json:"country_code"`
	PostalCode          string `json:"postal_code"`
	FullAddress         string `json:"full_address_string"`
}

// AnalyzerResult is the parsed output of one analyzer run: scalar fields for
// object-shaped analyzers, items for list-shaped ones.
type AnalyzerResult struct {
	Fields map[string]any       `json:"fields,omitempty"`
	Items  []AnalyzerOutputItem `json:"items,omitempty"`
}
