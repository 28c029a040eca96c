package models

import "time"

// DaySchedule holds one weekday's extracted hours.
type DaySchedule struct {
	Summary   string `json:"summary"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

// StagedWiFi is a provisional WiFi extraction awaiting confirmation.
type StagedWiFi struct {
	SessionUID    string    `json:"session_uid"`
	VenueWiFi     string    `json:"venue_wifi"` // "{venue}#{network}#ALL"
	Venue         string    `json:"venue"`
	WiFiNetwork   string    `json:"wifi_network"`
	WiFiPassword  string    `json:"wifi_password"`
	ContentURL    string    `json:"content_url"`
	StageDatetime time.Time `json:"stage_datetime"`
}

// StagedHours is a provisional hours-of-operation extraction. ScheduleType is
// "Base" when no effective date range is present, "Temporary" otherwise.
type StagedHours struct {
	SessionUID         string      `json:"session_uid"`
	VenueHours         string      `json:"venue_hours_of_operation"` // "BASE#{venue}" or "TEMP#{date}#{venue}"
	Venue              string      `json:"venue"`
	ScheduleType       string      `json:"hours_of_operation_type"`
	Monday             DaySchedule `json:"monday"`
	Tuesday            DaySchedule `json:"tuesday"`
	Wednesday          DaySchedule `json:"wednesday"`
	Thursday           DaySchedule `json:"thursday"`
	Friday             DaySchedule `json:"friday"`
	Saturday           DaySchedule `json:"saturday"`
	Sunday             DaySchedule `json:"sunday"`
	EffectiveStartDate string      `json:"schedule_effective_start_date"`
	EffectiveEndDate   string      `json:"schedule_effective_end_date"`
	ContentURL         string      `json:"content_url"`
	StageDatetime      time.Time   `json:"stage_datetime"`
}

// StagedProductOffering is a provisional product-offering extraction.
type StagedProductOffering struct {
	SessionUID    string    `json:"session_uid"`
	IsNewBusiness bool      `json:"is_new_business"`
	BusinessName  string    `json:"business_name"`
	BusinessType  string    `json:"business_type"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	FullAddress   string    `json:"full_address_string"`
	Venue         string    `json:"venue"`
	ProductList   string    `json:"product_list"`
	ContentURL    string    `json:"content_url"`
	StageDatetime time.Time `json:"stage_datetime"`
}

// AnalyzerOutputItem is one row of a list-valued analyzer result, tagged with
// its provenance URL and pull timestamp.
type AnalyzerOutputItem struct {
	RawItemJSON  string    `json:"raw_item_json"`
	Source       string    `json:"source"`
	PullDatetime time.Time `json:"pull_datetime"`
}
