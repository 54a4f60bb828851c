package model

// Holiday is one calendar entry for a country. A nil Year means the
// holiday recurs every year; a set Year applies to that year only.
type Holiday struct {
	ID          string `json:"id"`
	CountryCode string `json:"country_code"`
	Name        string `json:"name"`
	Day         int    `json:"day"`
	Month       int    `json:"month"`
	Year        *int   `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
	Ctime       int64  `json:"ctime"`
}

type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Ctime    int64  `json:"ctime"`
}

// UKCountries maps the supported jurisdiction codes to display names.
var UKCountries = map[string]string{
	"GB-ENG": "England",
	"GB-WLS": "Wales",
	"GB-SCT": "Scotland",
	"GB-NIR": "Northern Ireland",
}
