package models

// Money holds the three converted figures for one currency.
type Money struct {
	Raw      float64 `json:"raw"`
	EVGraded float64 `json:"evGraded"`
	Fee      float64 `json:"fee"`
}

// FXRates is the EUR-based rate pair used for a quote's conversions.
type FXRates struct {
	Base string  `json:"base"`
	GBP  float64 `json:"GBP"`
	USD  float64 `json:"USD"`
}

// PriceQuote is the valuation result for a single card. Built fresh per
// request. FX and Converted are nil when exchange rates were unavailable;
// the raw and EV figures in the source currency are always present.
type PriceQuote struct {
	Source      string           `json:"source"`
	Raw         float64          `json:"raw"`
	Currency    string           `json:"currency"`
	EVGraded    float64          `json:"evGraded"`
	UpliftModel string           `json:"upliftModel"`
	Picked      CardRef          `json:"picked"`
	FX          *FXRates         `json:"fx,omitempty"`
	Converted   map[string]Money `json:"converted,omitempty"`
}
