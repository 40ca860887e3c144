package models

// DashboardEntry is a pledge together with its value as of the dashboard read
type DashboardEntry struct {
	Pledge         Pledge  `json:"pledge"`
	CurrentValuePi float64 `json:"current_value_pi"`
	Months         int     `json:"months"`
}

// ChartData is the three-bar summary shown alongside the dashboard
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Dashboard is the per-user read-only projection of the ledger
type Dashboard struct {
	Username string `json:"username"`

	ProvidedPi  float64 `json:"provided_pi"`
	ProvidedPHP float64 `json:"provided_php"`

	RequestedPi  float64 `json:"requested_pi"`
	RequestedPHP float64 `json:"requested_php"`

	// Accrued yield over provided pledges only. CompoundPHP uses the quote
	// current at read time, not the frozen submission price.
	CompoundPi  float64 `json:"compound_pi"`
	CompoundPHP float64 `json:"compound_php"`

	Pending bool             `json:"pending"`
	Entries []DashboardEntry `json:"entries"`
	Chart   ChartData        `json:"chart"`
	Price   PriceQuote       `json:"price"`
}
