package models

type PeriodStats struct {
	Total     int64   `json:"total"`
	ThisMonth int64   `json:"thisMonth"`
	LastMonth int64   `json:"lastMonth"`
	Growth    float64 `json:"growth"`
}

type PropertyDashboard struct {
	PeriodStats
	Active int64 `json:"active"`
}

type EnquiryDashboard struct {
	PeriodStats
	Pending int64 `json:"pending"`
	Handled int64 `json:"handled"`
}

type Insights struct {
	PopularCity string  `json:"popularCity"`
	AvgPrice    float64 `json:"avgPrice"`
	PopularBHK  *int    `json:"popularBHK"`
}

type DashboardStats struct {
	Properties PropertyDashboard `json:"properties"`
	Enquiries  EnquiryDashboard  `json:"enquiries"`
	Insights   Insights          `json:"insights"`
}
