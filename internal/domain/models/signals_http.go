package models

// Requests for the dashboard HTTP endpoints.

type DataRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}

type TickerRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,min=1,max=6"`
}
