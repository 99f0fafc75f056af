package models

// Requests for the analysis HTTP endpoints and the Kafka request topic.

type AnalyzeRequest struct {
	Ticker       string `query:"ticker" json:"ticker" validate:"required,max=10"`
	LookbackDays int    `query:"lookback_days" json:"lookback_days" validate:"omitempty,gte=90,lte=3650"`
	Refresh      bool   `query:"refresh" json:"refresh"`
	AsOf         string `query:"as_of" json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

type BatchRequest struct {
	Tickers      []string `json:"tickers" validate:"required,min=1,max=50,dive,required,max=10"`
	LookbackDays int      `json:"lookback_days" validate:"omitempty,gte=90,lte=3650"`
	Refresh      bool     `json:"refresh"`
}

type CacheClearRequest struct {
	Kind string `query:"kind" json:"kind" default:"all" validate:"oneof=series prices beta all"`
}
