package api

type Collection struct {
	Data  []interface{} `json:"data"`
	Meta  Metadata      `json:"meta"`
	Links Links         `json:"links"`
}

type Metadata struct {
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type Links struct {
	First    string `json:"first"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Last     string `json:"last"`
}

// TopPartnersQuery is bound from the query string of /api/v1/top-partners.
type TopPartnersQuery struct {
	Flow string `query:"flow" validate:"required,oneof=Import Export"`
	N    int    `query:"n" validate:"gte=1,lte=50"`
	Year int    `query:"year" validate:"omitempty,gte=1900,lte=2100"`
}

// YearQuery filters a table to one year when set.
type YearQuery struct {
	Year int `query:"year" validate:"omitempty,gte=1900,lte=2100"`
}
