package dto

type GroupListResponse struct {
	Groups []string `json:"groups"`
}

type SlotListResponse struct {
	Group string   `json:"group"`
	Slots []string `json:"slots"`
}
