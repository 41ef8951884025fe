package web

type RoomSummary struct {
	Code         string `json:"code"`
	Phase        string `json:"phase"`
	Participants int    `json:"participants"`
}

type HomeData struct {
	Rooms         []RoomSummary
	MaxNameLength int
	Flash         string
}

type RoomPage struct {
	Code         string
	JoinURL      string
	RoundSeconds int
}
