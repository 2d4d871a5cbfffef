package model

// Event is a single frame pushed to a UI window
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// ReadyPayload tells a newly connected window which label it was registered under
type ReadyPayload struct {
	Window string `json:"window"`
}
