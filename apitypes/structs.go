package apitypes

// Shared command payloads used by both the daemon and clients.

// Result is the single line written for every command.
type Result struct {
	Ok  *string `json:"Ok,omitempty"`
	Err *string `json:"Err,omitempty"`
}

type Slot struct {
	Index         int     `json:"index"`
	Type          string  `json:"type"`
	Device        *uint32 `json:"device,omitempty"`
	Delay         uint8   `json:"delay"`
	LeftDeadzone  float32 `json:"left_deadzone"`
	RightDeadzone float32 `json:"right_deadzone"`
	Buttons       uint32  `json:"buttons"`
	LeftX         int16   `json:"left_x"`
	LeftY         int16   `json:"left_y"`
	RightX        int16   `json:"right_x"`
	RightY        int16   `json:"right_y"`
}

// SlotsResponse is the body of a GetSlots result, JSON-encoded inside Ok.
type SlotsResponse struct {
	Anarchy   bool     `json:"anarchy"`
	Connected bool     `json:"connected"`
	IPs       []string `json:"ips"`
	Pending   int      `json:"pending"`
	Slots     []Slot   `json:"slots"`
}
