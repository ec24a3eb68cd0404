package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerID        string     `json:"player_id"`
	GameParams      GameParams `json:"game_params"`
}

type GameParams struct {
	Seed            int64   `json:"seed"`
	CellSize        float64 `json:"cell_size"`
	ProximityRadius int     `json:"proximity_radius"`
	CarrySlots      int     `json:"carry_slots"`
	WinThreshold    int     `json:"win_threshold"`
	TickRateHz      int     `json:"tick_rate_hz"`
}

// MOVE (client -> server): continuous player position.
type MoveMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
}

// VIEWPORT (client -> server): continuous viewport bounds.
type ViewportMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	South           float64 `json:"south"`
	North           float64 `json:"north"`
	West            float64 `json:"west"`
	East            float64 `json:"east"`
}

// Act verbs.
const (
	ActPickup = "PICKUP"
	ActPlace  = "PLACE"
)

// ACT (client -> server): a pickup/place request targeting one cell.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Verb            string `json:"verb"`
	Cell            [2]int `json:"cell"`
}

// RESULT (server -> client): outcome of one ACT.
type ResultMsg struct {
	Type    string `json:"type"`
	Ref     string `json:"ref"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// Populated for E_TOO_FAR so the client can explain the rejection.
	Distance int `json:"distance,omitempty"`
	Required int `json:"required,omitempty"`
}

// STATE (server -> client): authoritative view of everything visible.
type StateMsg struct {
	Type       string      `json:"type"`
	Tick       uint64      `json:"tick"`
	PlayerCell [2]int      `json:"player_cell"`
	Cells      []CellState `json:"cells"`
	Carrying   []int       `json:"carrying"`
	Won        bool        `json:"won"`
}

type CellState struct {
	Cell         [2]int `json:"cell"`
	HasCache     bool   `json:"has_cache"`
	Value        int    `json:"value,omitempty"`
	Interactable bool   `json:"interactable"`
}
