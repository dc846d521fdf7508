package bigscreendomain

// Summary is the payload of GET /api/v1/leaderboard/summary.
type Summary struct {
	Tournaments []Tournament `json:"tournaments"`
	Games       []Machine    `json:"games"`
	TotalBoards int          `json:"total_boards,omitempty"`
}

// Machine is one arcade machine with its time-windowed leaderboards.
type Machine struct {
	ID             int64     `json:"id"`
	MachineName    string    `json:"machine_name"`
	MachineUID     string    `json:"machine_uid,omitempty"`
	IsActive       bool      `json:"is_active"`
	Windows        []Window  `json:"windows"`
	Champion       *ScoreRow `json:"champion,omitempty"`
	LastActivityAt string    `json:"last_activity_at,omitempty"`
	StartTime      string    `json:"start_time,omitempty"`
}

// DisplayName falls back to the machine UID and then to a generic label.
func (m Machine) DisplayName() string {
	switch {
	case m.MachineName != "":
		return m.MachineName
	case m.MachineUID != "":
		return m.MachineUID
	default:
		return "Game"
	}
}

// Window is a named time bucket (all-time, year, month, week, 24h) of one machine.
type Window struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Since       string     `json:"since,omitempty"`
	Leaderboard []ScoreRow `json:"leaderboard"`
}

// ScoreRow is a ranked player score. Rows arrive already ordered by rank.
type ScoreRow struct {
	PlayerID     int64  `json:"player_id,omitempty"`
	PlayerNumber int    `json:"player_number,omitempty"`
	Initials     string `json:"initials,omitempty"`
	ScreenName   string `json:"screen_name,omitempty"`
	Score        int64  `json:"score"`
	LastPlayed   string `json:"last_played,omitempty"`
	MachineName  string `json:"machine_name,omitempty"`
}

// ScoringProfile names the ranking rules a tournament uses.
type ScoringProfile struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// GameMode is an optional machine mode a tournament is played in.
type GameMode struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Tournament is a tournament board from the summary payload.
type Tournament struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug,omitempty"`
	Description    string          `json:"description,omitempty"`
	StartTime      string          `json:"start_time,omitempty"`
	EndTime        string          `json:"end_time,omitempty"`
	DisplayUntil   string          `json:"display_until,omitempty"`
	IsActive       bool            `json:"is_active"`
	ScoringProfile *ScoringProfile `json:"scoring_profile,omitempty"`
	GameMode       *GameMode       `json:"game_mode,omitempty"`
	Leaderboard    []ScoreRow      `json:"leaderboard"`
	LastActivityAt string          `json:"last_activity_at,omitempty"`
}

// LiveGame is a machine currently mid-session, from GET /api/v1/games/live.
type LiveGame struct {
	GameID         int64       `json:"game_id"`
	MachineID      int64       `json:"machine_id"`
	MachineUID     string      `json:"machine_uid,omitempty"`
	MachineName    string      `json:"machine_name,omitempty"`
	MachineIP      string      `json:"machine_ip,omitempty"`
	IsActive       bool        `json:"is_active"`
	SecondsElapsed int         `json:"seconds_elapsed"`
	Ball           int         `json:"ball"`
	PlayerUp       int         `json:"player_up"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
	Scores         []LiveScore `json:"scores"`
}

// LiveScore is one player's state within a live game.
type LiveScore struct {
	PlayerID         int64      `json:"player_id,omitempty"`
	PlayerNumber     int        `json:"player_number"`
	Initials         string     `json:"initials,omitempty"`
	ScreenName       string     `json:"screen_name,omitempty"`
	Score            int64      `json:"score"`
	TotalPlaySeconds int        `json:"total_play_seconds"`
	BallTimes        []BallTime `json:"ball_times"`
	IsPlayerUp       bool       `json:"is_player_up"`
}

// BallTime is the per-ball play time and score of one player.
type BallTime struct {
	Ball      int   `json:"ball"`
	Seconds   int   `json:"seconds"`
	Score     int64 `json:"score"`
	IsCurrent bool  `json:"is_current"`
}
