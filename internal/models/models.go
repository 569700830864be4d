package models

// UnknownReportID is used when the export carries no recognizable report id.
const UnknownReportID = "Unknown Report ID"

// Row is one table row from the export: ordered cell text, column position
// is the only contract. Row 0 of every category is the header row.
type Row []string

// StatCategory is a named subsection of a game holding match tables.
type StatCategory struct {
	Category string `json:"category"`
	Data     []Row  `json:"data"`
}

// Game is one top-level section of the SAR report.
type Game struct {
	Title string         `json:"title"`
	Stats []StatCategory `json:"stats"`
}

// ParsedReport is the typed result of parsing one SAR export.
// Games preserve document order of first appearance.
type ParsedReport struct {
	ReportID string `json:"reportId"`
	Games    []Game `json:"games"`
}

// LifetimeStats is the account-level counter snapshot reported redundantly
// on every match row. Last non-zero value wins, in row-processing order.
type LifetimeStats struct {
	Deaths     int `json:"lifetimeDeaths"`
	Hits       int `json:"lifetimeHits"`
	Kills      int `json:"lifetimeKills"`
	Losses     int `json:"lifetimeLosses"`
	Score      int `json:"lifetimeScore"`
	TimePlayed int `json:"lifetimeTimePlayed"`
	Wins       int `json:"lifetimeWins"`
}

// MatchRecord is one row of per-match telemetry.
type MatchRecord struct {
	Timestamp        string `json:"timestamp"`
	DeviceType       string `json:"deviceType"`
	GameType         string `json:"gameType"`
	Map              string `json:"map"`
	Operator         string `json:"operator"`
	Kills            int    `json:"kills"`
	Assists          int    `json:"assists"`
	Headshots        int    `json:"headshots"`
	Deaths           int    `json:"deaths"`
	Score            int    `json:"score"`
	HighestMultikill int    `json:"highestMultikill"`
	HighestStreak    int    `json:"highestStreak"`
	DamageDealt      int    `json:"damageDealt"`
}

// GameSummary is the output of a per-game transformer.
type GameSummary struct {
	TotalKills      int           `json:"totalKills"`
	TotalDeaths     int           `json:"totalDeaths"`
	TotalAssists    int           `json:"totalAssists"`
	TotalHeadshots  int           `json:"totalHeadshots"`
	TotalMultikills int           `json:"totalMultikills"`
	TotalDamage     int           `json:"totalDamage"`
	LifetimeStats   LifetimeStats `json:"lifetimeStats"`
	DetailedMatches []MatchRecord `json:"detailedMatches"`
}

// GameResult is what one game yields after transformer dispatch.
// Summary is set when a registered transformer handled the game; otherwise
// Raw carries the untouched parsed game (passthrough). Err records an
// isolated transformer failure without aborting the run.
type GameResult struct {
	Title   string       `json:"title"`
	Summary *GameSummary `json:"summary,omitempty"`
	Raw     *Game        `json:"raw,omitempty"`
	Err     string       `json:"error,omitempty"`
}

// TimeSeries is the labeled series handed to the chart sink.
// Labels are UTC dates (YYYY-MM-DD) in first-seen order.
type TimeSeries struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// ReportRecord is one fully processed upload.
type ReportRecord struct {
	ID         string       `json:"id"`
	ReportID   string       `json:"reportId"`
	UploadedAt int64        `json:"uploadedAt"`
	Games      []GameResult `json:"games"`
	Series     *TimeSeries  `json:"series,omitempty"`
}

// ReportListing is the lightweight shape returned by list endpoints.
type ReportListing struct {
	ID         string `json:"id"`
	ReportID   string `json:"reportId"`
	UploadedAt int64  `json:"uploadedAt"`
	GameCount  int    `json:"gameCount"`
}
