package model

// RatingState is a competitor's current Glicko-2 skill belief.
type RatingState struct {
	Rating     float64
	Deviation  float64
	Volatility float64
}

// HistoryPoint is a competitor's rating at the end of one processed date.
type HistoryPoint struct {
	Competitor string
	Date       Date
	Rating     float64
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank       int
	Competitor string
	Rating     float64
	Deviation  float64
}
