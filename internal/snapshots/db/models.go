package db

type GameSnapshot struct {
	GameID         string
	Time           int64
	Title          string
	Players        int64
	Rank           int64
	PortfolioValue float64
	GainPercentage float64
}

type RankingSnapshot struct {
	GameID         string
	Time           int64
	Rank           int64
	Player         string
	PlayerPub      string
	PortfolioValue float64
	GainPercentage float64
	Transactions   int64
	Gain           float64
}
