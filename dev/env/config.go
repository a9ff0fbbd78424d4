package devenv

// MarketWatchTestConfig is read from dev/.state/marketwatch_test.json5 by the
// tests that talk to the live site.
type MarketWatchTestConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// a game the test account has joined
	GameId string `json:"game_id"`
	// a ticker allowed by the game's settings
	Ticker string `json:"ticker"`
}

const MarketWatchTestConfigFile = "marketwatch_test.json5"
