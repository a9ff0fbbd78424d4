package marketwatch

const (
	report_client_csrf_token      = "client.csrf-token"
	report_client_login           = "client.login"
	report_client_check_login     = "client.check-login"
	report_client_user_id         = "client.user-id"
	report_client_check_available = "client.check-available"
	report_client_games           = "client.games"
	report_client_game            = "client.game"
	report_client_ledger_id       = "client.ledger-id"
	report_client_portfolio       = "client.portfolio"
	report_client_leaderboard     = "client.leaderboard"
	report_client_leaderboard_csv = "client.leaderboard-csv"
	report_client_positions       = "client.positions"
	report_client_pending_orders  = "client.pending-orders"
	report_client_cancel_order    = "client.cancel-order"
	report_client_game_settings   = "client.game-settings"
	report_client_price           = "client.price"
	report_client_ticker_uid      = "client.ticker-uid"
	report_client_search          = "client.search"
	report_client_submit_order    = "client.submit-order"
	report_client_watchlists      = "client.watchlists"
	report_client_watchlist       = "client.watchlist"
)
