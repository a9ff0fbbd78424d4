package main

import (
	"context"

	"marketwatch-backend/cmd/mwcli/commands"
	"marketwatch-backend/internal/components/telemetry"
)

func main() {
	ctx := context.Background()
	telemetry.SetupFromEnv(ctx, "mwcli")
	commands.ExecuteContext(ctx)
}
