package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type fakeSmtp struct {
	host    string
	smtp    int
	web     string
	cleanup func()
}

func startFakeSmtp(t *testing.T) fakeSmtp {
	if testing.Short() {
		t.Skip("skipping smtp container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "haravich/fake-smtp-server",
			ExposedPorts: []string{"1025/tcp", "1080/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("smtp://0.0.0.0:1025"),
				wait.ForListeningPort("1080/tcp"),
			),
		},
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	smtpPort, err := container.MappedPort(ctx, "1025/tcp")
	require.NoError(t, err)
	webPort, err := container.MappedPort(ctx, "1080/tcp")
	require.NoError(t, err)

	return fakeSmtp{
		host: host,
		smtp: smtpPort.Int(),
		web:  fmt.Sprintf("http://%s:%d", host, webPort.Int()),
		cleanup: func() {
			err := container.Terminate(context.Background())
			if err != nil {
				t.Fatal(err)
			}
		},
	}
}

func TestSendRankSummarySmtp(t *testing.T) {
	server := startFakeSmtp(t)
	defer server.cleanup()

	tel := telemetry.NewTestAPI(t)
	mailer := NewMailer(SmtpConfig{
		Server:       server.host,
		Port:         server.smtp,
		EmailAddress: "bot@example.com",
		Password:     "default",
	}, tel)

	err := mailer.SendRankSummary(context.Background(), []string{"jane@example.com"}, "algoets-h2023", []marketwatch.Ranking{
		{Rank: 1, Player: "Ada Lovelace", PortfolioValue: 1104200, GainPercentage: 0.1042, Transactions: 31, Gain: 104200},
	})
	require.NoError(t, err)
	require.Empty(t, tel.Broken())

	res, err := resty.New().R().Get(server.web + "/messages/1.plain")
	require.NoError(t, err)
	require.Equal(t, 200, res.StatusCode())
	require.Contains(t, res.String(), "Current rankings for algoets-h2023")
	require.Contains(t, res.String(), "Ada Lovelace")
}
