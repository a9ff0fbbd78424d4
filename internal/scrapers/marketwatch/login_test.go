package marketwatch

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	client, site, tel := newTestClient(t, ClientOptions{})

	_, ok, err := client.CheckLogin(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	err = client.Login(ctx, test_email, test_password)
	require.NoError(t, err)
	require.Empty(t, tel.Broken())

	username, ok, err := client.CheckLogin(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Jane Trader", username)

	var forms []map[string]string
	var header http.Header
	site.locked(func() {
		forms = site.authForms
		header = site.authHeader
	})
	require.Len(t, forms, 1)
	form := forms[0]
	require.Equal(t, sso_client_id, form["client_id"])
	require.Equal(t, "DJldap", form["connection"])
	require.Equal(t, "prod/accounts-mw", form["ns"])
	require.Equal(t, "oauth2", form["protocol"])
	require.Equal(t, "code", form["response_type"])
	require.Equal(t, "sso", form["tenant"])
	require.Equal(t, "deprecated", form["_intstate"])
	require.Equal(t, sso_redirect_uri, form["redirect_uri"])
	require.Equal(t, sso_scope, form["scope"])
	require.NotEmpty(t, form["nonce"])

	require.Equal(t, test_email, header.Get("X-REMOTE-USER"))
	require.Equal(t, sso_client_id, header.Get("x-_dj-_client__id"))
	require.Equal(t, "localop", header.Get("x-_oidc-_provider"))
}

func TestLoginNonceIsFresh(t *testing.T) {
	ctx := context.Background()
	client, site, _ := newTestClient(t, ClientOptions{})

	require.NoError(t, client.Login(ctx, test_email, test_password))
	require.NoError(t, client.Login(ctx, test_email, test_password))
	site.locked(func() {
		require.Len(t, site.authForms, 2)
		require.NotEqual(t, site.authForms[0]["nonce"], site.authForms[1]["nonce"])
	})
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t, ClientOptions{})

	err := client.Login(ctx, test_email, "wrong")
	require.ErrorIs(t, err, ErrLoginFailed)

	_, ok, err := client.CheckLogin(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoginRejectedWithMessage(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t, ClientOptions{})

	err := client.Login(ctx, "someone@example.com", test_password)
	require.ErrorIs(t, err, ErrLoginFailed)
	require.ErrorContains(t, err, "invalid request")
}

func TestCsrfToken(t *testing.T) {
	client, _, _ := newTestClient(t, ClientOptions{})
	token, err := client.CsrfToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, test_csrf, token)
}

func TestUserId(t *testing.T) {
	ctx := context.Background()
	client, _, _ := newTestClient(t, ClientOptions{})

	id, err := client.UserId(ctx, test_email)
	require.NoError(t, err)
	require.Equal(t, "user-42", id)

	_, err = client.UserId(ctx, "nobody@example.com")
	var statusErr StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 404, statusErr.Status)
}

func TestCheckAvailable(t *testing.T) {
	ctx := context.Background()
	client, site, _ := newTestClient(t, ClientOptions{})

	require.NoError(t, client.CheckAvailable(ctx))

	site.setGamesPage("")
	require.ErrorIs(t, client.CheckAvailable(ctx), ErrSiteDown)
}
