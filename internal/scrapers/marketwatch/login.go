package marketwatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

const (
	sso_client_id    = "5hssEAdMy0mJTICnJNvC9TXEw3Va7jfO"
	sso_accounts     = "https://accounts.marketwatch.com"
	sso_redirect_uri = sso_accounts + "/login-page/callback"
	sso_scope        = "openid idp_id roles email given_name family_name djid djUsername djStatus trackid tags prts suuid updated_at"
)

// CsrfToken loads the sso login page and returns the csrf cookie it sets.
func (c *Client) CsrfToken(ctx context.Context) (string, error) {
	endpoint := c.endpoints.Sso + "/login-page"
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_csrf_token, fmt.Errorf("fetch: %w", err))
		return "", err
	}

	for _, cookie := range res.Cookies() {
		if cookie.Name == "csrf" {
			return cookie.Value, nil
		}
	}
	// the cookie may have been set on a redirect
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	for _, cookie := range c.Http.GetClient().Jar.Cookies(parsed) {
		if cookie.Name == "csrf" {
			return cookie.Value, nil
		}
	}

	c.tel.ReportBroken(report_client_csrf_token, "no csrf cookie", res.StatusCode())
	return "", fmt.Errorf("%w: no csrf cookie on login page", ErrLoginFailed)
}

// Login goes through the dow jones sso flow, the session cookies end up in
// the client's cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	csrf, err := c.CsrfToken(ctx)
	if err != nil {
		return err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"accept":            "application/json, text/plain, */*",
			"accept-language":   "en-US,en;q=0.5",
			"origin":            sso_accounts,
			"referer":           sso_accounts + "/login-page/signin",
			"X-REMOTE-USER":     email,
			"x-_dj-_client__id": sso_client_id,
			"x-_oidc-_provider": "localop",
		}).
		SetFormData(map[string]string{
			"client_id":     sso_client_id,
			"connection":    "DJldap",
			"nonce":         uuid.NewString(),
			"ns":            "prod/accounts-mw",
			"password":      password,
			"protocol":      "oauth2",
			"redirect_uri":  sso_redirect_uri,
			"response_type": "code",
			"scope":         sso_scope,
			"tenant":        "sso",
			"username":      email,
			"ui_locales":    "en-us-x-mw-11-8",
			"_csrf":         csrf,
			"_intstate":     "deprecated",
		}).
		Post(c.endpoints.Sso + "/authenticate")
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("authenticate: %w", err))
		return err
	}
	if res.StatusCode() == http.StatusUnauthorized {
		return ErrLoginFailed
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("parse authenticate: %w", err))
		return err
	}
	token, hasToken := doc.Find("input[name=token]").First().Attr("value")
	params, hasParams := doc.Find("input[name=params]").First().Attr("value")
	if !hasToken || !hasParams {
		var message struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}
		if json.Unmarshal(res.Body(), &message) == nil && message.Message != "" {
			return fmt.Errorf("%w: %s", ErrLoginFailed, message.Message)
		}
		c.tel.ReportWarning(report_client_login, "no token in authenticate response", res.StatusCode())
		return fmt.Errorf("%w: no token in authenticate response", ErrLoginFailed)
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"token":  token,
			"params": params,
		}).
		Post(c.endpoints.Sso + "/postauth/handler")
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("postauth: %w", err))
		return err
	}
	c.tel.ReportDebug("postauth handler", "status", res.StatusCode())

	username, ok, err := c.CheckLogin(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: session was not established", ErrLoginFailed)
	}
	c.tel.ReportDebug("logged in", "username", username)
	return nil
}

// CheckLogin reports whether the session is logged in and the display name
// of the user.
func (c *Client) CheckLogin(ctx context.Context) (string, bool, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.endpoints.Site)
	if err != nil {
		c.tel.ReportBroken(report_client_check_login, fmt.Errorf("fetch: %w", err))
		return "", false, err
	}
	if res.StatusCode() != http.StatusOK {
		return "", false, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_check_login, fmt.Errorf("parse: %w", err))
		return "", false, err
	}
	username := strings.TrimSpace(doc.Find("li.profile--name").First().Text())
	return username, username != "", nil
}

// UserId looks up the dow jones account id of email.
func (c *Client) UserId(ctx context.Context, email string) (string, error) {
	csrf, err := c.CsrfToken(ctx)
	if err != nil {
		return "", err
	}

	var user struct {
		Id string `json:"id"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": email,
			"csrf":     csrf,
		}).
		SetResult(&user).
		ForceContentType("application/json").
		Post(c.endpoints.Sso + "/getuser")
	if err != nil {
		c.tel.ReportBroken(report_client_user_id, fmt.Errorf("fetch: %w", err))
		return "", err
	}
	if res.StatusCode() != http.StatusOK {
		return "", StatusError{Url: res.Request.URL, Status: res.StatusCode()}
	}
	if user.Id == "" {
		c.tel.ReportWarning(report_client_user_id, "empty id")
		return "", markupError("getuser returned no id")
	}
	return user.Id, nil
}
