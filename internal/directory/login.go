package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrLogin = errors.New("login failed")

// Credentials identify the directory account used by the importer.
type Credentials struct {
	LoginURL string
	BaseURL  string
	Username string
	Password string
}

// Login posts the login form. The session cookie ends up in the client's jar.
func Login(ctx context.Context, client *http.Client, creds Credentials) error {
	data := url.Values{}
	data.Set("action", "login")
	data.Set("username", creds.Username)
	data.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.LoginURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create new request %s: %w", creds.LoginURL, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Referer", creds.BaseURL)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to request %s: %w", creds.LoginURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w, status code: %d", ErrLogin, resp.StatusCode)
	}

	if _, err = io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// RetryLogin calls Login up to retries times, pausing backoff between attempts.
// It stops early when ctx is done.
func RetryLogin(
	ctx context.Context,
	log *slog.Logger,
	client *http.Client,
	creds Credentials,
	retries int,
	backoff time.Duration,
) error {
	var err error
	retries = max(retries, 1)

	for attempt := 1; attempt <= retries; attempt++ {
		err = Login(ctx, client, creds)
		if err == nil {
			log.InfoContext(ctx, "Successfully logged in")
			return nil
		}
		log.WarnContext(ctx, "Failed to login", "attempt", attempt, "of", retries, "error", err.Error())

		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("login interrupted: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	log.ErrorContext(ctx, "failed to login after multiple retries", "last_error", err)
	return fmt.Errorf("%w after %d attempts: %w", ErrLogin, retries, err)
}
