package directory

import (
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// UserAgent is sent with every request to the staff directory.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/124.0.0.0 Safari/537.36"

const requestTimeout = 30 * time.Second

// CookieJar keeps the directory session cookies in memory, one set per host.
type CookieJar struct {
	log *slog.Logger
	mu  sync.Mutex
	jar map[string][]*http.Cookie
}

func NewCookieJar(log *slog.Logger) *CookieJar {
	return &CookieJar{
		jar: make(map[string][]*http.Cookie),
		log: log,
	}
}

// SetCookies merges cookies for the URL's host, replacing those with the same name.
func (c *CookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := c.jar[u.Host]
	for _, cookie := range cookies {
		replaced := false
		for i, existing := range stored {
			if existing.Name == cookie.Name {
				stored[i] = cookie
				replaced = true
				break
			}
		}
		if !replaced {
			stored = append(stored, cookie)
		}
	}
	c.jar[u.Host] = stored
	c.log.Debug("Set cookies", "host", u.Host, "count", len(cookies))
}

func (c *CookieJar) Cookies(u *url.URL) []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.jar[u.Host]
}

// NewHTTPClient initializes an HTTP client with a session cookie jar that logs redirects.
func NewHTTPClient(log *slog.Logger) *http.Client {
	return &http.Client{
		Jar:     NewCookieJar(log),
		Timeout: requestTimeout,
		CheckRedirect: func(req *http.Request, _ []*http.Request) error {
			log.Debug("Redirected to URL", "URL", req.URL)
			return nil
		},
	}
}
