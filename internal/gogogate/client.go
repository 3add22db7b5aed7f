package gogogate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout = 10 * time.Second

	sessionCookie = "PHPSESSID"

	// The only authenticated-state signal the firmware exposes is the
	// logout button on the rendered page. Matched byte for byte.
	logoutFragment = `<input type="submit" class="btn-logout3" name="logout" value=" " title="Logout"/>`
)

// Config defines connection parameters for a GoGoGate2 controller.
type Config struct {
	// Host is the device IP or hostname, e.g. "192.168.1.123". A scheme
	// may be included; plain HTTP is assumed otherwise (the firmware does
	// not serve TLS).
	Host     string
	Username string
	Password string
	// Timeout bounds each HTTP request. Zero means the default of 10s.
	Timeout time.Duration
}

// Client drives the GoGoGate2 controller's embedded web UI. The firmware
// has no API proper; this screen-scrapes the PHP pages the way a browser
// would, holding the session cookie between calls.
//
// A Client is safe for concurrent use: one mutex serializes every
// operation so that the attempt, re-login, and retry run as a unit.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu        sync.Mutex
	sessionID string
}

func NewClient(cfg Config) (*Client, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("gogogate2 host is required")
	}
	baseURL := host
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Login authenticates against the device's index page and stores the
// session cookie. Wrong credentials surface as ErrAuthFailed; a session
// that later expires is picked up lazily by the other operations, which
// re-login on their own.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login(ctx)
}

// Status reads the status of all three doors.
func (c *Client) Status(ctx context.Context) (DoorStates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var states DoorStates
	err := c.withRelogin(ctx, func() error {
		var err error
		states, err = c.fetchStatus(ctx)
		return err
	})
	return states, err
}

// Temperatures reads the temperature sensor of each door. Doors without
// a sensor report 0. If any single door read fails the whole call fails;
// no partial vectors.
func (c *Client) Temperatures(ctx context.Context) (Temperatures, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var temps Temperatures
	err := c.withRelogin(ctx, func() error {
		var err error
		temps, err = c.fetchTemperatures(ctx)
		return err
	})
	return temps, err
}

// ToggleDoor pulses the given door (1..3) open or closed. A nil return
// means the device answered OK. ErrToggleRejected means the device
// answered but refused; that is not an auth problem and is not retried.
func (c *Client) ToggleDoor(ctx context.Context, door int) error {
	if door < 1 || door > Doors {
		return fmt.Errorf("%w: %d", ErrInvalidDoor, door)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.withRelogin(ctx, func() error {
		return c.fetchToggle(ctx, door)
	})
}

// withRelogin runs action once and, when the failure looks like an
// expired session, logs in and retries exactly once. Any other failure,
// and any failure of the retry itself, is returned as is. Callers must
// hold c.mu.
func (c *Client) withRelogin(ctx context.Context, action func() error) error {
	err := action()
	var se *sessionError
	if err == nil || !errors.As(err, &se) {
		return err
	}

	if lerr := c.login(ctx); lerr != nil {
		return lerr
	}
	return action()
}

func (c *Client) login(ctx context.Context) error {
	form := url.Values{
		"login":      {c.username},
		"pass":       {c.password},
		"send-login": {"Sign+In"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/index.php", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), logoutFragment) {
		return ErrAuthFailed
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			c.sessionID = cookie.Value
			return nil
		}
	}
	return fmt.Errorf("%w: no %s cookie in response", ErrAuthFailed, sessionCookie)
}

func (c *Client) fetchStatus(ctx context.Context) (DoorStates, error) {
	var states DoorStates

	body, err := c.get(ctx, "/isg/statusDoorAll.php", url.Values{"status1": {"10"}})
	if err != nil {
		return states, err
	}

	codes, err := decodeStringArray(body)
	if err != nil {
		return states, sessionErr("status body %q: %v", body, err)
	}
	if len(codes) != Doors {
		return states, sessionErr("status body %q: want %d codes, got %d", body, Doors, len(codes))
	}

	for i, code := range codes {
		n, err := strconv.Atoi(code)
		if err != nil {
			return states, sessionErr("status code %q: %v", code, err)
		}
		states[i] = DoorState(n)
	}
	return states, nil
}

func (c *Client) fetchTemperatures(ctx context.Context) (Temperatures, error) {
	var temps Temperatures

	for door := 1; door <= Doors; door++ {
		body, err := c.get(ctx, "/isg/temperature.php", url.Values{"door": {strconv.Itoa(door)}})
		if err != nil {
			return temps, err
		}

		values, err := decodeStringArray(body)
		if err != nil {
			return temps, sessionErr("temperature body %q: %v", body, err)
		}
		if len(values) < 1 {
			return temps, sessionErr("temperature body %q: empty array", body)
		}

		fahrenheit, err := fahrenheitFromRaw(values[0])
		if err != nil {
			return temps, sessionErr("temperature value %q: %v", values[0], err)
		}
		temps[door-1] = fahrenheit
	}
	return temps, nil
}

func (c *Client) fetchToggle(ctx context.Context, door int) error {
	body, err := c.get(ctx, "/isg/opendoor.php", url.Values{"numdoor": {strconv.Itoa(door)}})
	if err != nil {
		return err
	}
	if string(body) == "OK" {
		return nil
	}
	// A non-OK answer on a 200 is the device refusing the command, not a
	// dead session. Re-logging in would not change it.
	return fmt.Errorf("%w: %q", ErrToggleRejected, body)
}

// get issues an authenticated GET and returns the body. Transport
// failures, non-200 statuses, and empty bodies all come back as session
// errors, so withRelogin treats them as a cue to re-login.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.sessionID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &sessionError{cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &sessionError{cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, sessionErr("request %s: status %d", path, resp.StatusCode)
	}
	if len(body) == 0 {
		return nil, sessionErr("request %s: empty body", path)
	}
	return body, nil
}

func decodeStringArray(body []byte) ([]string, error) {
	var values []string
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, err
	}
	return values, nil
}
