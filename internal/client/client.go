package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/pokerio/fillgame/internal/roster"
)

// DefaultServerURL is where a locally started Pokerio server listens.
const DefaultServerURL = "http://localhost:42069"

// Result is the outcome of a single request. Non-2xx statuses are results, not errors.
type Result struct {
	URL        string
	StatusCode int
}

// OK reports whether the server accepted the request (200 or 201).
func (r Result) OK() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated
}

// CreatedGame is the body returned by /createGame.
type CreatedGame struct {
	GameID        int `json:"gameId"`
	StartingFunds int `json:"startingFunds"`
	SmallBlind    int `json:"smallBlind"`
}

// ID returns the game id in the form the other endpoints expect.
func (g *CreatedGame) ID() string {
	return strconv.Itoa(g.GameID)
}

// Client issues GET requests against a Pokerio game server
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	clock      quartz.Clock
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout on the current HTTP client. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger.WithPrefix("client") }
}

// WithClock sets the clock used to time requests.
func WithClock(clock quartz.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     log.New(io.Discard),
		clock:      quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// JoinURL is the request that seats token in gameID.
func (c *Client) JoinURL(gameID, token, nickname string) string {
	return c.buildURL("/joinGame/", "playerToken", token, "nickname", nickname, "gameId", gameID)
}

// ActionURL is the request that submits action for token. amount is only sent for raises.
func (c *Client) ActionURL(gameID, token string, action roster.Action, amount string) string {
	path := "/action" + action.String() + "/"
	if action.NeedsAmount() {
		return c.buildURL(path, "playerToken", token, "amount", amount, "gameId", gameID)
	}
	return c.buildURL(path, "playerToken", token, "gameId", gameID)
}

// Join seats token in the game under nickname.
func (c *Client) Join(ctx context.Context, gameID, token, nickname string) (Result, error) {
	return c.get(ctx, c.JoinURL(gameID, token, nickname), nil)
}

// Act submits an action for token.
func (c *Client) Act(ctx context.Context, gameID, token string, action roster.Action, amount string) (Result, error) {
	if !action.Valid() {
		return Result{}, fmt.Errorf("invalid action: %d", int(action))
	}
	return c.get(ctx, c.ActionURL(gameID, token, action, amount), nil)
}

// CreateGame opens a new game owned by creatorToken. The decoded body is only
// populated when the server accepted the request.
func (c *Client) CreateGame(ctx context.Context, creatorToken, nickname string, smallBlind, startingFunds int) (Result, *CreatedGame, error) {
	u := c.buildURL("/createGame", "creatorToken", creatorToken, "nickname", nickname,
		"smallBlind", strconv.Itoa(smallBlind), "startingFunds", strconv.Itoa(startingFunds))

	var created CreatedGame
	res, err := c.get(ctx, u, &created)
	if err != nil || !res.OK() {
		return res, nil, err
	}
	return res, &created, nil
}

// StartGame starts the game owned by creatorToken.
func (c *Client) StartGame(ctx context.Context, creatorToken string) (Result, error) {
	return c.get(ctx, c.buildURL("/startGame", "creatorToken", creatorToken), nil)
}

// LeaveGame removes token from whatever game it is seated in.
func (c *Client) LeaveGame(ctx context.Context, token string) (Result, error) {
	return c.get(ctx, c.buildURL("/leaveGame", "playerToken", token), nil)
}

// KickPlayer removes playerToken from the game owned by creatorToken.
func (c *Client) KickPlayer(ctx context.Context, creatorToken, playerToken string) (Result, error) {
	return c.get(ctx, c.buildURL("/kickPlayer", "creatorToken", creatorToken, "playerToken", playerToken), nil)
}

// buildURL keeps query parameters in the order given; url.Values would sort them.
func (c *Client) buildURL(path string, kv ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(path)
	for i := 0; i+1 < len(kv); i += 2 {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(kv[i])
		b.WriteByte('=')
		b.WriteString(escapeValue(kv[i+1]))
	}
	return b.String()
}

// escapeValue percent-encodes only the bytes that would change how a query
// value is read back: %, &, #, +, spaces, control bytes and non-ASCII.
// Everything else is sent as typed.
func escapeValue(v string) string {
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte("%&#+", c) >= 0 {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (c *Client) get(ctx context.Context, rawURL string, into any) (Result, error) {
	res := Result{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return res, fmt.Errorf("invalid request URL: %w", err)
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return res, fmt.Errorf("request %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	c.logger.Debug("Request complete", "path", req.URL.Path, "status", resp.StatusCode, "elapsed", c.clock.Since(start))

	if into != nil && res.OK() {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			return res, fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
		}
		return res, nil
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return res, nil
}
