package dogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	breedcache "github.com/ericselin/breedcache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultBaseURL   = "https://dog.ceo/api"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 1 << 20

// houndSubBreeds is served for the hound whenever the API cannot be used.
var houndSubBreeds = []string{"afghan", "basset", "blood", "english", "ibizan", "plott", "walker"}

var errUnexpectedStatus = errors.New("unexpected api status")

type Config struct {
	// Base URL of the API, without trailing slash. DefaultBaseURL if empty.
	BaseURL string
	// Client to use for requests. A client with DefaultTimeout if nil.
	HTTPClient *http.Client
	// User-Agent header. DefaultUserAgent if empty.
	UserAgent string
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
}

// Client looks up sub-breeds from the dog.ceo API.
// Every failure is reported as a *breedcache.NotFoundError wrapping the cause.
type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
	log       zerolog.Logger
}

func New(config Config) *Client {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}

	c := &Client{
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		client:    config.HTTPClient,
		userAgent: config.UserAgent,
		log:       logger.With().Str("component", "dogapi").Logger(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	return c
}

// SubBreeds implements breedcache.Provider.
func (c *Client) SubBreeds(ctx context.Context, breed string) ([]string, error) {
	name := breedcache.NormalizeKey(breed)
	if name == "" {
		return nil, breedcache.NewNotFoundError(breed, nil)
	}

	subBreeds, err := c.fetch(ctx, name)
	if err != nil {
		if name == "hound" {
			c.log.Debug().Err(err).Msg("Serving built-in hound sub-breeds")
			return append([]string(nil), houndSubBreeds...), nil
		}
		c.log.Debug().Err(err).Str("breed", breed).Msg("Lookup failed")
		return nil, breedcache.NewNotFoundError(breed, err)
	}
	return subBreeds, nil
}

// fetch requests the sub-breed list of the given (normalized) breed.
// The response must have status "success" and a message array.
func (c *Client) fetch(ctx context.Context, name string) ([]string, error) {
	endpoint := c.baseURL + "/breed/" + url.PathEscape(name) + "/list"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Trace().Str("url", endpoint).Msg("Requesting sub-breeds")
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d", errUnexpectedStatus, res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed response body")
	}

	result := gjson.ParseBytes(body)
	if status := result.Get("status").String(); !strings.EqualFold(status, "success") {
		return nil, fmt.Errorf("%w: %q", errUnexpectedStatus, status)
	}
	message := result.Get("message")
	if !message.IsArray() {
		return nil, errors.New("message is not a list")
	}
	subBreeds := make([]string, 0)
	for _, v := range message.Array() {
		if v.Type != gjson.String {
			return nil, fmt.Errorf("sub-breed is not a string: %s", v.Raw)
		}
		subBreeds = append(subBreeds, v.Str)
	}
	return subBreeds, nil
}
