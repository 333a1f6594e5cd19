package sreality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public estates endpoint.
const DefaultBaseURL = "https://www.sreality.cz/api/cs/v2/estates"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Query parameters selecting apartments (category_sub_cb) for rent
// (category_type_cb).
const (
	categoryApartment = "2"
	categoryRent      = "2"
)

// ErrUpstream marks any failure talking to the listing source: transport
// errors, timeouts and non-2xx responses alike.
var ErrUpstream = errors.New("upstream fetch failed")

// Estate is one raw listing record as returned by the estates endpoint.
type Estate struct {
	HashID    *int64     `json:"hash_id"`
	Name      string     `json:"name"`
	Price     int        `json:"price"`
	PriceCZK  PriceCZK   `json:"price_czk"`
	Locality  string     `json:"locality"`
	Labels    []string   `json:"labels"`
	LabelsAll [][]string `json:"labelsAll"`
	GPS       *GPS       `json:"gps"`
	Links     Links      `json:"_links"`
}

// PriceCZK carries the price unit label, e.g. "za měsíc".
type PriceCZK struct {
	Unit string `json:"unit"`
}

// GPS coordinates of a listing.
type GPS struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Links is the _links object of an estate record.
type Links struct {
	Images []ImageLink `json:"images"`
}

// ImageLink is one entry of the images array.
type ImageLink struct {
	Href string `json:"href"`
}

type estatesResponse struct {
	Embedded struct {
		Estates []Estate `json:"estates"`
	} `json:"_embedded"`
}

// Client fetches listing pages from the sreality API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client against baseURL with a bounded request timeout.
// An empty baseURL falls back to the production endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchEstates gets one page of apartments-for-rent. Any transport error,
// timeout or non-2xx status is reported as an ErrUpstream-wrapped error.
func (c *Client) FetchEstates(ctx context.Context, page int) ([]Estate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	q := url.Values{}
	q.Set("category_sub_cb", categoryApartment)
	q.Set("category_type_cb", categoryRent)
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, res.StatusCode)
	}

	var body estatesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}

	return body.Embedded.Estates, nil
}
