package network

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"portfolio-stream/src/helpers"
	"portfolio-stream/src/logger"
	"portfolio-stream/src/models"
)

// -----------------------------------------------------------------------------
// NetworkManager performs GET requests with retries and backoff on behalf of
// the quote sources.
// -----------------------------------------------------------------------------

type NetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger

	// Base delay for the retry backoff; doubles per attempt.
	Backoff time.Duration
}

// -----------------------------------------------------------------------------

func NewNetworkManager(cfg *models.MConfig, log *logger.Logger) *NetworkManager {
	return &NetworkManager{
		Config:  cfg,
		Logger:  log,
		Backoff: time.Second,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and exponential backoff.
func (nm *NetworkManager) Get(urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	finalUrl := reqUrl.String()
	attempts := nm.Config.Network.MaxRetries + 1

	res, err := helpers.RetryWithBackoff("GET "+reqUrl.Host, attempts, nm.Backoff, func() (interface{}, error) {
		return nm.doGet(finalUrl)
	})
	if err != nil {
		return nil, err
	}

	return res.([]byte), nil
}

// -----------------------------------------------------------------------------

// doGet performs a single attempt.
func (nm *NetworkManager) doGet(finalUrl string) ([]byte, error) {
	req, err := http.NewRequest("GET", finalUrl, nil)
	if err != nil {
		return nil, err
	}

	if nm.Config.Network.UserAgent != "" {
		req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
	}

	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Info("Request failed: %v", err)
		return nil, &helpers.NetworkError{StreamError: helpers.StreamError{Message: "request failed", Cause: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 || resp.StatusCode == 403 {
		nm.Logger.Info("Request blocked (%d). Backing off.", resp.StatusCode)
		return nil, &helpers.NetworkError{StreamError: helpers.StreamError{Message: fmt.Sprintf("blocked (status %d)", resp.StatusCode)}}
	}

	if resp.StatusCode != 200 {
		nm.Logger.Info("Bad status %d", resp.StatusCode)
		return nil, &helpers.NetworkError{StreamError: helpers.StreamError{Message: fmt.Sprintf("bad status: %d", resp.StatusCode)}}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &helpers.NetworkError{StreamError: helpers.StreamError{Message: "reading response body", Cause: err}}
	}

	return body, nil
}
