package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/SamuelLeutner/notion-acads/acads"
	"github.com/SamuelLeutner/notion-acads/config"
	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/models"
)

// UnsplashClient picks random cover images. It never returns an error: any
// failure yields acads.FallbackImageURL.
type UnsplashClient struct {
	AccessKey string
	APIBase   string
	Client    *http.Client
}

func NewUnsplashClient(cfg *config.Config) *UnsplashClient {
	return &UnsplashClient{
		AccessKey: cfg.UnsplashAccessKey,
		APIBase:   cfg.UnsplashAPIBase,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (u *UnsplashClient) RandomImage(ctx context.Context, query string) string {
	if u.AccessKey == "" {
		return acads.FallbackImageURL
	}

	q := url.Values{}
	q.Set("query", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.APIBase+"/photos/random?"+q.Encode(), nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Building Unsplash request failed, using fallback image")
		return acads.FallbackImageURL
	}
	req.Header.Set("Authorization", "Client-ID "+u.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.Client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("Unsplash request failed, using fallback image")
		return acads.FallbackImageURL
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode).Msg("Unsplash answered with an error, using fallback image")
		return acads.FallbackImageURL
	}

	var photo models.Photo
	if err := json.NewDecoder(resp.Body).Decode(&photo); err != nil || photo.URLs.Regular == "" {
		logger.Warn().Err(err).Msg("Unsplash response had no image URL, using fallback image")
		return acads.FallbackImageURL
	}
	return photo.URLs.Regular
}
