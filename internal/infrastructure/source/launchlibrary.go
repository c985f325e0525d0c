package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"SpaceNewsAgent/internal/config"
	"SpaceNewsAgent/internal/domain"
	"SpaceNewsAgent/internal/ports"
)

// LaunchStrategy pulls upcoming launches from a launch-library style API and
// keeps only those with a "Go" status. The list call yields basic records;
// per-launch detail is fetched lazily through Enhance so reused records cost
// no extra API calls.
type LaunchStrategy struct {
	client       *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger
	defaultLimit int
}

var (
	_ Strategy             = (*LaunchStrategy)(nil)
	_ ports.LaunchEnhancer = (*LaunchStrategy)(nil)
)

// NewLaunchStrategy wires an HTTP client. Detail fetches share a rate
// limiter; detailPerMinute <= 0 disables limiting.
func NewLaunchStrategy(timeout time.Duration, detailPerMinute int, logger *slog.Logger) *LaunchStrategy {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if detailPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(detailPerMinute)), 1)
	}
	return &LaunchStrategy{
		client:       &http.Client{Timeout: timeout},
		limiter:      limiter,
		logger:       logger,
		defaultLimit: 50,
	}
}

// Name identifies the strategy inside the registry.
func (s *LaunchStrategy) Name() string {
	return "launchlibrary"
}

type launchListItem struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Name   string `json:"name"`
	Status struct {
		Name string `json:"name"`
	} `json:"status"`
	Net         string `json:"net"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
	LSPName     string `json:"lsp_name"`
	Mission     string `json:"mission"`
	MissionType string `json:"mission_type"`
	Pad         string `json:"pad"`
	Location    string `json:"location"`
	Image       string `json:"image"`
	Infographic string `json:"infographic"`
}

// Fetch requests the upcoming-launch list and returns basic "Go" records.
func (s *LaunchStrategy) Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Record, error) {
	limit := cfg.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	listURL, err := buildListURL(cfg.URL, map[string]string{
		"mode":  "list",
		"limit": strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("launch API returned %s", resp.Status)
	}

	var payload struct {
		Results []launchListItem `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	var records []domain.Record
	for _, item := range payload.Results {
		if item.Status.Name != "Go" || item.URL == "" || item.ID == "" {
			continue
		}
		records = append(records, basicLaunchRecord(item))
	}

	if s.logger != nil {
		s.logger.Debug("launch list filtered",
			"total", len(payload.Results), "go_status", len(records))
	}
	return records, nil
}

// Enhance fetches per-launch detail and flattens it onto the record. Any
// failure keeps the basic record as-is; a launch is never dropped because its
// detail call failed.
func (s *LaunchStrategy) Enhance(ctx context.Context, rec domain.Record) domain.Record {
	if rec.Launch == nil || rec.URL == "" {
		return rec
	}

	detail, err := s.fetchDetail(ctx, rec.URL)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("launch detail fetch failed, keeping basic data",
				"id", rec.ID, "name", rec.Title, "error", err)
		}
		return rec
	}
	return flattenDetail(rec, detail)
}

type launchDetail struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Status struct {
		Name string `json:"name"`
	} `json:"status"`
	Net         string `json:"net"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`

	Provider struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Type        string `json:"type"`
		CountryCode string `json:"country_code"`
		LogoURL     string `json:"logo_url"`
	} `json:"launch_service_provider"`

	Mission struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Orbit       struct {
			Name string `json:"name"`
		} `json:"orbit"`
	} `json:"mission"`

	Pad struct {
		Name     string `json:"name"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
	} `json:"pad"`

	Rocket struct {
		Configuration struct {
			Name               string `json:"name"`
			FullName           string `json:"full_name"`
			Description        string `json:"description"`
			Family             string `json:"family"`
			TotalLaunchCount   int    `json:"total_launch_count"`
			SuccessfulLaunches int    `json:"successful_launches"`
			FailedLaunches     int    `json:"failed_launches"`
			PendingLaunches    int    `json:"pending_launches"`
			Manufacturer       struct {
				Name               string `json:"name"`
				Type               string `json:"type"`
				Description        string `json:"description"`
				TotalLaunchCount   int    `json:"total_launch_count"`
				SuccessfulLaunches int    `json:"successful_launches"`
				FailedLaunches     int    `json:"failed_launches"`
			} `json:"manufacturer"`
		} `json:"configuration"`
	} `json:"rocket"`

	Image       string   `json:"image"`
	Infographic string   `json:"infographic"`
	WebcastLive bool     `json:"webcast_live"`
	Probability *int     `json:"probability"`
	VidURLs     []string `json:"vidURLs"`
}

func (s *LaunchStrategy) fetchDetail(ctx context.Context, detailURL string) (*launchDetail, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request detail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail API returned %s", resp.Status)
	}

	var detail launchDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode detail: %w", err)
	}
	return &detail, nil
}

func basicLaunchRecord(item launchListItem) domain.Record {
	return domain.Record{
		ID:    item.ID,
		Title: item.Name,
		URL:   item.URL,
		Launch: &domain.LaunchInfo{
			Status:       "Go",
			Net:          item.Net,
			WindowStart:  item.WindowStart,
			WindowEnd:    item.WindowEnd,
			ProviderName: orDefault(item.LSPName, "Unknown"),
			MissionName:  orDefault(item.Mission, "Unknown"),
			MissionType:  item.MissionType,
			LaunchSite:   item.Location,
			Pad:          item.Pad,
			Location:     item.Location,
			Image:        item.Image,
			Infographic:  item.Infographic,
		},
	}
}

func flattenDetail(rec domain.Record, d *launchDetail) domain.Record {
	basic := rec.Launch
	cfg := d.Rocket.Configuration
	man := cfg.Manufacturer

	pad := orDefault(d.Pad.Name, basic.Pad)
	location := orDefault(d.Pad.Location.Name, basic.Location)
	site := location
	if pad != "" && location != "" {
		site = pad + ", " + location
	} else if pad != "" {
		site = pad
	}

	rec.ID = orDefault(d.ID, rec.ID)
	rec.Title = orDefault(d.Name, rec.Title)
	rec.URL = orDefault(d.URL, rec.URL)
	rec.Launch = &domain.LaunchInfo{
		Status:      orDefault(d.Status.Name, "Go"),
		Net:         orDefault(d.Net, basic.Net),
		WindowStart: orDefault(d.WindowStart, basic.WindowStart),
		WindowEnd:   orDefault(d.WindowEnd, basic.WindowEnd),

		ProviderName:        orDefault(d.Provider.Name, basic.ProviderName),
		ProviderDescription: d.Provider.Description,
		ProviderType:        d.Provider.Type,
		ProviderCountry:     d.Provider.CountryCode,
		ProviderLogo:        d.Provider.LogoURL,

		MissionName:        orDefault(d.Mission.Name, basic.MissionName),
		MissionDescription: d.Mission.Description,
		MissionType:        orDefault(d.Mission.Type, basic.MissionType),
		Orbit:              d.Mission.Orbit.Name,

		LaunchSite: site,
		Pad:        pad,
		Location:   location,

		Rocket:                   orDefault(cfg.FullName, cfg.Name),
		RocketDescription:        cfg.Description,
		RocketFamily:             cfg.Family,
		RocketFullName:           cfg.FullName,
		RocketTotalLaunches:      cfg.TotalLaunchCount,
		RocketSuccessfulLaunches: cfg.SuccessfulLaunches,
		RocketFailedLaunches:     cfg.FailedLaunches,
		RocketPendingLaunches:    cfg.PendingLaunches,

		ManufacturerName:               man.Name,
		ManufacturerType:               man.Type,
		ManufacturerDescription:        man.Description,
		ManufacturerTotalLaunches:      man.TotalLaunchCount,
		ManufacturerSuccessfulLaunches: man.SuccessfulLaunches,
		ManufacturerFailedLaunches:     man.FailedLaunches,

		Image:       orDefault(d.Image, basic.Image),
		Infographic: orDefault(d.Infographic, basic.Infographic),
		WebcastLive: d.WebcastLive,
		Probability: d.Probability,
		VideoURLs:   d.VidURLs,
	}
	return rec
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
