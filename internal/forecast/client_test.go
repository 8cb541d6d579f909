package forecast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wetwatch/internal/config"
	"wetwatch/internal/types"
)

func newTestClient(baseURL string) *Client {
	cfg := config.ForecastConfig{
		BaseURL:   baseURL,
		UserAgent: "wetwatch-test/0",
		Timeout:   5 * time.Second,
	}
	return NewClientWithHTTP(cfg, &http.Client{}, testLogger{})
}

func TestHourlyPeriodsTwoStepLookup(t *testing.T) {
	var pointsPath string

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		pointsPath = r.URL.Path
		if got := r.Header.Get("Accept"); got != "application/geo+json" {
			t.Errorf("Accept header = %q, want application/geo+json", got)
		}
		fmt.Fprintf(w, `{"properties":{"forecastHourly":"%s/gridpoints/MPX/107,71/forecast/hourly"}}`, srv.URL)
	})
	mux.HandleFunc("/gridpoints/MPX/107,71/forecast/hourly", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"properties":{"periods":[
			{"startTime":"2026-03-14T12:00:00Z","endTime":"2026-03-14T13:00:00Z","probabilityOfPrecipitation":{"value":65}},
			{"startTime":"2026-03-14T13:00:00Z","endTime":"2026-03-14T14:00:00Z","probabilityOfPrecipitation":{"value":null}}
		]}}`)
	})

	periods, err := newTestClient(srv.URL).HourlyPeriods(context.Background(), 44.9778, -93.265)
	if err != nil {
		t.Fatalf("HourlyPeriods() error: %v", err)
	}

	if want := "/points/44.9778,-93.2650"; pointsPath != want {
		t.Errorf("points path = %q, want %q", pointsPath, want)
	}
	if len(periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(periods))
	}
	if periods[0].PrecipitationProbability != 65 {
		t.Errorf("periods[0] probability = %d, want 65", periods[0].PrecipitationProbability)
	}
	// Null upstream probability reads as zero.
	if periods[1].PrecipitationProbability != 0 {
		t.Errorf("periods[1] probability = %d, want 0", periods[1].PrecipitationProbability)
	}
	wantStart := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if !periods[0].Start.Equal(wantStart) {
		t.Errorf("periods[0] start = %v, want %v", periods[0].Start, wantStart)
	}
}

func TestHourlyPeriodsMissingEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"properties":{}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).HourlyPeriods(context.Background(), 44.98, -93.27)
	if err == nil {
		t.Fatal("HourlyPeriods() succeeded without a forecastHourly URL")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamForecast {
		t.Errorf("error = %v, want code %s", err, types.ErrCodeUpstreamForecast)
	}
}

func TestHourlyPeriodsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).HourlyPeriods(context.Background(), 44.98, -93.27)
	if err == nil {
		t.Fatal("HourlyPeriods() succeeded against a 404 endpoint")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamForecast {
		t.Errorf("error = %v, want code %s", err, types.ErrCodeUpstreamForecast)
	}
}

func TestHourlyPeriodsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"properties": not json`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).HourlyPeriods(context.Background(), 44.98, -93.27)
	if err == nil {
		t.Fatal("HourlyPeriods() succeeded on malformed JSON")
	}
}
