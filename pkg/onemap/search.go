package onemap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/onemapsg/building-registry/internal/model"
	"github.com/onemapsg/building-registry/internal/resilience"
)

// searchResponse is the JSON envelope of the elastic search endpoint.
type searchResponse struct {
	Found         int            `json:"found"`
	TotalNumPages int            `json:"totalNumPages"`
	PageNum       int            `json:"pageNum"`
	Results       []searchResult `json:"results"`
}

// searchResult is one raw building entry. OneMap returns every field as a
// string and uses the literal "NIL" for absent values.
type searchResult struct {
	BlkNo     string `json:"BLK_NO"`
	RoadName  string `json:"ROAD_NAME"`
	Building  string `json:"BUILDING"`
	Postal    string `json:"POSTAL"`
	Latitude  string `json:"LATITUDE"`
	Longitude string `json:"LONGITUDE"`
}

// Search implements Client. It pages through every result for the postal
// code and drops entries whose POSTAL field does not echo the queried code.
func (c *client) Search(ctx context.Context, postalCode string) ([]model.Building, error) {
	first, err := c.searchPage(ctx, postalCode, 1)
	if err != nil {
		return nil, err
	}
	if first.Found == 0 {
		return nil, nil
	}

	buildings := collectBuildings(nil, first.Results, postalCode)
	for page := 2; page <= first.TotalNumPages; page++ {
		resp, err := c.searchPage(ctx, postalCode, page)
		if err != nil {
			return nil, eris.Wrapf(err, "onemap: page %d", page)
		}
		buildings = collectBuildings(buildings, resp.Results, postalCode)
	}

	return buildings, nil
}

func (c *client) searchPage(ctx context.Context, postalCode string, page int) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "onemap: rate limit")
	}

	params := url.Values{
		"searchVal":      {postalCode},
		"returnGeom":     {"Y"},
		"getAddrDetails": {"Y"},
		"pageNum":        {strconv.Itoa(page)},
	}

	reqURL := c.baseURL + searchPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "onemap: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "onemap: request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("onemap: status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, resilience.NewPermanentError(err, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "onemap: read body"), 0)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// A garbled payload may be a proxy hiccup, so retry it.
		return nil, resilience.NewTransientError(eris.Wrap(err, "onemap: parse response"), 0)
	}

	return &parsed, nil
}

// collectBuildings appends the valid entries from results to dst. Entries
// registered under a different postal code (or "NIL") are dropped.
func collectBuildings(dst []model.Building, results []searchResult, postalCode string) []model.Building {
	for _, r := range results {
		if r.Postal != postalCode {
			continue
		}
		b := model.Building{
			PostalCode:   postalCode,
			Block:        cleanField(r.BlkNo),
			Street:       cleanField(r.RoadName),
			BuildingName: cleanField(r.Building),
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(r.Latitude), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(r.Longitude), 64)
		if latErr == nil && lonErr == nil {
			b.Latitude = &lat
			b.Longitude = &lon
		}
		dst = append(dst, b)
	}
	return dst
}

// cleanField trims a raw API field and maps OneMap's "NIL" marker to empty.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "NIL") {
		return ""
	}
	return s
}
