// Package ics serves the event source contract from iCalendar feeds. Feeds
// are declared in a YAML file, fetched over HTTP with conditional requests,
// parsed into events and expanded for recurrence within the requested window.
package ics

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/popspot-calendar/internal/models"
)

// Feed is one subscribed calendar. Category applies to every event of the
// feed unless the event's CATEGORIES names a known category.
type Feed struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	URL         string             `yaml:"url"`
	Category    models.CategoryKey `yaml:"category"`
	Subcategory string             `yaml:"subcategory"`
	RegionID    string             `yaml:"region_id"`
	RegionName  string             `yaml:"region_name"`
}

// FeedsFile is the YAML document listing feeds.
type FeedsFile struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds reads and validates the feeds file.
func LoadFeeds(path string) ([]Feed, error) {
	if path == "" {
		return nil, errors.New("ics feeds file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ics feeds file: %w", err)
	}
	return ParseFeeds(data)
}

// ParseFeeds decodes a feeds document. Feeds without a URL are rejected and
// missing ids default to the position in the list.
func ParseFeeds(data []byte) ([]Feed, error) {
	var file FeedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode ics feeds file: %w", err)
	}
	feeds := make([]Feed, 0, len(file.Feeds))
	for i, feed := range file.Feeds {
		feed.URL = strings.TrimSpace(feed.URL)
		if feed.URL == "" {
			return nil, fmt.Errorf("ics feed #%d has no url", i+1)
		}
		if feed.ID == "" {
			feed.ID = fmt.Sprintf("feed-%d", i+1)
		}
		if !feed.Category.Valid() {
			feed.Category = models.CategoryPopup
		}
		if feed.RegionID == "" {
			feed.RegionID = models.RegionAll
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}
