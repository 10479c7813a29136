package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Match is a finalized result of a ranking pass.
type Match struct {
	FirstName string   `json:"first_name" db:"first_name"`
	LastName  string   `json:"last_name" db:"last_name"`
	URL       string   `json:"vk_link" db:"url"`
	Photos    []string `json:"photos" db:"-"`
	Score     float64  `json:"score" db:"-"`
}

type Matches []Match

func (m Matches) Len() int {
	return len(m)
}

func (m Matches) FindByURL(url string) *Match {
	for i := range m {
		if m[i].URL == url {
			return &m[i]
		}
	}
	return nil
}

// Lines renders a numbered human readable listing, one match per line.
func (m Matches) Lines() []string {
	lines := make([]string, 0, len(m))
	for i, match := range m {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, match.Label()))
	}
	return lines
}

func (m Match) Label() string {
	label := fmt.Sprintf("%s %s, vk: %s", m.FirstName, m.LastName, m.URL)
	if len(m.Photos) > 0 {
		label += ", photos: " + strings.Join(m.Photos, ",")
	}
	return label
}

func (m Matches) Pretty() (string, error) {
	pretty, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}

// ToFile writes matches as indented JSON, truncating the file.
func (m Matches) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return err
	}
	return nil
}

func (m Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}
