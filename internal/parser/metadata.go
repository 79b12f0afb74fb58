package parser

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/pable/go-pitch-metrics/internal/model"
)

type namedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// matchMetadata is the subset of the match metadata file the store keeps.
type matchMetadata struct {
	ID                 int64    `json:"id"`
	HomeTeam           namedRef `json:"home_team"`
	AwayTeam           namedRef `json:"away_team"`
	HomeTeamScore      int      `json:"home_team_score"`
	AwayTeamScore      int      `json:"away_team_score"`
	DateTime           string   `json:"date_time"`
	Stadium            namedRef `json:"stadium"`
	CompetitionEdition namedRef `json:"competition_edition"`
}

// ReadMetadataFile reads the match metadata JSON at path.
func ReadMetadataFile(path string) (*model.MatchInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return ParseMetadata(data)
}

// ParseMetadata decodes a match metadata document.
func ParseMetadata(data []byte) (*model.MatchInfo, error) {
	var md matchMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if md.ID == 0 {
		return nil, fmt.Errorf("metadata has no match id")
	}
	return &model.MatchInfo{
		ID:            md.ID,
		HomeTeam:      md.HomeTeam.Name,
		AwayTeam:      md.AwayTeam.Name,
		HomeTeamScore: md.HomeTeamScore,
		AwayTeamScore: md.AwayTeamScore,
		DatePlayed:    md.DateTime,
		Stadium:       md.Stadium.Name,
		Competition:   md.CompetitionEdition.Name,
	}, nil
}
