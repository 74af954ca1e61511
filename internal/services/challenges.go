package services

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnshRaj112/inkwell-backend/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed challenges.json
var defaultChallenges []byte

// ChallengeCatalog is the read-only set of challenges. It is loaded once and never mutated.
type ChallengeCatalog struct {
	list []models.Challenge
	byID map[string]models.Challenge
}

// LoadChallengeCatalog reads the bundled catalog, or the file at path when one is given.
// Files ending in .json are decoded as JSON, anything else as YAML.
func LoadChallengeCatalog(path string) (*ChallengeCatalog, error) {
	var list []models.Challenge
	if path == "" {
		if err := json.Unmarshal(defaultChallenges, &list); err != nil {
			return nil, fmt.Errorf("decode bundled challenges: %w", err)
		}
		return NewChallengeCatalog(list)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read challenges file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &list)
	} else {
		err = yaml.Unmarshal(data, &list)
	}
	if err != nil {
		return nil, fmt.Errorf("decode challenges file %s: %w", path, err)
	}
	return NewChallengeCatalog(list)
}

// NewChallengeCatalog validates list and indexes it by id.
func NewChallengeCatalog(list []models.Challenge) (*ChallengeCatalog, error) {
	c := &ChallengeCatalog{
		list: make([]models.Challenge, 0, len(list)),
		byID: make(map[string]models.Challenge, len(list)),
	}
	for _, ch := range list {
		ch.ID = strings.TrimSpace(ch.ID)
		ch.Title = strings.TrimSpace(ch.Title)
		if ch.ID == "" {
			return nil, fmt.Errorf("challenge %q has no id", ch.Title)
		}
		if ch.Points < 0 {
			return nil, fmt.Errorf("challenge %s has negative points", ch.ID)
		}
		if _, dup := c.byID[ch.ID]; dup {
			return nil, fmt.Errorf("duplicate challenge id %s", ch.ID)
		}
		c.byID[ch.ID] = ch
		c.list = append(c.list, ch)
	}
	return c, nil
}

// All returns the challenges in catalog order.
func (c *ChallengeCatalog) All() []models.Challenge {
	out := make([]models.Challenge, len(c.list))
	copy(out, c.list)
	return out
}

func (c *ChallengeCatalog) Lookup(id string) (models.Challenge, bool) {
	ch, ok := c.byID[strings.TrimSpace(id)]
	return ch, ok
}

// StarterContent is the text an entry for ch is pre-filled with: the description followed by the prompts as bullets.
func StarterContent(ch models.Challenge) string {
	var b strings.Builder
	b.WriteString(ch.Description)
	if len(ch.Prompts) > 0 {
		b.WriteString("\n\n")
		for _, p := range ch.Prompts {
			b.WriteString("• ")
			b.WriteString(p)
			b.WriteString("\n")
		}
	}
	return b.String()
}
