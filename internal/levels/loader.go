package levels

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParseCampaign parses a campaign YAML document.
func ParseCampaign(data []byte) (Campaign, error) {
	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Campaign{}, fmt.Errorf("levels: parsing campaign: %w", err)
	}
	if len(c.Levels) == 0 {
		return Campaign{}, fmt.Errorf("levels: campaign defines no levels")
	}
	return c, nil
}

// Load builds a registry from the first campaign file found.
// Search order: customPath -> ~/.outpost/campaign.yaml -> ./campaign.yaml
// -> embedded default.
func Load(customPath string) (*Registry, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("levels: reading campaign %s: %w", customPath, err)
		}
		return registryFromBytes(data)
	}

	if userPath := userCampaignPath(); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if reg, err := registryFromBytes(data); err == nil {
				return reg, nil
			}
		}
	}

	if data, err := os.ReadFile("campaign.yaml"); err == nil {
		if reg, err := registryFromBytes(data); err == nil {
			return reg, nil
		}
	}

	return registryFromBytes(defaultCampaignYAML)
}

func registryFromBytes(data []byte) (*Registry, error) {
	c, err := ParseCampaign(data)
	if err != nil {
		return nil, err
	}
	return NewRegistry(c)
}

// userCampaignPath returns ~/.outpost/campaign.yaml, or empty if the home
// directory is unavailable.
func userCampaignPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".outpost", "campaign.yaml")
}
