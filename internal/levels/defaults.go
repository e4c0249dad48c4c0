package levels

import (
	_ "embed"
)

//go:embed defaults/campaign.yaml
var defaultCampaignYAML []byte

// DefaultCampaign returns the registry built from the embedded campaign.
func DefaultCampaign() (*Registry, error) {
	return registryFromBytes(defaultCampaignYAML)
}
