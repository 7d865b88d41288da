package module

import (
	"time"

	"adrelay/internal/platform/config"
)

// Options holds configuration settings for the audiences module
type Options struct {
	AdvertiserID string

	PartnerBaseURL     string
	PartnerAccessToken string
	PartnerTimeout     time.Duration
	PartnerMaxRetries  int
	PartnerRetryBase   time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	af := cfg.Prefix("AUDIENCES_")
	return Options{
		AdvertiserID:       af.MayString("ADVERTISER_ID", ""),
		PartnerBaseURL:     af.MustString("PARTNER_BASE_URL"),
		PartnerAccessToken: af.MayString("PARTNER_ACCESS_TOKEN", ""),
		PartnerTimeout:     af.MayDuration("PARTNER_TIMEOUT", 10*time.Second),
		PartnerMaxRetries:  af.MayInt("PARTNER_MAX_RETRIES", 5),
		PartnerRetryBase:   af.MayDuration("PARTNER_RETRY_BASE", 500*time.Millisecond),
	}
}
