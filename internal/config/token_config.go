package config

import "time"

type TokenConfig interface {
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetResetTokenExpiry() time.Duration
	GetResetCodeExpiry() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return 30 * 24 * time.Hour // 30 days
}

func (Tokens) GetResetTokenExpiry() time.Duration {
	return 10 * time.Minute
}

func (Tokens) GetResetCodeExpiry() time.Duration {
	return 5 * time.Minute
}
