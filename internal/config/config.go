package config

type Config interface {
	EnvConfig
	TokenConfig
	SmtpConfig
}

type mainConfig struct {
	EnvVars
	Tokens
	Smtp
}

func New() Config {
	return mainConfig{}
}
