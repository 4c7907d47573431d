package config

type SmtpConfig interface {
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpAccount() string
	GetSmtpPassword() string
	GetSmtpSender() string
}

type Smtp struct{}

var _ SmtpConfig = Smtp{}

func (Smtp) GetSmtpHost() string {
	return GetEnv("SMTP_HOST", "smtp.gmail.com")
}

func (Smtp) GetSmtpPort() string {
	return GetEnv("SMTP_PORT", "587")
}

func (Smtp) GetSmtpAccount() string {
	return GetEnv("SMTP_ACCOUNT", "")
}

func (Smtp) GetSmtpPassword() string {
	return GetEnv("SMTP_PASSWORD", "")
}

func (Smtp) GetSmtpSender() string {
	return GetEnv("SMTP_SENDER", "no-reply@localhost")
}
