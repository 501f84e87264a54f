package scan

import "time"

// Settings holds detector thresholds and scan behaviour. Zero values are
// replaced by defaults in WithDefaults.
type Settings struct {
	InactiveDays          int           `mapstructure:"inactive_days"`
	MaxGlobalAdmins       int           `mapstructure:"max_global_admins"`
	MinSecureScorePercent float64       `mapstructure:"min_secure_score_percent"`
	CredentialExpiryDays  int           `mapstructure:"credential_expiry_days"`
	FixDelay              time.Duration `mapstructure:"fix_delay"`
	HistoryLimit          int           `mapstructure:"history_limit"`
	Concurrency           int           `mapstructure:"concurrency"`
	KeepRawData           bool          `mapstructure:"keep_raw_data"`
}

func DefaultSettings() Settings {
	return Settings{
		InactiveDays:          90,
		MaxGlobalAdmins:       4,
		MinSecureScorePercent: 50,
		CredentialExpiryDays:  30,
		FixDelay:              1500 * time.Millisecond,
		HistoryLimit:          10,
	}
}

func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.InactiveDays <= 0 {
		s.InactiveDays = d.InactiveDays
	}
	if s.MaxGlobalAdmins <= 0 {
		s.MaxGlobalAdmins = d.MaxGlobalAdmins
	}
	if s.MinSecureScorePercent <= 0 {
		s.MinSecureScorePercent = d.MinSecureScorePercent
	}
	if s.CredentialExpiryDays <= 0 {
		s.CredentialExpiryDays = d.CredentialExpiryDays
	}
	if s.FixDelay < 0 {
		s.FixDelay = 0
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = d.HistoryLimit
	}
	return s
}
