package config

import "time"

// Duel timing configuration
type DuelTimingConfig struct {
	CreationTTL     time.Duration // How long a pending challenge waits for an opponent
	ActivationDelay time.Duration // Delay between acceptance and the task becoming available
	SweepInterval   time.Duration // How often the sweeper re-evaluates time-dependent states
}

var DefaultDuelTimingConfig = DuelTimingConfig{
	CreationTTL:     15 * time.Minute,
	ActivationDelay: 30 * time.Second,
	SweepInterval:   5 * time.Second,
}
