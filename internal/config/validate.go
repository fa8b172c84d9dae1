package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Tasks.VerificationWindow <= 0 {
		return fmt.Errorf("tasks.verification_window must be > 0 (got %v)", c.Tasks.VerificationWindow)
	}
	if c.Tasks.DefaultBoostMultiplier < 1 {
		return fmt.Errorf("tasks.default_boost_multiplier must be >= 1 (got %v)", c.Tasks.DefaultBoostMultiplier)
	}
	if len(c.Webhooks.CallbackToken) < 16 {
		return fmt.Errorf("webhooks.callback_token must be at least 16 characters (got %d)", len(c.Webhooks.CallbackToken))
	}
	if c.Webhooks.Timeout <= 0 {
		return fmt.Errorf("webhooks.timeout must be > 0 (got %v)", c.Webhooks.Timeout)
	}

	return nil
}
