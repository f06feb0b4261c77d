package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Sync.validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return nil
}

func (s *SyncConfig) validate() error {
	if s.WorkerCount <= 0 {
		return fmt.Errorf("worker_count must be > 0 (got %d)", s.WorkerCount)
	}
	if s.QueueBuffer <= 0 {
		return fmt.Errorf("queue_buffer must be > 0 (got %d)", s.QueueBuffer)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be > 0 (got %v)", s.PollInterval)
	}
	if s.ClaimBatchSize <= 0 {
		return fmt.Errorf("claim_batch_size must be > 0 (got %d)", s.ClaimBatchSize)
	}
	if s.StaleClaimTTL <= 0 {
		return fmt.Errorf("stale_claim_ttl must be > 0 (got %v)", s.StaleClaimTTL)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", s.MaxRetries)
	}
	if s.RetryBaseDelay < 0 {
		return fmt.Errorf("retry_base_delay must be >= 0 (got %v)", s.RetryBaseDelay)
	}
	return nil
}
