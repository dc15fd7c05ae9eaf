package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/akashuv-21/parase/internal/types"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate evaluation config
	if _, ok := types.ParseMode(c.Evaluation.Mode); !ok {
		errors = append(errors, ValidationError{
			Field:   "evaluation.mode",
			Message: fmt.Sprintf("%s mode not supported", c.Evaluation.Mode),
		})
	}

	if c.Evaluation.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "evaluation.workers",
			Message: "workers must not be negative",
		})
	}

	for _, class := range c.Evaluation.IgnoreClasses {
		if strings.TrimSpace(class) == "" {
			errors = append(errors, ValidationError{
				Field:   "evaluation.ignore_classes",
				Message: "ignore class must not be blank",
			})
			break
		}
	}

	// Validate Database config
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil || u.Scheme == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.TableName == "" || strings.ContainsAny(c.Database.TableName, " ;\"'") {
		errors = append(errors, ValidationError{
			Field:   "database.table_name",
			Message: "table_name must be a plain identifier",
		})
	}

	if c.Database.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Validate Server config
	if c.Server.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Server.Burst < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.burst",
			Message: "burst must be positive",
		})
	}

	if c.Server.MaxBodyBytes < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.max_body_bytes",
			Message: "max_body_bytes must be positive",
		})
	}

	return errors
}
