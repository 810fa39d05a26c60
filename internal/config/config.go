// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds every environment-derived value the binaries need.
// It is read once at startup (or once per Lambda cold start) and never
// mutated afterwards.
//
// Unlike service deployments where a missing variable is a deploy bug,
// these tools are meant to run out of the box, so every variable has a
// literal default instead of a fail-fast check.
type Config struct {

	// ---------------------------
	// Project identity
	// ---------------------------

	ProjectName string // tag value and log field, default "job-portal"
	Environment string // deployment stage, default "dev"

	// ---------------------------
	// AWS environment
	// ---------------------------

	AWSRegion string // default "us-east-1"

	// ---------------------------
	// Logging
	// ---------------------------

	LogLevel  string // zerolog level name, default "info"
	LogPretty bool   // console writer instead of JSON, default false
}

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultProjectName = "job-portal"
	DefaultEnvironment = "dev"
	DefaultAWSRegion   = "us-east-1"
)

// Load reads the environment once and returns a fully populated Config.
func Load() Config {
	return Config{
		ProjectName: getenv("PROJECT_NAME", DefaultProjectName),
		Environment: getenv("ENVIRONMENT", DefaultEnvironment),
		AWSRegion:   getenv("AWS_REGION", DefaultAWSRegion),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogPretty:   getenvBool("LOG_PRETTY", false),
	}
}

// FunctionName returns the deployed name of the upload logger function,
// "<project>-<env>-s3-upload-logger".
func (c Config) FunctionName() string {
	return fmt.Sprintf("%s-%s-s3-upload-logger", c.ProjectName, c.Environment)
}

// BucketPrefix returns the naming prefix for project buckets,
// "<project>-<env>-files".
func (c Config) BucketPrefix() string {
	return fmt.Sprintf("%s-%s-files", c.ProjectName, c.Environment)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
