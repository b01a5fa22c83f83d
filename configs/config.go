package config

import "os"

type Config struct {
	ResultsDir  string
	RunPrefix   string
	Mode        string // built-in job set: "official" or "parallel"
	JobsFile    string // optional JSON job-set override; empty means built-in
	ReportCmd   string
	LogLevel    string
	LogEncoding string
	MetricsAddr string // empty disables the /metrics listener

	// Optional S3 mirror for job logs and the manifest.
	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

func LoadConfig() *Config {
	return &Config{
		ResultsDir:  getEnv("RESULTS_DIR", "results"),
		RunPrefix:   getEnv("RUN_PREFIX", "bench"),
		Mode:        getEnv("BENCH_MODE", "official"),
		JobsFile:    getEnv("BENCH_JOBS_FILE", ""),
		ReportCmd:   getEnv("REPORT_CMD", "scripts/build-scoreboard.sh"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "console"),
		MetricsAddr: getEnv("METRICS_ADDR", ""),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Prefix:    getEnv("S3_PREFIX", "benchorch/"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
