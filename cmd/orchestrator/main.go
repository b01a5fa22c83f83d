package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	config "benchorch/configs"
	"benchorch/pkg/logger"
	"benchorch/pkg/metrics"
	"benchorch/pkg/orchestrator"
	"benchorch/pkg/report"
	"benchorch/pkg/runner"
	"benchorch/pkg/storage"
)

func main() {
	cfg := config.LoadConfig()

	mode := flag.String("mode", cfg.Mode, "built-in job set: official or parallel")
	resultsDir := flag.String("results", cfg.ResultsDir, "shared results directory")
	jobsFile := flag.String("jobs", cfg.JobsFile, "JSON job-set file overriding the built-in sets")
	reportCmd := flag.String("report", cfg.ReportCmd, "scoreboard generator command (empty skips reporting)")
	flag.Parse()

	log, err := logger.Init(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Output:   "stderr",
		Service:  "benchorch",
	})
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				log.Warn("metrics listener failed", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()

	var jobs []runner.Descriptor
	if *jobsFile != "" {
		jobs, err = orchestrator.LoadJobsFile(*jobsFile)
	} else {
		jobs, err = orchestrator.JobsForMode(*mode, *resultsDir)
	}
	if err != nil {
		log.Fatal("resolving job set", zap.Error(err))
	}

	logs, err := storage.NewLocalLogStore(*resultsDir + "/logs")
	if err != nil {
		log.Fatal("creating log store", zap.Error(err))
	}

	var mirror storage.LogStore
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3LogStore(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Warn("S3 mirror unavailable, continuing local-only", zap.Error(err))
		} else {
			mirror = s3Store
		}
	}

	var trigger *report.Trigger
	if *reportCmd != "" {
		trigger = report.NewTrigger(*reportCmd)
	}

	core, err := orchestrator.NewCore(orchestrator.Options{
		ResultsDir: *resultsDir,
		RunPrefix:  cfg.RunPrefix,
		Jobs:       jobs,
		Trigger:    trigger,
		Logs:       logs,
		Mirror:     mirror,
		Log:        log,
	})
	if err != nil {
		log.Fatal("configuring orchestrator", zap.Error(err))
	}

	// Job and report failures are recorded in the manifest, not in our exit
	// status; only an unwritable manifest fails the process.
	if _, err := core.Run(ctx); err != nil {
		log.Error("run failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
