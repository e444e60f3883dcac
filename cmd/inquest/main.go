// Inquest investigation runner — loads configuration, wires the LLM and
// MCP clients, and drives an alert through a configured stage. Paused runs
// can be resumed in place with -max-resumes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/inquest/pkg/agent"
	"github.com/codeready-toolchain/inquest/pkg/config"
	"github.com/codeready-toolchain/inquest/pkg/llm"
	"github.com/codeready-toolchain/inquest/pkg/masking"
	"github.com/codeready-toolchain/inquest/pkg/mcp"
	"github.com/codeready-toolchain/inquest/pkg/queue"
	"github.com/codeready-toolchain/inquest/pkg/runbook"
	"github.com/codeready-toolchain/inquest/pkg/slack"
	"github.com/codeready-toolchain/inquest/pkg/stage"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	stageName := flag.String("stage", "", "Stage to run (required)")
	alertType := flag.String("alert-type", "", "Alert type label")
	alertFile := flag.String("alert-file", "", "Path to a file with the alert payload (required)")
	runbookURL := flag.String("runbook-url", "", "Runbook URL for the alert (GitHub blob URLs supported)")
	workers := flag.Int("workers", 2, "Worker pool size")
	maxResumes := flag.Int("max-resumes", 0, "Automatic resume attempts after a pause")
	flag.Parse()

	if *stageName == "" || *alertFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load .env file from config directory
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	}

	alertData, err := os.ReadFile(*alertFile)
	if err != nil {
		slog.Error("Failed to read alert file", "path", *alertFile, "error", err)
		os.Exit(1)
	}

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	llmClient := llm.NewClient()
	defer func() { _ = llmClient.Close() }()

	masker := masking.NewService(cfg.MCPServerRegistry, cfg.Defaults.ResolvedAlertMasking())

	executor := stage.NewExecutor(cfg, llmClient, mcp.NewFactory(cfg.MCPServerRegistry, masker))

	pool := queue.NewWorkerPool(executor, *workers)

	// Cancel in-flight sessions on SIGINT/SIGTERM; workers observe the
	// cancellation between iterations.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool.Start(ctx)
	defer pool.Stop()

	// Runbook fetch is fail-open: the investigation still runs without it.
	runbookContent := ""
	if *runbookURL != "" {
		content, err := runbook.NewService(cfg.Runbook).Resolve(ctx, *runbookURL)
		if err != nil {
			slog.Warn("Could not fetch runbook, continuing without it",
				"url", *runbookURL, "error", err)
		} else {
			runbookContent = content
		}
	}

	sessionID := uuid.New().String()
	input := stage.Input{
		SessionID: sessionID,
		StageName: *stageName,
		AlertType: *alertType,
		AlertData: masker.MaskAlertData(string(alertData)),
		Runbook:   runbookContent,
	}

	slog.Info("Submitting investigation",
		"session_id", sessionID,
		"stage", *stageName,
		"alert_type", *alertType)

	result, err := runJob(ctx, pool, queue.Job{Input: input})
	if err != nil {
		slog.Error("Investigation failed to run", "error", err)
		os.Exit(1)
	}

	// Resume loop: each pause carries the conversation forward with a
	// fresh iteration budget.
	for i := 0; i < *maxResumes && result.Status == agent.ExecutionStatusPaused; i++ {
		slog.Info("Stage paused, resuming",
			"attempt", i+1,
			"paused_branches", len(result.PausedBranches()))
		result, err = runJob(ctx, pool, queue.Job{Input: input, Prior: result})
		if err != nil {
			slog.Error("Resume failed to run", "error", err)
			os.Exit(1)
		}
	}

	printResult(result)
	notifySlack(ctx, cfg.Slack, sessionID, *alertType, result)
	if result.Status != agent.ExecutionStatusCompleted {
		os.Exit(1)
	}
}

// notifySlack posts the result when a Slack channel is configured. Delivery
// is fail-open; a nil service is a no-op.
func notifySlack(ctx context.Context, cfg *config.SlackConfig, sessionID, alertType string, result *stage.Result) {
	if cfg == nil {
		return
	}
	svc := slack.NewService(os.Getenv(cfg.TokenEnv), cfg.Channel)

	errMsg := ""
	if result.Error != nil {
		errMsg = result.Error.Error()
	}
	svc.NotifyResult(ctx, slack.NotificationInput{
		SessionID:     sessionID,
		StageName:     result.StageName,
		AlertType:     alertType,
		Status:        string(result.Status),
		FinalAnalysis: result.FinalAnalysis,
		ErrorMessage:  errMsg,
	})
}

// runJob submits one job and blocks until it finishes or the context ends.
func runJob(ctx context.Context, pool *queue.WorkerPool, job queue.Job) (*stage.Result, error) {
	record, err := pool.Submit(job)
	if err != nil {
		return nil, err
	}
	select {
	case <-record.Done:
	case <-ctx.Done():
		// The worker observes the cancelled context and finishes the job
		// with a cancelled result; wait for it.
		<-record.Done
	}
	return record.Result()
}

func printResult(result *stage.Result) {
	fmt.Printf("Stage:  %s\n", result.StageName)
	fmt.Printf("Status: %s\n", result.Status)
	for _, b := range result.Branches {
		status := "unknown"
		errMsg := ""
		if b.Execution != nil {
			status = string(b.Execution.Status)
			errMsg = b.Execution.ErrorMessage()
		}
		fmt.Printf("  branch %-24s %-10s %s\n", b.Metadata.Name, status, errMsg)
	}
	if result.Error != nil {
		fmt.Printf("Error: %v\n", result.Error)
	}
	if result.FinalAnalysis != "" {
		fmt.Printf("\n%s\n", result.FinalAnalysis)
	}
}
