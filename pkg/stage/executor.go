package stage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/inquest/pkg/agent"
	"github.com/codeready-toolchain/inquest/pkg/agent/controller"
	"github.com/codeready-toolchain/inquest/pkg/agent/prompt"
	"github.com/codeready-toolchain/inquest/pkg/config"
)

// ToolExecutorFactory creates tool executors bound to a set of MCP servers.
// The MCP-backed implementation is in pkg/mcp; nil means tools disabled
// (branches run with a stub executor).
type ToolExecutorFactory interface {
	NewToolExecutor(ctx context.Context, serverIDs []string) (agent.ToolExecutor, error)
}

// Executor runs stages: parallel branch fan-out, policy aggregation,
// synthesis, and partial resume. Stateless across runs.
type Executor struct {
	cfg           *config.Config
	llmClient     agent.LLMClient
	toolFactory   ToolExecutorFactory
	promptBuilder *prompt.PromptBuilder
	controller    *controller.ReActController
}

// NewExecutor creates a stage executor.
// toolFactory may be nil (MCP disabled — branches get a stub tool executor).
func NewExecutor(cfg *config.Config, llmClient agent.LLMClient, toolFactory ToolExecutorFactory) *Executor {
	return &Executor{
		cfg:           cfg,
		llmClient:     llmClient,
		toolFactory:   toolFactory,
		promptBuilder: prompt.NewPromptBuilder(cfg.MCPServerRegistry),
		controller:    controller.NewReActController(),
	}
}

// executionConfig wraps a stage agent config with its display name
// (differs from the config name for replicas).
type executionConfig struct {
	agentConfig config.StageAgentConfig
	displayName string
}

// indexedBranchResult pairs a BranchResult with its original launch index.
type indexedBranchResult struct {
	index  int
	result BranchResult
}

// Run executes all branches of the stage concurrently and aggregates.
// Returns (nil, error) only when the stage itself cannot start (unknown
// stage name); branch failures are reported inside the Result.
func (e *Executor) Run(ctx context.Context, input Input) (*Result, error) {
	stageCfg, err := e.cfg.GetStage(input.StageName)
	if err != nil {
		return nil, fmt.Errorf("stage %q not found: %w", input.StageName, err)
	}

	configs := buildConfigs(stageCfg)
	logger := slog.With(
		"session_id", input.SessionID,
		"stage_name", input.StageName,
		"branch_count", len(configs),
	)
	logger.Info("Starting stage", "parallel_type", string(stageCfg.ParallelType()))

	// One goroutine per branch, even when there is just one.
	results := make(chan indexedBranchResult, len(configs))
	var wg sync.WaitGroup

	for i, cfg := range configs {
		wg.Add(1)
		go func(idx int, execCfg executionConfig) {
			defer wg.Done()
			br := e.executeBranch(ctx, input, stageCfg, execCfg, idx, nil)
			results <- indexedBranchResult{index: idx, result: br}
		}(i, cfg)
	}

	wg.Wait()
	close(results)

	branches := collectAndSort(results)
	return e.finalize(ctx, input, stageCfg, branches)
}

// Resume continues a stage whose prior run paused. Only paused branches
// re-execute, from their carried conversations with a fresh iteration
// budget; all other branch results are carried forward unchanged.
func (e *Executor) Resume(ctx context.Context, input Input, prior *Result) (*Result, error) {
	if prior == nil {
		return nil, fmt.Errorf("cannot resume: no prior result")
	}
	stageCfg, err := e.cfg.GetStage(input.StageName)
	if err != nil {
		return nil, fmt.Errorf("stage %q not found: %w", input.StageName, err)
	}

	configs := buildConfigs(stageCfg)
	if len(prior.Branches) != len(configs) {
		return nil, fmt.Errorf("cannot resume: prior result has %d branches, stage %q has %d",
			len(prior.Branches), input.StageName, len(configs))
	}
	paused := prior.PausedBranches()
	if len(paused) == 0 {
		return nil, fmt.Errorf("cannot resume: stage %q has no paused branches", input.StageName)
	}

	slog.Info("Resuming stage",
		"session_id", input.SessionID,
		"stage_name", input.StageName,
		"paused_branches", len(paused),
		"total_branches", len(configs))

	results := make(chan indexedBranchResult, len(paused))
	var wg sync.WaitGroup

	for _, idx := range paused {
		conversation := prior.Branches[idx].Execution.PausedConversation
		if conversation == nil {
			return nil, fmt.Errorf("cannot resume: branch %d paused without a conversation", idx)
		}
		wg.Add(1)
		go func(idx int, execCfg executionConfig, conv *agent.Conversation) {
			defer wg.Done()
			br := e.executeBranch(ctx, input, stageCfg, execCfg, idx, conv.Clone())
			results <- indexedBranchResult{index: idx, result: br}
		}(idx, configs[idx], conversation)
	}

	wg.Wait()
	close(results)

	// Merge: re-executed branches replace their slots, the rest carry over.
	branches := make([]BranchResult, len(prior.Branches))
	copy(branches, prior.Branches)
	for _, ibr := range collectIndexed(results) {
		branches[ibr.index] = ibr.result
	}

	return e.finalize(ctx, input, stageCfg, branches)
}

// finalize aggregates branch results and runs synthesis when warranted.
func (e *Executor) finalize(ctx context.Context, input Input, stageCfg *config.StageConfig, branches []BranchResult) (*Result, error) {
	// A cancellation observed while branches ran is fatal for the whole
	// stage. Polled here after fan-in; branches are never torn down early.
	if err := ctx.Err(); err != nil {
		slog.Warn("Stage cancelled",
			"session_id", input.SessionID,
			"stage_name", input.StageName,
			"error", err)
		return &Result{
			StageName: input.StageName,
			Status:    agent.ExecutionStatusCancelled,
			Branches:  branches,
			Error:     fmt.Errorf("stage cancelled: %w", err),
		}, nil
	}

	policy := e.resolvedSuccessPolicy(stageCfg)
	status := aggregateStatus(branches, policy)
	result := &Result{
		StageName: input.StageName,
		Status:    status,
		Branches:  branches,
		Error:     aggregateError(branches, status, policy),
	}

	if status != agent.ExecutionStatusCompleted {
		slog.Warn("Stage did not complete",
			"session_id", input.SessionID,
			"stage_name", input.StageName,
			"status", string(status),
			"error", result.Error)
		return result, nil
	}

	if len(branches) == 1 {
		result.FinalAnalysis = branches[0].Execution.FinalAnalysis
		return result, nil
	}

	// Synthesis is mandatory for multi-branch stages, no opt-out.
	finalAnalysis, err := e.runSynthesis(ctx, input, stageCfg, branches)
	if err != nil {
		// Branch results stay intact so callers can inspect or retry;
		// only the combined analysis is missing.
		result.Status = agent.ExecutionStatusFailed
		result.Error = fmt.Errorf("synthesis failed: %w", err)
		return result, nil
	}
	result.FinalAnalysis = finalAnalysis
	return result, nil
}

// executeBranch runs a single branch to its terminal result. prior is nil
// for fresh runs and the carried conversation for resumed branches.
func (e *Executor) executeBranch(
	ctx context.Context,
	input Input,
	stageCfg *config.StageConfig,
	execCfg executionConfig,
	index int,
	prior *agent.Conversation,
) BranchResult {
	logger := slog.With(
		"session_id", input.SessionID,
		"stage_name", input.StageName,
		"agent_name", execCfg.displayName,
		"branch_index", index,
	)

	meta := BranchMetadata{
		Name:      execCfg.displayName,
		Index:     index,
		StartedAt: time.Now(),
	}

	resolved, err := agent.ResolveAgentConfig(e.cfg, stageCfg, execCfg.agentConfig)
	if err != nil {
		logger.Error("Failed to resolve agent config", "error", err)
		meta.CompletedAt = time.Now()
		return BranchResult{
			Metadata: meta,
			Execution: &agent.ExecutionResult{
				Status: agent.ExecutionStatusFailed,
				Error:  fmt.Errorf("failed to resolve agent config: %w", err),
			},
		}
	}
	meta.LLMProvider = resolved.LLMProviderName
	meta.Model = resolved.LLMProvider.Model

	toolExecutor, err := e.newToolExecutor(ctx, resolved.MCPServers)
	if err != nil {
		logger.Error("Failed to create tool executor", "error", err)
		meta.CompletedAt = time.Now()
		return BranchResult{
			Metadata: meta,
			Execution: &agent.ExecutionResult{
				Status: agent.ExecutionStatusFailed,
				Error:  fmt.Errorf("failed to create tool executor: %w", err),
			},
		}
	}
	defer func() { _ = toolExecutor.Close() }()

	execCtx := &agent.ExecutionContext{
		SessionID:    input.SessionID,
		ExecutionID:  uuid.New().String(),
		AgentName:    execCfg.displayName,
		AgentIndex:   index,
		AlertData:    input.AlertData,
		AlertType:    input.AlertType,
		Runbook:      input.Runbook,
		Config:       resolved,
		LLMClient:    e.llmClient,
		ToolExecutor: toolExecutor,
		Strategy:     prompt.NewInvestigationStrategy(e.promptBuilder),
	}

	var execution *agent.ExecutionResult
	if prior != nil {
		execution, err = e.controller.Resume(ctx, execCtx, prior)
	} else {
		execution, err = e.controller.Run(ctx, execCtx)
	}
	meta.CompletedAt = time.Now()

	if err != nil {
		logger.Error("Branch execution failed", "error", err)
		execution = &agent.ExecutionResult{
			Status: agent.ExecutionStatusFailed,
			Error:  err,
		}
	}

	logger.Info("Branch finished",
		"status", string(execution.Status),
		"duration", meta.CompletedAt.Sub(meta.StartedAt),
		"tokens", execution.TokensUsed.TotalTokens)

	return BranchResult{Metadata: meta, Execution: execution}
}

// runSynthesis combines the completed branch analyses into one final
// analysis via a tool-less controller run.
func (e *Executor) runSynthesis(
	ctx context.Context,
	input Input,
	stageCfg *config.StageConfig,
	branches []BranchResult,
) (string, error) {
	analyses := make([]prompt.BranchAnalysis, 0, len(branches))
	for _, b := range branches {
		if b.Execution == nil || !b.Execution.Status.IsTerminalSuccess() {
			continue
		}
		analyses = append(analyses, prompt.BranchAnalysis{
			Name:     b.Metadata.Name,
			Analysis: b.Execution.FinalAnalysis,
		})
	}
	if len(analyses) == 0 {
		return "", fmt.Errorf("no completed branches to synthesize")
	}

	// Synthesis agent defaults to the stage's first agent; both the agent
	// and its provider can be overridden per stage.
	agentCfg := config.StageAgentConfig{Name: stageCfg.Agents[0].Name}
	if stageCfg.Synthesis != nil {
		if stageCfg.Synthesis.Agent != "" {
			agentCfg.Name = stageCfg.Synthesis.Agent
		}
		if stageCfg.Synthesis.LLMProvider != "" {
			agentCfg.LLMProvider = stageCfg.Synthesis.LLMProvider
		}
	}

	resolved, err := agent.ResolveAgentConfig(e.cfg, stageCfg, agentCfg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve synthesis agent config: %w", err)
	}

	execCtx := &agent.ExecutionContext{
		SessionID:    input.SessionID,
		ExecutionID:  uuid.New().String(),
		AgentName:    agentCfg.Name + "-synthesis",
		AlertData:    input.AlertData,
		AlertType:    input.AlertType,
		Config:       resolved,
		LLMClient:    e.llmClient,
		ToolExecutor: agent.NewStubToolExecutor(nil),
		Strategy:     prompt.NewSynthesisStrategy(e.promptBuilder, analyses),
	}

	result, err := e.controller.Run(ctx, execCtx)
	if err != nil {
		return "", err
	}
	if result.Status != agent.ExecutionStatusCompleted {
		if result.Error != nil {
			return "", fmt.Errorf("synthesis run %s: %w", result.Status, result.Error)
		}
		return "", fmt.Errorf("synthesis run ended %s without an analysis", result.Status)
	}
	return result.FinalAnalysis, nil
}

// newToolExecutor binds the branch to its MCP servers, or to a stub when
// tools are disabled or the branch has no servers.
func (e *Executor) newToolExecutor(ctx context.Context, serverIDs []string) (agent.ToolExecutor, error) {
	if e.toolFactory == nil || len(serverIDs) == 0 {
		return agent.NewStubToolExecutor(nil), nil
	}
	return e.toolFactory.NewToolExecutor(ctx, serverIDs)
}

// resolvedSuccessPolicy resolves the success policy for a stage:
// stage config > system default > fallback SuccessPolicyAny.
func (e *Executor) resolvedSuccessPolicy(stageCfg *config.StageConfig) config.SuccessPolicy {
	if stageCfg.SuccessPolicy != "" {
		return stageCfg.SuccessPolicy
	}
	return e.cfg.Defaults.ResolvedSuccessPolicy()
}

// buildConfigs creates execution configs for a stage. Replica stages
// replicate the first agent N times with numbered display names; otherwise
// one config per agent. Deterministic so resume maps indexes correctly.
func buildConfigs(stageCfg *config.StageConfig) []executionConfig {
	if stageCfg.Replicas > 1 {
		base := stageCfg.Agents[0]
		configs := make([]executionConfig, stageCfg.Replicas)
		for i := 0; i < stageCfg.Replicas; i++ {
			configs[i] = executionConfig{
				agentConfig: base,
				displayName: fmt.Sprintf("%s-%d", base.Name, i+1),
			}
		}
		return configs
	}

	configs := make([]executionConfig, len(stageCfg.Agents))
	for i, agentCfg := range stageCfg.Agents {
		configs[i] = executionConfig{
			agentConfig: agentCfg,
			displayName: agentCfg.Name,
		}
	}
	return configs
}

// collectAndSort drains the result channel and returns branch results
// sorted by their original launch index.
func collectAndSort(ch <-chan indexedBranchResult) []BranchResult {
	indexed := collectIndexed(ch)
	results := make([]BranchResult, len(indexed))
	for i, ibr := range indexed {
		results[i] = ibr.result
	}
	return results
}

func collectIndexed(ch <-chan indexedBranchResult) []indexedBranchResult {
	var indexed []indexedBranchResult
	for ibr := range ch {
		indexed = append(indexed, ibr)
	}
	sort.Slice(indexed, func(i, j int) bool {
		return indexed[i].index < indexed[j].index
	})
	return indexed
}

// aggregateStatus folds branch statuses into one stage status. A paused
// branch always pauses the whole stage so the caller can resume it;
// otherwise the success policy decides, and uniform failure kinds are
// preserved for non-successful stages.
func aggregateStatus(branches []BranchResult, policy config.SuccessPolicy) agent.ExecutionStatus {
	var completed, failed, timedOut, cancelled, paused int

	for _, b := range branches {
		status := agent.ExecutionStatusFailed
		if b.Execution != nil {
			status = b.Execution.Status
		}
		switch status {
		case agent.ExecutionStatusCompleted:
			completed++
		case agent.ExecutionStatusPaused:
			paused++
		case agent.ExecutionStatusTimedOut:
			timedOut++
		case agent.ExecutionStatusCancelled:
			cancelled++
		default:
			failed++
		}
	}

	if paused > 0 {
		return agent.ExecutionStatusPaused
	}

	nonSuccess := failed + timedOut + cancelled

	switch policy {
	case config.SuccessPolicyAll:
		if nonSuccess == 0 {
			return agent.ExecutionStatusCompleted
		}
	default: // SuccessPolicyAny
		if completed > 0 {
			return agent.ExecutionStatusCompleted
		}
	}

	// Stage failed — use the most specific terminal status when uniform
	if nonSuccess == timedOut {
		return agent.ExecutionStatusTimedOut
	}
	if nonSuccess == cancelled {
		return agent.ExecutionStatusCancelled
	}
	return agent.ExecutionStatusFailed
}

// aggregateError builds a descriptive error for non-completed stages.
// Single-branch: passthrough. Multi-branch: lists each non-successful branch.
func aggregateError(branches []BranchResult, status agent.ExecutionStatus, policy config.SuccessPolicy) error {
	if status == agent.ExecutionStatusCompleted || status == agent.ExecutionStatusPaused {
		return nil
	}

	if len(branches) == 1 {
		if branches[0].Execution != nil {
			return branches[0].Execution.Error
		}
		return fmt.Errorf("branch produced no result")
	}

	var nonSuccess int
	for _, b := range branches {
		if b.Execution == nil || !b.Execution.Status.IsTerminalSuccess() {
			nonSuccess++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "parallel stage failed: %d/%d branches failed (policy: %s)", nonSuccess, len(branches), policy)

	sb.WriteString("\n\nFailed branches:")
	for _, b := range branches {
		if b.Execution != nil && b.Execution.Status.IsTerminalSuccess() {
			continue
		}
		branchStatus := "unknown"
		errMsg := "unknown error"
		if b.Execution != nil {
			branchStatus = string(b.Execution.Status)
			if b.Execution.Error != nil {
				errMsg = b.Execution.Error.Error()
			}
		}
		fmt.Fprintf(&sb, "\n  - %s (%s): %s", b.Metadata.Name, branchStatus, errMsg)
	}

	return fmt.Errorf("%s", sb.String())
}
