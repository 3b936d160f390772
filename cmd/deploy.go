package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"depctl/internal/builder"
	"depctl/internal/config"
	"depctl/internal/deployer"
	"depctl/internal/docker"
	"depctl/internal/execx"
	"depctl/internal/git"
	"depctl/internal/health"
	"depctl/internal/orchestrator"
	"depctl/internal/registry"
	"depctl/internal/resolver"
	"depctl/internal/status"
	"depctl/internal/task"
	"depctl/pkg/logging"
)

var (
	deployEnvFile      string
	deployForceRebuild bool
	deployStrict       bool
	deployTimeout      time.Duration
	deployInterval     time.Duration
	deployMaxWorkers   int
	deployVerbose      bool
)

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <services|all> [branch]",
		Short: "Deploy one or more services",
		Long: `Deploy a comma-separated list of services (or the literal "all")
from the given branch (default "main").

Each service runs an independent pipeline: resolve source, build image,
replace container, await health. A progress table is reprinted on an
interval until every pipeline finishes, then a final tally is printed
along with the captured logs of every service that did not succeed.

Exit codes: 0 when every service reaches Success, 1 when any service
Failed, 2 when none failed but some never became healthy.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDeploy,
	}

	cmd.Flags().StringVar(&deployEnvFile, "env-file", ".env", "Path to the shared environment file")
	cmd.Flags().BoolVar(&deployForceRebuild, "force-rebuild", false, "Rebuild images without the layer cache")
	cmd.Flags().BoolVar(&deployStrict, "strict", false, "Fail services whose source came from a fallback (wrong branch or stub)")
	cmd.Flags().DurationVar(&deployTimeout, "timeout", 0, "Health check timeout per service (overrides settings)")
	cmd.Flags().DurationVar(&deployInterval, "interval", 0, "Health check interval (overrides settings)")
	cmd.Flags().IntVar(&deployMaxWorkers, "max-workers", 0, "Maximum concurrent service pipelines (overrides settings)")
	cmd.Flags().BoolVarP(&deployVerbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runDeploy(cmd *cobra.Command, args []string) error {
	branch := "main"
	if len(args) > 1 {
		branch = args[1]
	}

	cfg, err := config.Load(deployEnvFile)
	if err != nil {
		return err
	}
	applyDeployOverrides(&cfg.Settings)

	workDir, err := cfg.WorkDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("cannot create workspace directory %s: %w", workDir, err)
	}

	level := logging.LevelInfo
	if deployVerbose {
		level = logging.LevelDebug
	}
	logging.InitWithRunLog(level, os.Stderr, filepath.Join(workDir, "depctl.log"))
	defer logging.Close()

	runID := uuid.NewString()
	logging.Info("Deploy", "Run %s starting", runID)

	reg := registry.New(cfg.Settings.Services)
	store := status.NewStore(cfg.Settings.LogTailLimit, status.RunDir(runID))

	runner := execx.NewRunner()
	dockerClient := docker.NewClient(runner)
	monitor := health.New(dockerClient, 5*time.Second)

	taskRunner := &task.Runner{
		Resolver:       resolverFor(runner, workDir),
		Builder:        builder.New(dockerClient),
		Deployer:       deployer.New(dockerClient, reg, cfg),
		Monitor:        monitor,
		Store:          store,
		HealthTimeout:  cfg.Settings.HealthTimeout,
		HealthInterval: cfg.Settings.HealthInterval,
	}

	orch := orchestrator.New(orchestrator.Config{
		Registry:     reg,
		Store:        store,
		Runner:       taskRunner,
		MaxWorkers:   cfg.Settings.MaxWorkers,
		PollInterval: cfg.Settings.PollInterval,
		Out:          cmd.OutOrStdout(),
	})

	summary := orch.RunAll(cmd.Context(), orchestrator.DeploymentRequest{
		Services:     args[0],
		Branch:       branch,
		ForceRebuild: deployForceRebuild,
		Strict:       deployStrict || cfg.Settings.StrictSources,
	})
	summary.Print(cmd.OutOrStdout())

	logging.Info("Deploy", "Run %s finished: %d success, %d failed, %d unhealthy",
		runID, summary.Success, summary.Failed, summary.Unhealthy)

	if code := summary.ExitCode(); code != orchestrator.ExitSuccess {
		logging.Close()
		os.Exit(code)
	}
	return nil
}

func resolverFor(runner execx.Runner, workDir string) *resolver.Resolver {
	return resolver.New(git.NewCloner(runner), workDir)
}

func applyDeployOverrides(settings *config.Settings) {
	if deployTimeout > 0 {
		settings.HealthTimeout = deployTimeout
	}
	if deployInterval > 0 {
		settings.HealthInterval = deployInterval
	}
	if deployMaxWorkers > 0 {
		settings.MaxWorkers = deployMaxWorkers
	}
}
