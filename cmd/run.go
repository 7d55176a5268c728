package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/li-responder/internal/admission"
	"github.com/spigell/li-responder/internal/ai"
	"github.com/spigell/li-responder/internal/ai/gemini"
	"github.com/spigell/li-responder/internal/apply"
	"github.com/spigell/li-responder/internal/browser"
	"github.com/spigell/li-responder/internal/filtering"
	"github.com/spigell/li-responder/internal/linkedin"
	"github.com/spigell/li-responder/internal/linkedin/form"
	"github.com/spigell/li-responder/internal/logger"
	"github.com/spigell/li-responder/internal/pacing"
	"github.com/spigell/li-responder/internal/scoring"
	"github.com/spigell/li-responder/internal/secrets"
	"github.com/spigell/li-responder/internal/session"
)

const (
	PromptYes               = "Yes"
	PromptNo                = "No"
	PromptReportByCompanies = "Report by companies"
	PromptPostingsToFile    = "Dump postings to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByCompanies, PromptPostingsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Log in, search jobs and apply to the ones matching the resume",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before applying")
	runCmd.Flags().Bool("dry-run", false, "score and log admission decisions without applying")
	runCmd.Flags().StringP("exclude-file", "e", "", "file with postings to exclude (as written by 'Dump postings to file')")
	runCmd.Flags().StringSlice("disable-filter", nil, "discovery filters to skip (duplicates, excluded_companies, exclude_file, daily_cap)")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := getConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "getting a config: %v\n", err)
		os.Exit(1)
	}

	runID := uuid.NewString()

	base, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), config.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %v\n", err)
		os.Exit(1)
	}
	log := base.With(zap.String(logger.FieldRunID, runID))
	defer log.Sync()

	log.Info("starting the li-responder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	// Fatal skips deferred calls, so it runs only after execute released the browser.
	if err := execute(ctx, cmd, config, log, logger.Audit(base, runID)); err != nil {
		if errors.Is(err, errExit) {
			return
		}
		log.Fatal("exiting", zap.Error(err))
	}
}

func execute(ctx context.Context, cmd *cobra.Command, config *Config, log, audit *zap.Logger) (err error) {
	if err := loadEnvFile(config.EnvFile, log); err != nil {
		return err
	}

	creds, err := secrets.LoadCredentials(
		secrets.Source{Name: "linkedin email", Env: "LINKEDIN_EMAIL", File: config.Credentials.EmailFile},
		secrets.Source{Name: "linkedin password", Env: "LINKEDIN_PASSWORD", File: config.Credentials.PasswordFile},
	)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	log.Debug("credentials loaded", zap.Stringer("credentials", creds))

	scorer, profile, err := prepareScoring(ctx, config, log)
	if err != nil {
		return err
	}

	pacingProfile, err := pacing.DefaultProfile().WithOverrides(config.Pacing)
	if err != nil {
		return err
	}
	pacer := pacing.New(pacingProfile, log.Named("pacing"))

	browserSession, err := browser.Launch(ctx, config.Browser, log.Named("browser"))
	if err != nil {
		return err
	}
	defer browserSession.Close()

	client := linkedin.New(browserSession, pacer, promptOperator{}, log.Named("linkedin"))

	defer func() {
		if r := recover(); r != nil {
			d := client.Capture(context.WithoutCancel(ctx), linkedin.CriticalError)
			log.Error("critical error encountered", append(d.Fields(), zap.Any("panic", r), zap.Stack("stack"))...)
			err = fmt.Errorf("critical error: %v", r)
		}
	}()

	if err := client.Login(ctx, creds); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	postings, err := client.Search(ctx, &linkedin.SearchParams{
		Keywords:  config.JobKeywords,
		Locations: config.Locations,
		EasyApply: true,
		Posted:    config.Posted,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if postings.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no postings found"))
		return nil
	}

	steps := filtering.Default()
	disabled, _ := cmd.Flags().GetStringSlice("disable-filter")
	for _, name := range disabled {
		filtering.DisableByName(steps, name, "disabled by flag")
	}

	postings, err = filtering.Run(ctx, &filtering.Config{
		Companies:   config.Exclude.Companies,
		ExcludeFile: viper.GetString("exclude-file"),
		DailyCap:    config.MaxApplicationsPerDay,
	}, filtering.Deps{Logger: log.Named("filtering")}, steps, postings)
	if err != nil {
		return fmt.Errorf("filtering failed: %w", err)
	}
	logFilters(log, steps)

	if postings.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no postings left after filters"))
		return nil
	}

	if !flagSet(cmd, "auto-approve") {
		if err := confirm(log, postings); err != nil {
			return err
		}
	}

	machine, err := apply.New(form.New(client, log.Named("form")), pacer, apply.Config{
		MaxPages:    config.MaxApplicationPages,
		PhoneNumber: config.PhoneNumber,
		ResumePath:  config.ResumePDFPath,
		Timeouts:    config.Timeouts,
	}, log.Named("apply"))
	if err != nil {
		return err
	}

	orchestrator := session.New(session.Deps{
		Site:    client,
		Scorer:  scorer,
		Applier: machine,
		Pacer:   pacer,
		Logger:  log,
		Audit:   audit,
	}, admission.Policy{Threshold: config.MinSimilarityScore})
	orchestrator.DryRun = flagSet(cmd, "dry-run")

	summary := orchestrator.Run(ctx, postings, profile)
	audit.Info("run summary", summary.Fields()...)
	log.Info("session completed")

	return nil
}

func logFilters(log *zap.Logger, steps []filtering.Filter) {
	for _, status := range filtering.Describe(steps) {
		fields := []zap.Field{zap.String("name", status.Name), zap.Bool("enabled", status.Enabled)}
		if status.Reason != "" {
			fields = append(fields, zap.String("reason", status.Reason))
		}
		if len(status.Details) > 0 {
			fields = append(fields, zap.Any("details", status.Details))
		}
		log.Debug("filter status", fields...)
	}
}

func loadEnvFile(path string, log *zap.Logger) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("env file not found", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("loading env file %q: %w", path, err)
	}

	log.Debug("env file loaded", zap.String("path", path))
	return nil
}

func prepareScoring(ctx context.Context, config *Config, log *zap.Logger) (*scoring.Scorer, *scoring.Profile, error) {
	resumeText, err := readResumeText(config.ResumeTextPath)
	if err != nil {
		return nil, nil, err
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	gcfg := gemini.Config{
		APIKey:          apiKey,
		GenerationModel: config.AI.Gemini.ExtractionModel,
		EmbeddingModel:  config.AI.Gemini.EmbeddingModel,
		MaxRetries:      config.AI.Gemini.MaxRetries,
	}
	aiLogger := log.Named("gemini").With(zap.String("provider", "gemini"))

	provider := ai.NewOnce(func(ctx context.Context) (ai.Embedder, error) {
		client, err := gemini.New(ctx, gcfg, aiLogger)
		if err != nil {
			return nil, err
		}
		aiLogger.Info("embedding client ready", zap.String("embedding_model", client.EmbeddingModel()))
		return client, nil
	})

	var extractor ai.EntityExtractor
	if config.AI.Gemini.ExtractSkills {
		client, err := gemini.New(ctx, gcfg, aiLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("building skill extractor: %w", err)
		}
		extractor = gemini.NewExtractor(client, aiLogger, config.AI.Gemini.MaxLogLength)
		aiLogger.Info("skill extraction enabled", zap.String("model", client.Model()))
	}

	profileText := scoring.DeriveProfileText(ctx, extractor, resumeText, log)

	scorer := scoring.NewScorer(provider)
	profile, err := scorer.NewProfile(ctx, config.ResumeTextPath, profileText)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding resume profile: %w", err)
	}

	log.Info("profile ready", zap.Int("dimension", profile.Dimension()), zap.Int("profile_text_length", len(profileText)))

	return scorer, profile, nil
}

// readResumeText returns the file as is. Whitespace only counts for the
// emptiness check.
func readResumeText(path string) (string, error) {
	resume, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume text: %w", err)
	}
	if strings.TrimSpace(string(resume)) == "" {
		return "", fmt.Errorf("resume text file %q is empty", path)
	}
	return string(resume), nil
}

// confirm shows the menu until the user answers yes or no.
func confirm(log *zap.Logger, postings *linkedin.Postings) error {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		log.Info("current list of postings", zap.Int("count", postings.Len()))

		proceed, err := handleAction(action, log, postings)
		if err != nil || proceed {
			return err
		}
	}
}

func handleAction(action string, log *zap.Logger, postings *linkedin.Postings) (bool, error) {
	switch action {
	case PromptYes:
		return true, nil
	case PromptNo:
		log.Info("exiting", zap.String("reason", "got no from prompt"))
		return false, errExit
	case PromptReportByCompanies:
		pretty, _ := json.MarshalIndent(postings.ReportByCompany(), "", "  ")
		log.Info(string(pretty), zap.Int("postings count", postings.Len()))
		return false, nil
	case PromptPostingsToFile:
		filename, err := postings.DumpToTmpFile()
		if err != nil {
			return false, fmt.Errorf("dump results to file: %w", err)
		}
		log.Info("dumping result to file", zap.String("filename", filename))
		return false, nil
	default:
		return false, fmt.Errorf("invalid action: %s", action)
	}
}

func flagSet(cmd *cobra.Command, name string) bool {
	flag := cmd.Flag(name)
	return flag != nil && flag.Value.String() == "true"
}
