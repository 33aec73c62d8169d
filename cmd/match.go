package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/connect-rnd/grant-matcher/internal/explain"
	"github.com/connect-rnd/grant-matcher/internal/explain/gemini"
	"github.com/connect-rnd/grant-matcher/internal/grants"
	"github.com/connect-rnd/grant-matcher/internal/logger"
	"github.com/connect-rnd/grant-matcher/internal/matching"
	"github.com/connect-rnd/grant-matcher/internal/secrets"
	"github.com/connect-rnd/grant-matcher/internal/taxonomy"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowBreakdown       = "Show score breakdown"
	PromptReportByAgency      = "Report by agency"
	PromptDumpToFile          = "Dump matches to file"
	PromptExplainMatches      = "Generate explanations"
	PromptAppendToExcludeFile = "Append all matches to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match an organization profile against a program catalog",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("organization", "o", "", "path to the organization profile (json)")
	matchCmd.Flags().StringP("programs", "p", "", "path to the program catalog (json)")
	matchCmd.Flags().IntP("limit", "l", 10, "maximum number of matches to return")
	matchCmd.Flags().String("output", "", "write the ranked matches to this file instead of a temp file")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with programs to exclude. Default is unset.")
	matchCmd.Flags().Bool("no-prompt", false, "print matches as json and exit without the interactive menu")

	matchCmd.MarkFlagRequired("organization")
	matchCmd.MarkFlagRequired("programs")

	viper.BindPFlag("output", matchCmd.Flags().Lookup("output"))
	viper.BindPFlag("exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the grant-matcher", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}

	engineCfg := engineConfig(config.Matching)

	if strings.TrimSpace(config.TaxonomyFile) == "" {
		logger.Fatal("taxonomy file is required under taxonomy-file")
	}

	tax, err := taxonomy.Load(config.TaxonomyFile)
	if err != nil {
		logger.Fatal("loading taxonomy data", zap.Error(err))
	}

	logger.Info("loaded taxonomy",
		zap.String("version", tax.Version()),
		zap.Int("sectors", tax.SectorCount()),
		zap.Int("relevance_pairs", tax.PairCount()),
	)

	org, err := grants.LoadOrganization(cmd.Flag("organization").Value.String())
	if err != nil {
		logger.Fatal("loading organization profile", zap.Error(err))
	}

	programs, skipped, err := grants.LoadPrograms(cmd.Flag("programs").Value.String())
	if err != nil {
		logger.Fatal("loading program catalog", zap.Error(err))
	}
	for _, skip := range skipped {
		logger.Warn("skipping invalid program record",
			zap.String("program_id", skip.ID),
			zap.String("reason", skip.Reason),
		)
	}

	logger.Info("loaded candidate set",
		zap.String("organization_id", org.ID),
		zap.Int("programs", programs.Len()),
		zap.Int("skipped", len(skipped)),
	)

	engine, err := matching.NewEngine(engineCfg, tax, logger)
	if err != nil {
		logger.Fatal("building matching engine", zap.Error(err))
	}

	limit, _ := cmd.Flags().GetInt("limit")

	result, err := engine.Run(ctx, org, programs, limit)
	if err != nil {
		logger.Fatal("matching failed", zap.Error(err))
	}

	if result.Matches.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no matches passed the quality gate"))
		return
	}

	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	if noPrompt {
		pretty, _ := json.MarshalIndent(result.Matches, "", "  ")
		fmt.Println(string(pretty))
		return
	}

	for {
		logger.Info("current list of matches", zap.Int("count", result.Matches.Len()))

		items := []string{PromptShowBreakdown, PromptReportByAgency, PromptDumpToFile, PromptExplainMatches}
		if viper.GetString("exclude-file") != "" && result.Matches.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		matchPrompt := promptui.Select{
			Label: "Matches ready. What next?",
			Items: append(items, PromptExit),
		}

		_, action, err := matchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, logger, config, org, programs, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func engineConfig(cfg *MatchingConfig) matching.Config {
	engineCfg := matching.DefaultConfig()
	if cfg == nil {
		return engineCfg
	}
	if cfg.RelevanceThreshold > 0 {
		engineCfg.RelevanceThreshold = cfg.RelevanceThreshold
	}
	if cfg.MinimumMatchScore > 0 {
		engineCfg.MinimumMatchScore = cfg.MinimumMatchScore
	}
	if cfg.ReviewBand > 0 {
		engineCfg.ReviewBand = cfg.ReviewBand
	}
	if cfg.Concurrency > 0 {
		engineCfg.Concurrency = cfg.Concurrency
	}
	return engineCfg
}

func handleAction(ctx context.Context, action string, logger *zap.Logger, config *Config, org *grants.Organization, programs *grants.Programs, result *matching.Result) error {
	switch action {
	case PromptShowBreakdown:
		pretty, _ := json.MarshalIndent(result.Matches, "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptReportByAgency:
		matched := &grants.Programs{}
		for _, m := range result.Matches.Items {
			if program := programs.FindByID(m.ProgramID); program != nil {
				matched.Items = append(matched.Items, program)
			}
		}
		pretty, _ := json.MarshalIndent(matched.ReportByAgency(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", result.Matches.Len()))
		return nil
	case PromptDumpToFile:
		filename := viper.GetString("output")
		if filename == "" {
			tmp, err := result.Matches.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump results to file: %w", err)
			}
			filename = tmp
		} else if err := dumpMatches(result.Matches, filename); err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExplainMatches:
		return explainMatches(ctx, logger, config.AI, org, result)
	case PromptAppendToExcludeFile:
		excludeFile := viper.GetString("exclude-file")

		matched := &grants.Programs{}
		for _, m := range result.Matches.Items {
			if program := programs.FindByID(m.ProgramID); program != nil {
				matched.Items = append(matched.Items, program)
			}
		}

		excluded, err := grants.GetExcludedProgramsFromFile(excludeFile)
		if err != nil {
			return err
		}

		excluded.Append(matched.ToExcluded())

		if err = excluded.ToFile(excludeFile); err != nil {
			return err
		}

		logger.Info("appended to exclude file", zap.String("filename", excludeFile))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func dumpMatches(matches *matching.Matches, path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}

func explainMatches(ctx context.Context, logger *zap.Logger, config *AIConfig, org *grants.Organization, result *matching.Result) error {
	service, err := newExplainService(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("building explanation service: %w", err)
	}

	for _, match := range result.Matches.Items {
		explanation, err := service.Explain(ctx, org, match)
		if err != nil {
			if errors.Is(err, explain.ErrBudgetExhausted) {
				logger.Warn("explanation budget exhausted, remaining matches stay unexplained",
					zap.String("program_id", match.ProgramID),
				)
				return nil
			}
			logger.Warn("explanation failed",
				zap.String("program_id", match.ProgramID),
				zap.Error(err),
			)
			continue
		}

		logger.Info("match explanation",
			zap.String("program_id", match.ProgramID),
			zap.Int("total", match.Total),
			zap.String("summary", explanation.Summary),
			zap.Strings("highlights", explanation.Highlights),
			zap.String("caution", explanation.Caution),
		)
	}

	return nil
}

func newExplainService(ctx context.Context, config *AIConfig, logger *zap.Logger) (*explain.Service, error) {
	if config == nil || !config.Enabled {
		return nil, fmt.Errorf("ai explanations are disabled in the config")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
	if config.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai explanations are enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", config.Gemini.Model),
		zap.Int("ai_retry_attempts", config.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	explainer := gemini.NewExplainer(generator, config.Gemini.MaxLogLength, genLogger)

	var cache *explain.ResponseCache
	if config.Cache != nil && config.Cache.Enabled {
		ttl := time.Duration(config.Cache.TTLMinutes) * time.Minute
		if ttl <= 0 {
			ttl = time.Hour
		}
		cache = explain.NewResponseCache(ttl, 10*time.Minute)
	}

	var budget *explain.Budget
	if config.Budget != nil {
		budget = explain.NewBudget(config.Budget.RequestsPerMinute, config.Budget.MaxRequests)
	}

	return explain.NewService(explainer, cache, budget, logger), nil
}
