package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/adaptiq/internal/catalog"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adaptiq",
	Short: "Adaptive skill assessments in the terminal",
	Long: "adaptiq runs adaptive technical assessments. Question difficulty follows " +
		"the learner's performance, free-text answers are graded by an LLM, and " +
		"a skill profile is kept per user.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ADAPTIQ_DB env var)")
	rootCmd.PersistentFlags().String("catalog", "", "Question catalog file or directory (overrides ADAPTIQ_CATALOG_DIR env var)")
	addAssessmentFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// addAssessmentFlags registers the flags shared by the commands that run
// assessments.
func addAssessmentFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "Learner ID (prompted for when empty)")
	cmd.Flags().Int("max-questions", 0, "Questions per assessment (0 uses the default)")
	cmd.Flags().String("skill", "", "Restrict questions to one skill area")
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ADAPTIQ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the database selected by resolveDBPath.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadCatalog reads the catalog named by --catalog, then
// ADAPTIQ_CATALOG_DIR, and falls back to the built-in questions.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = os.Getenv("ADAPTIQ_CATALOG_DIR")
	}
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// newLogger builds a logger from ADAPTIQ_LOG_MODE, using fallback when
// the variable is unset.
func newLogger(fallback string) (*logger.Logger, error) {
	mode := os.Getenv("ADAPTIQ_LOG_MODE")
	if mode == "" {
		mode = fallback
	}
	return logger.New(mode)
}
