package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/adaptiq/internal/app"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/screens/assessment"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive assessment TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	addAssessmentFlags(runCmd)
}

// runApp opens the store, builds dependencies, and launches the TUI.
// Logging is off unless ADAPTIQ_LOG_MODE asks for it, since log lines
// would land on the alternate screen.
func runApp(cmd *cobra.Command) error {
	log, err := newLogger(logger.ModeNop)
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := openRuntime(cmd, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.llmReady() {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; free-text answers will receive a neutral score.")
	}

	user, _ := cmd.Flags().GetString("user")
	skill, _ := cmd.Flags().GetString("skill")
	if skill != "" && len(rt.catalog.Filter(skill)) == 0 {
		return fmt.Errorf("no questions for skill area %q", skill)
	}

	deps := assessment.Deps{
		UserID:    user,
		SkillArea: skill,
		Catalog:   rt.catalog,
		Engine:    rt.engine,
		Grader:    rt.grader,
		Explainer: rt.sessionExplainer(),
		Config:    rt.sessCfg,
		Recorder:  rt.recorder,
		Log:       log,
	}
	return app.Run(deps, app.Options{LLMReady: rt.llmReady()})
}
