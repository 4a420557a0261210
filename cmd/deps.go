package cmd

import (
	"errors"
	"fmt"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/catalog"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/spf13/cobra"
)

// runtime holds what an assessment surface needs. provider and explainer
// are nil when no LLM is configured.
type runtime struct {
	store     *store.Store
	catalog   *catalog.Catalog
	engine    *adaptive.Engine
	provider  llm.Provider
	grader    *grading.Grader
	explainer *grading.Explainer
	recorder  *session.Recorder
	sessCfg   session.Config
	log       *logger.Logger
}

// openRuntime opens the store, loads the catalog and configures the LLM
// provider from the environment. A missing or invalid provider is not
// fatal: LLM-graded answers then get the fallback score.
func openRuntime(cmd *cobra.Command, log *logger.Logger) (*runtime, error) {
	cat, err := loadCatalog(cmd)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		store:    st,
		catalog:  cat,
		engine:   adaptive.NewEngine(adaptive.DefaultParams()),
		recorder: session.NewStoreRecorder(st),
		sessCfg:  session.DefaultConfig(),
		log:      log,
	}
	if n, _ := cmd.Flags().GetInt("max-questions"); n > 0 {
		rt.sessCfg.MaxQuestions = n
	}

	provider, err := llm.NewProvider(cmd.Context(), llm.ConfigFromEnv(), st.EventRepo(), log)
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		log.Info("no llm provider configured; descriptive answers use the fallback score")
	case err != nil:
		log.Warn("llm provider unavailable", "error", err)
	default:
		rt.provider = provider
		rt.explainer = grading.NewExplainer(provider)
	}
	rt.grader = grading.NewGrader(rt.provider, grading.DefaultConfig(), log)

	return rt, nil
}

// llmReady reports whether answers are graded by a real provider.
func (rt *runtime) llmReady() bool {
	return rt.provider != nil
}

// sessionExplainer returns the explainer as a session.Explainer, or nil
// without an LLM.
func (rt *runtime) sessionExplainer() session.Explainer {
	if rt.explainer == nil {
		return nil
	}
	return rt.explainer
}

func (rt *runtime) Close() error {
	if err := rt.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
