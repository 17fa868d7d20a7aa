package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/modes"
	"github.com/abhisek/sherpa/internal/paper"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/runner"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/store"
	"github.com/abhisek/sherpa/internal/ui"
	"github.com/abhisek/sherpa/internal/watcher"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor <topic or question...>",
	Short: "Start a tutorial session for a paper concept",
	Example: `  sherpa tutor DPO loss --paper papers/dpo.md
  sherpa tutor "how does flash attention tile the softmax" --mode challenge --lang go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTutor,
}

func init() {
	tutorCmd.Flags().String("paper", "", "Paper text or markdown file used as context")
	tutorCmd.Flags().StringP("mode", "m", "", "Mode: tutorial, guided, challenge or debug")
	tutorCmd.Flags().StringP("lang", "l", "", "Exercise language: "+strings.Join(skeleton.LanguageNames(), ", "))
	tutorCmd.Flags().StringP("out", "o", "", "Directory for the exercise file")
	tutorCmd.Flags().Bool("force", false, "Overwrite an existing exercise file")
}

func runTutor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appConfig
	topic := skeleton.TopicFromQuery(strings.Join(args, " "))
	if topic == "" {
		return errors.New("could not find a topic in the query")
	}

	modeName, _ := cmd.Flags().GetString("mode")
	if modeName == "" {
		modeName = cfg.Mode
	}
	mode, err := modes.ParseMode(modeName)
	if err != nil {
		return err
	}

	langName, _ := cmd.Flags().GetString("lang")
	if langName == "" {
		langName = cfg.Language
	}
	lang, err := skeleton.LookupLanguage(langName)
	if err != nil {
		return err
	}

	p := paper.FromTopic(topic)
	if id, _ := cmd.Flags().GetString("paper"); id != "" {
		if p, err = (paper.FileFetcher{Dir: cfg.PaperDir}).Fetch(ctx, id); err != nil {
			return err
		}
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.OutDir
	}
	force, _ := cmd.Flags().GetBool("force")

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	lc, err := llm.ResolveConfig(cfg.LLMProvider(llm.ConfigFromEnv()))
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(ctx, lc, st.EventRepo(), logger)
	if err != nil {
		return err
	}

	gen := skeleton.NewGenerator(provider, cfg.Skeleton, logger)
	eval := review.NewEvaluator(provider, cfg.Review, logger)
	handler, err := modes.New(mode, gen, eval, provider)
	if err != nil {
		return err
	}

	console := ui.NewConsole(cmd.OutOrStdout())
	console.Notice(fmt.Sprintf("Preparing a %s exercise on %s…", mode, topic))

	r, err := runner.Start(ctx, runner.Options{
		Topic:      topic,
		Paper:      p,
		Language:   lang,
		Handler:    handler,
		OutDir:     outDir,
		Force:      force,
		Thresholds: cfg.Policy,
		Reporter:   console,
		Events:     st.EventRepo(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	w, err := watcher.New(r.Path(), cfg.Watcher, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := w.Start(runCtx); err != nil {
		return err
	}

	lines := readLines(runCtx, cmd.InOrStdin())

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return r.Run(gctx, w.Events(), lines)
	})
	g.Go(func() error {
		<-gctx.Done()
		w.Stop()
		return nil
	})
	return g.Wait()
}

// readLines forwards input lines until ctx ends or input closes. The
// reading goroutine may outlive ctx while blocked on input; it exits with
// the process.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
