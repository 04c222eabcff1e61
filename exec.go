package notagen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/esimov/notagen/utils"
	"golang.org/x/term"
)

// Ops describes a batch run: every notation is parsed and exported in turn.
type Ops struct {
	Notations []string
	// Source is a file holding one notation per line, or PipeName to read them from stdin.
	// When set it takes precedence over Notations.
	Source string
	// Dest set to PipeName streams a single raster to stdout instead of writing files.
	Dest     string
	PipeName string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the batch against the session. Notations which fail to export
// are reported and the run goes on, the joined errors being returned at the end.
func (op *Ops) Execute(app *App) ([]Result, error) {
	op.defaults()

	notations, err := op.notations()
	if err != nil {
		return nil, err
	}
	if len(notations) == 0 {
		return nil, errors.New("no notation to export")
	}

	if op.PipeName != "" && op.Dest == op.PipeName {
		if len(notations) > 1 {
			return nil, errors.New("only a single notation can be streamed to stdout")
		}
		if isTerminal(op.Stdout) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		app.ParseNow(notations[0])
		return nil, app.Encode(op.Stdout, "")
	}

	spinnerMsg := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ NOTAGEN", utils.StatusMessage),
		utils.DecorateText("⇢ rendering the notation...", utils.DefaultMessage),
	)
	spinner := utils.NewSpinner(spinnerMsg, time.Millisecond*80)
	spinner.SetWriter(op.Stderr)

	// Capture CTRL-C and restore the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalChan)
		close(signalChan)
	}()
	go func() {
		if _, ok := <-signalChan; ok {
			spinner.RestoreCursor()
			os.Exit(1)
		}
	}()

	now := time.Now()
	var (
		results []Result
		errs    []error
	)
	for _, n := range notations {
		spinner.Start()
		app.ParseNow(n)
		res, err := app.Export()
		if err != nil {
			spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
				utils.DecorateText("⚡ NOTAGEN", utils.StatusMessage),
				utils.DecorateText(fmt.Sprintf("%q could not be exported: %v", n, err), utils.DefaultMessage),
				utils.DecorateText("✘", utils.ErrorMessage),
			)
			spinner.Stop()
			errs = append(errs, fmt.Errorf("%q: %w", n, err))
			continue
		}
		spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ NOTAGEN", utils.StatusMessage),
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("the notation has been exported ✔", utils.SuccessMessage),
		)
		spinner.Stop()
		op.printOpStatus(res)
		results = append(results, res)
	}

	if len(errs) == 0 {
		fmt.Fprintf(op.Stderr, "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return results, errors.Join(errs...)
}

func (op *Ops) defaults() {
	if op.Stdin == nil {
		op.Stdin = os.Stdin
	}
	if op.Stdout == nil {
		op.Stdout = os.Stdout
	}
	if op.Stderr == nil {
		op.Stderr = os.Stderr
	}
}

// notations returns the notations to export, read from Source when it is set.
func (op *Ops) notations() ([]string, error) {
	if op.Source == "" {
		return nonEmpty(op.Notations), nil
	}

	var r io.Reader
	if op.PipeName != "" && op.Source == op.PipeName {
		if isTerminal(op.Stdin) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		r = op.Stdin
	} else {
		f, err := os.Open(op.Source)
		if err != nil {
			return nil, fmt.Errorf("unable to open the notation file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unable to read the notations: %w", err)
	}
	return nonEmpty(lines), nil
}

// printOpStatus displays the files written by an export.
func (op *Ops) printOpStatus(res Result) {
	fmt.Fprintf(op.Stderr, "The notation has been saved as: %s\n",
		utils.DecorateText(filepath.Base(res.Path), utils.SuccessMessage))
	if res.DarkPath != "" {
		fmt.Fprintf(op.Stderr, "The dark notation has been saved as: %s\n",
			utils.DecorateText(filepath.Base(res.DarkPath), utils.SuccessMessage))
	}
}

func nonEmpty(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
