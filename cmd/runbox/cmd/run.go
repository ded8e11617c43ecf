package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gsarma/runbox/internal/code"
	"github.com/gsarma/runbox/internal/run"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("lang", "l", "", "language name, extension or Judge0 id (inferred from the file when omitted)")
	runCmd.Flags().StringArrayP("input", "i", nil, "stdin line, repeat for more lines")
	runCmd.Flags().Bool("no-input", false, "send empty stdin even when inputs are given")
	runCmd.Flags().StringP("url", "u", envOr("RUNBOX_JUDGE0_URL", "http://localhost:2358"), "judge0 base url")
	runCmd.Flags().StringP("token", "t", os.Getenv("RUNBOX_JUDGE0_AUTH_TOKEN"), "judge0 X-Auth-Token")
	runCmd.Flags().Duration("timeout", 2*time.Minute, "give up waiting for a result after this long")
	runCmd.Flags().Duration("poll", time.Second, "delay between status checks")
	runCmd.Flags().Int("retries", 0, "extra attempts after a network error")
}

var runCmd = &cobra.Command{
	Use:   "run [file] [options]",
	Short: "Compiles and runs a program",
	Long: `Compiles and runs a program on Judge0 and prints its output.
Without a file the language's starter program is run.`,
	Example: `runbox run Program.java
runbox run --lang python --input 3 --input 5 sum.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

// errRunFailed signals a run that reached a verdict other than success. Its
// output was already printed.
type errRunFailed struct{ outcome run.Outcome }

func (e errRunFailed) Error() string { return "run finished with outcome " + string(e.outcome) }

func runProgram(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	langFlag, _ := flags.GetString("lang")
	inputs, _ := flags.GetStringArray("input")
	noInput, _ := flags.GetBool("no-input")
	url, _ := flags.GetString("url")
	token, _ := flags.GetString("token")
	timeout, _ := flags.GetDuration("timeout")
	poll, _ := flags.GetDuration("poll")
	retries, _ := flags.GetInt("retries")

	var file string
	if len(args) == 1 {
		file = args[0]
	}
	lang, err := resolveLanguage(langFlag, file)
	if err != nil {
		return err
	}
	source, err := loadSource(file, lang)
	if err != nil {
		return err
	}

	req := run.Request{Language: lang, Source: source, Inputs: code.NewInputSet(), InputEnabled: !noInput}
	if len(inputs) > 0 {
		req.Inputs = code.InputSet(inputs)
	}
	pterm.Debug.Printf("stdin: %q\n", code.Compose(req.Inputs, req.InputEnabled))

	o := run.New(code.NewJudge0Client(code.Judge0Config{URL: url, AuthToken: token}), run.Config{
		PollInterval:     poll,
		MaxWait:          timeout,
		TransportRetries: retries,
	}, run.WithLogger(newLogger()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	spinner, err := pterm.DefaultSpinner.Start(fmt.Sprintf("%s: %s", lang.Name, lang.FileName()))
	if err != nil {
		return fmt.Errorf("failed to start spinner: %w", err)
	}
	res := o.Run(ctx, req, run.ObserverFuncs{
		Status: func(s string) { spinner.UpdateText(s) },
	})

	if res.OK() {
		spinner.Success(resultSummary(res))
	} else {
		spinner.Fail(resultSummary(res))
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Output)
	if len(res.Output) > 0 && res.Output[len(res.Output)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if !res.OK() {
		return errRunFailed{outcome: res.Outcome}
	}
	return nil
}

func resultSummary(res run.Result) string {
	s := run.StatusFailed
	if res.Status != nil && res.State == run.StateCompleted {
		s = res.Status.String()
	}
	if res.ErrorClass != "" {
		s += " (" + string(res.ErrorClass) + ")"
	}
	if res.Time != nil {
		s += ", " + *res.Time + "s"
	}
	if res.Memory != nil {
		s += ", " + strconv.Itoa(*res.Memory) + " KB"
	}
	return s
}

// resolveLanguage picks the profile named by flag, or the one matching the
// extension of file, or the default profile.
func resolveLanguage(flag, file string) (code.Profile, error) {
	if flag != "" {
		if id, err := strconv.Atoi(flag); err == nil {
			if p, ok := code.Lookup(id); ok {
				return p, nil
			}
			return code.Profile{}, fmt.Errorf("unknown language id %d", id)
		}
		if p, ok := code.ByName(flag); ok {
			return p, nil
		}
		return code.Profile{}, fmt.Errorf("unknown language %q", flag)
	}
	if file != "" {
		if p, ok := code.ByExtension(filepath.Ext(file)); ok {
			return p, nil
		}
		return code.Profile{}, fmt.Errorf("cannot infer the language of %s, use --lang", file)
	}
	return code.Default(), nil
}

// loadSource reads file, or returns the starter program when file is empty.
func loadSource(file string, lang code.Profile) (string, error) {
	if file == "" {
		return lang.DefaultSource, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
