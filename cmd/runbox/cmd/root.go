package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:           "runbox",
	Short:         "Run programs on a Judge0 instance",
	Long:          `Run Java, C++, Python and JavaScript programs on a Judge0 instance and print their output.`,
	Example:       `runbox run hello.py --input 3 --input 5`,
	Version:       "v0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(errRunFailed); !ok {
			pterm.Error.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&pterm.PrintDebugMessages, "debug", "", false, "enable debug messages")
	rootCmd.PersistentFlags().BoolVarP(&pterm.RawOutput, "raw", "", false, "print unstyled raw output (set it if output is written to a file)")

	pterm.ThemeDefault.SectionStyle = *pterm.NewStyle(pterm.FgCyan)
}

// newLogger logs to stderr only when debug output is on.
func newLogger() *zap.Logger {
	if !pterm.PrintDebugMessages {
		return zap.NewNop()
	}
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	l, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
