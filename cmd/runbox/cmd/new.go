package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gsarma/runbox/internal/code"
)

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
}

var newCmd = &cobra.Command{
	Use:   "new <language> [dir]",
	Short: "Writes a starter program for a language",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := resolveLanguage(args[0], "")
		if err != nil {
			return err
		}
		dir := "."
		if len(args) == 2 {
			dir = args[1]
		}
		force, _ := cmd.Flags().GetBool("force")

		path, err := writeProgram(dir, lang, force)
		if err != nil {
			return err
		}
		pterm.Success.Printf("wrote %s\n", path)
		return nil
	},
}

// writeProgram saves lang's default source as Program.<ext> in dir.
func writeProgram(dir string, lang code.Profile, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, lang.FileName())
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(lang.DefaultSource); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
