package cmd

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gsarma/runbox/internal/code"
)

func init() {
	rootCmd.AddCommand(languagesCmd)
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "Lists the supported languages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pterm.DefaultTable.WithHasHeader().WithData(languageTable()).Render()
	},
}

func languageTable() pterm.TableData {
	def := code.Default().ID
	data := pterm.TableData{{"ID", "Name", "Extension", "Editor", "Default"}}
	for _, p := range code.Profiles() {
		mark := ""
		if p.ID == def {
			mark = "*"
		}
		data = append(data, []string{strconv.Itoa(p.ID), p.Name, p.Extension, p.EditorSyntax, mark})
	}
	return data
}
