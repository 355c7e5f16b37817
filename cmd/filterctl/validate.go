package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spam_bot/internal/ruleset"
)

var validatePath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a ruleset",
	Long: `Compile every filter of a ruleset and run its examples. Examples must
match their filter and negative examples must not.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validatePath, "file", "f", "", "Path to the ruleset YAML file")
	_ = validateCmd.MarkFlagRequired("file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	engine, err := selectedEngine()
	if err != nil {
		return err
	}
	defs, err := ruleset.LoadFile(validatePath)
	if err != nil {
		return err
	}
	if err := ruleset.Validate(defs, engine); err != nil {
		return fmt.Errorf("%s is invalid:\n%w", validatePath, err)
	}

	var examples int
	for _, d := range defs {
		examples += len(d.Examples) + len(d.NegativeExamples)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d filters OK, %d examples checked\n", validatePath, len(defs), examples)
	return nil
}
