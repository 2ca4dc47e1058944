package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// rootOptions：所有子命令共享的参数；--input/--sheet 非空时覆盖环境变量
type rootOptions struct {
	envFiles []string
	input    string
	sheet    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "vnadmin",
		Short:         "Vietnam administrative boundary mapping (old ↔ new) exporter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env", []string{".env"}, "dotenv files to load (missing files are ignored)")
	cmd.PersistentFlags().StringVar(&opts.input, "input", "", "source spreadsheet (.xlsx or .csv); overrides VNADMIN_INPUT_FILE")
	cmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "worksheet name; defaults to the first sheet")

	cmd.AddCommand(newMappingCmd(opts))
	cmd.AddCommand(newAPICmd(opts))
	cmd.AddCommand(newAllCmd(opts))
	cmd.AddCommand(newLookupCmd(opts))
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
