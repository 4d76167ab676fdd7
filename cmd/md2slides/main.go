package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command and returns the process exit code.
// Without a known command name, every argument is handed to convert.
func runMain(args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version":
			fmt.Fprintf(env.Stdout, "md2slides %s\n", Version)
			return ExitSuccess
		case "help", "--help", "-h":
			runHelp(args[1:], env)
			return ExitSuccess
		case "doctor":
			return runDoctorCmd(args[1:], env)
		case "convert":
			args = args[1:]
		}
	}

	flags, positional, err := parseConvertFlags(args, env)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", a...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, formatError(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}
