// Command formguard validates an HTML form against declared rules and
// prints a report.
//
//	formguard -form page.html -rules signup.rules.yaml -set email=ada@example.com
//	formguard -form page.html -openapi api.yaml -operation createUser -format json
//	formguard -form page.html -schema contact.schema.json -format html
//	formguard -form page.html -interactive
//
// Defaults come from FORMGUARD_* environment variables, optionally read from
// the dotenv file named by FORMGUARD_ENV_FILE. The exit status is 0
// when the form is valid, 1 when it is not and 2 on errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], environMap(os.Environ()), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, environ map[string]string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, environ, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitError
	}

	a, err := newApp(opts, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	if opts.Watch {
		if err := a.watch(ctx); err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		return exitValid
	}

	code, err := a.runOnce(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
	}
	return code
}
