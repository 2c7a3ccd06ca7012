// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command edura is the terminal client of the Edura e-learning platform.
//
// # Usage
//
//	edura <command> [flags]
//
// The session persists between invocations (see EDURA_SESSION_STORE), so
// "edura login" once is enough for every following command. Run "edura help"
// for the command list.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/taibuivan/edura/internal/app"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/config"
)

// command is one sub-command of the CLI.
type command struct {
	summary string
	run     func(ctx context.Context, cli *cli, args []string) error
}

// cli carries what every command needs.
type cli struct {
	app    *app.App
	out    io.Writer
	stdin  *os.File
	reader *bufio.Reader
}

var commands = map[string]command{
	// # Account
	"register":        {"Create an account", runRegister},
	"login":           {"Sign in with email and password", runLogin},
	"login-google":    {"Sign in with a Google identity token", runGoogleLogin},
	"logout":          {"Sign out and forget the session", runLogout},
	"whoami":          {"Show the signed-in user and token expiry", runWhoAmI},
	"forgot-password": {"Request a password reset link", runForgotPassword},
	"reset-password":  {"Set a new password with a reset token", runResetPassword},

	// # Catalogue
	"courses":         {"List courses, optionally filtered", runCourses},
	"course":          {"Show one course with its lessons", runCourse},
	"lessons":         {"List the lessons of a course", runLessons},
	"categories":      {"List categories", runCategories},
	"category-create": {"Create a category (admin)", runCategoryCreate},
	"course-create":   {"Create a course (instructor)", runCourseCreate},

	// # Commerce
	"cart":           {"Show the cart with its checkout total", runCart},
	"cart-add":       {"Add a course to the cart", runCartAdd},
	"cart-remove":    {"Remove a course from the cart", runCartRemove},
	"cart-clear":     {"Empty the cart", runCartClear},
	"checkout":       {"Pay for the cart", runCheckout},
	"enrollments":    {"List owned courses", runEnrollments},
	"payments":       {"List payments", runPayments},
	"payment-status": {"Change a payment status (admin)", runPaymentStatus},
	"stats":          {"Show income statistics (admin)", runStats},

	// # Users
	"users":   {"List users (admin)", runUsers},
	"profile": {"Update the signed-in profile", runProfile},
	"avatar":  {"Upload an avatar image", runAvatar},
	"watch":   {"Follow login and logout from other clients", runWatch},
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs one command and returns the process exit code.
func execute(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(os.Stdout)
		return 0
	}

	selected, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage(os.Stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Logs go to stderr so command output stays pipeable.
	logger := app.NewLogger(os.Stderr, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer client.Close()

	runner := &cli{app: client, out: os.Stdout, stdin: os.Stdin, reader: bufio.NewReader(os.Stdin)}
	if err := selected.run(ctx, runner, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(os.Stderr, describe(err))
		return 1
	}
	return 0
}

// describe renders an error for the terminal.
func describe(err error) string {
	appErr := apperr.As(err)
	if appErr == nil {
		return "error: " + err.Error()
	}

	switch appErr.Code {
	case apperr.CodeSessionRefreshed:
		return "Your session was renewed. Please run the command again."
	case apperr.CodeSessionExpired:
		return "Your session has expired. Please log in again."
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "error: %s (%s)", appErr.Message, appErr.Code)
	for _, detail := range appErr.Details {
		fmt.Fprintf(&builder, "\n  %s: %s", detail.Field, detail.Message)
	}
	return builder.String()
}

func printUsage(writer io.Writer) {
	fmt.Fprintln(writer, "Usage: edura <command> [flags]")
	fmt.Fprintln(writer)

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(table, "  %s\t%s\n", name, commands[name].summary)
	}
	_ = table.Flush()
}

// # Helpers

// flags creates a flag set that reports errors instead of exiting.
func flags(name string) *flag.FlagSet {
	return flag.NewFlagSet("edura "+name, flag.ContinueOnError)
}

// table starts an aligned table on the command output.
func (cli *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

// secret returns value, or prompts for it without echo on a terminal.
func (cli *cli) secret(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}

	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(cli.stdin.Fd())) {
		raw, err := term.ReadPassword(int(cli.stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := cli.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// requireID rejects a missing numeric flag.
func requireID(name string, value int64) error {
	if value <= 0 {
		return fmt.Errorf("-%s is required", name)
	}
	return nil
}
