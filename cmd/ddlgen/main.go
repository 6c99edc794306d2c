// Command ddlgen reads table metadata from a live database and renders it
// as CREATE TABLE scripts for MySQL, DM or PostgreSQL.
//
// Usage:
//
//	ddlgen <command> [flags] [table ...]
//
// Commands:
//
//	dialects   list supported target dialects
//	tables     list tables in the source schema
//	inspect    print table metadata as JSON or YAML
//	ddl        print CREATE TABLE scripts
//	export     write scripts to the object store archive
//	archived   list archived scripts, or print those of the named tables
//	serve      run the HTTP API
//
// Settings come from --config (YAML), DDLGEN_* environment variables and
// flags, e.g.
//
//	DDLGEN_DATABASE_DSN="root:root@tcp(localhost:3306)/app" ddlgen ddl --dialect dm users
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: ddlgen <command> [flags] [table ...]

commands:
  dialects   list supported target dialects
  tables     list tables in the source schema
  inspect    print table metadata (--format json|yaml)
  ddl        print CREATE TABLE scripts (--dialect mysql|dm|postgresql)
  export     write scripts to the object store archive
  archived   list archived scripts, or print those of the named tables
  serve      run the HTTP API (--addr)

run "ddlgen <command> --help" for flags.
`

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		if name == "help" || name == "-h" || name == "--help" {
			fmt.Fprint(stdout, usage)
			return exitOK
		}
		fmt.Fprintf(stderr, "ddlgen: unknown command %q\n\n%s", name, usage)
		return exitUsage
	}

	env, code := setup(ctx, name, rest, stderr)
	if env == nil {
		return code
	}
	env.stdout = stdout

	if err := cmd(env); err != nil {
		env.log.ErrorWith("command failed", err, map[string]any{"command": name})
		fmt.Fprintf(stderr, "ddlgen %s: %v\n", name, err)
		return exitError
	}
	return exitOK
}
