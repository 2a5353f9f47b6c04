// Command scriptrunner executes script snippets in isolated child processes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/deixis/scriptrunner"
	"github.com/deixis/scriptrunner/internal/config"
	"github.com/deixis/scriptrunner/internal/executor"
	srmcp "github.com/deixis/scriptrunner/internal/mcp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "scriptrunner"})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "mcp":
		err = mcpMain(logger, args)
	case "run":
		var ok bool
		ok, err = runMain(logger, args, os.Stdin, os.Stdout, os.Stderr)
		if err == nil && !ok {
			os.Exit(1)
		}
	case "version":
		fmt.Println(scriptrunner.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "scriptrunner: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: scriptrunner <command> [flags]

Commands:
  mcp         Start the MCP server (stdio, or HTTP with -http)
  run         Execute code once and print the outcome
  version     Print the version
  help        Show this help

Use "scriptrunner <command> -h" for command-specific flags.`)
}

// --- mcp ---

func mcpMain(logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(srmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e, err := newExecutor(logger)
	if err != nil {
		return err
	}
	server := srmcp.NewServer(e, logger)

	if *httpAddr != "" {
		return serveHTTP(ctx, logger, server, *httpAddr)
	}
	logger.Info("serving on stdio", "interpreter", e.Interpreter)
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, logger *log.Logger, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	logger.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- run ---

// runMain executes code once. It reports whether the execution succeeded;
// the error is reserved for problems outside the execution itself.
func runMain(logger *log.Logger, args []string, stdin io.Reader, stdout, stderr io.Writer) (bool, error) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	codeFlag := fs.String("c", "", "program passed in as a string")
	jsonFlag := fs.Bool("json", false, "output the result as JSON")
	timeoutFlag := fs.Int("timeout", 0, "time budget in seconds (default from config, 30)")
	_ = fs.Parse(args)

	code, err := readCode(*codeFlag, fs.Args(), stdin)
	if err != nil {
		return false, err
	}

	e, err := newExecutor(logger)
	if err != nil {
		return false, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := e.Execute(ctx, code, *timeoutFlag)

	if *jsonFlag {
		fmt.Fprintln(stdout, res.Report().JSON())
	} else {
		writeRunCLI(res, stdout, stderr)
	}
	return res.Succeeded(), nil
}

// readCode takes the program from -c, a file argument, or stdin ("-" or
// no argument).
func readCode(inline string, args []string, stdin io.Reader) (string, error) {
	if inline != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("-c and a file argument are mutually exclusive")
		}
		return inline, nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("expected at most one file argument, got %d", len(args))
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

func writeRunCLI(res *executor.Result, stdout, stderr io.Writer) {
	fmt.Fprint(stdout, res.Stdout)
	fmt.Fprint(stderr, res.Stderr)

	switch res.Outcome {
	case executor.TimedOut, executor.SpawnFailed:
		fmt.Fprintf(stderr, "scriptrunner: %s\n", res.Detail)
	case executor.ScriptFailed:
		fmt.Fprintf(stderr, "scriptrunner: exit status %d\n", res.ExitCode)
	}
}

// --- shared ---

func newExecutor(logger *log.Logger) (*executor.Executor, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	logger.SetLevel(cfg.LogLevel())
	if loaded.Path != "" {
		logger.Debug("loaded config", "path", loaded.Path)
	}

	return &executor.Executor{
		Interpreter:    cfg.InterpreterName(),
		Args:           cfg.Args,
		DefaultTimeout: cfg.Timeout(),
		MaxOutput:      cfg.MaxOutputBytes(),
		Logger:         logger,
	}, nil
}
