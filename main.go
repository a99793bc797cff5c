package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/mcncl/jsonviewer/internal/config"
	"github.com/mcncl/jsonviewer/internal/errors"
	"github.com/mcncl/jsonviewer/internal/formatter"
	"github.com/mcncl/jsonviewer/internal/generator"
	"github.com/mcncl/jsonviewer/internal/logging"
	"github.com/mcncl/jsonviewer/internal/models"
	"github.com/mcncl/jsonviewer/internal/parser"
	"github.com/mcncl/jsonviewer/internal/server"
)

// CLI defines the command-line interface
var CLI struct {
	Config string `help:"Path to config file. Defaults to the nearest .jsonviewer.yml." short:"c" type:"path"`
	Debug  bool   `help:"Enable debug logging." short:"d"`

	Render  RenderCmd  `cmd:"" default:"withargs" help:"Render a JSON document as an interactive HTML tree."`
	Serve   ServeCmd   `cmd:"" help:"Serve rendered JSON documents over HTTP."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Debug      bool
	ConfigPath string
	Logger     *log.Logger
	Stdin      *os.File
	Stdout     io.Writer
	Stderr     io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

// fetchTimeout bounds --url downloads
const fetchTimeout = 30 * time.Second

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("jsonviewer"),
		kong.Description("Render JSON documents as collapsible HTML trees"),
		kong.UsageOnError(),
	)

	// With no arguments at all, read the document interactively
	if len(os.Args) == 1 {
		CLI.Render.Interactive = true
	}

	ctx := &Context{
		Debug:      CLI.Debug,
		ConfigPath: CLI.Config,
		Logger:     logging.New(os.Stderr, logging.Level(CLI.Debug)),
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}

	if err := kctx.Run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonviewer --help\n")
		os.Exit(1)
	}
}

// loadConfig resolves the config file and applies CLI overrides
func loadConfig(ctx *Context, o config.Overrides) (*config.Config, error) {
	path := ctx.ConfigPath
	if path == "" {
		path = config.FindConfigFile()
	}
	if path != "" {
		ctx.Logger.Debug("Using config file", "path", path)
	}

	o.Debug = o.Debug || ctx.Debug
	cfg, err := config.LoadConfigWithCLI(path, o)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	logging.Configure(ctx.Logger, cfg.Dev.Debug, cfg.Dev.Verbose)
	return cfg, nil
}

// RenderCmd renders one document to a file or stdout
type RenderCmd struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	URL         string `help:"Fetch the input JSON from an http or https URL." short:"u"`
	Output      string `help:"Path to output HTML file. If not specified, writes to stdout." short:"o" type:"path"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`

	Collapsed         bool   `help:"Start with the whole tree collapsed."`
	NoRootCollapsable bool   `help:"Do not add a toggle in front of the root value."`
	WithQuotes        bool   `help:"Wrap object keys in quotes." short:"q"`
	NoLinks           bool   `help:"Render URLs as plain strings instead of links."`
	BigNumbers        bool   `help:"Render extended-precision numbers as numbers. Implies --lossless."`
	Lossless          bool   `help:"Keep numbers that do not fit a float64 in their original form."`
	Canonical         bool   `help:"Render the RFC 8785 canonical form of the input: sorted keys, normalized numbers."`
	Threshold         int    `help:"Truncate strings longer than this many characters (default from config: 50)." short:"t" default:"-1"`
	MaxDepth          int    `help:"Do not descend into containers nested deeper than this; 0 means unlimited." default:"-1"`
	Title             string `help:"Title of the generated page."`
	Fragment          bool   `help:"Write only the rendered element instead of a full page." short:"F"`
	NoElapsed         bool   `help:"Leave out the time since loaded label."`
	NoScript          bool   `help:"Leave out the page script; the page becomes a static snapshot. Not allowed with --collapsed."`
	Format            bool   `help:"Normalize the generated HTML." short:"f" default:"true" negatable:""`
}

func (r *RenderCmd) overrides() config.Overrides {
	return config.Overrides{
		Collapsed:         r.Collapsed,
		NoRootCollapsable: r.NoRootCollapsable,
		WithQuotes:        r.WithQuotes,
		NoLinks:           r.NoLinks,
		BigNumbers:        r.BigNumbers,
		Threshold:         r.Threshold,
		MaxDepth:          r.MaxDepth,
		Title:             r.Title,
		Fragment:          r.Fragment,
		NoElapsedLabel:    r.NoElapsed,
		NoScript:          r.NoScript,
		LosslessNumbers:   r.Lossless || r.BigNumbers,
		Canonical:         r.Canonical,
	}
}

// Run executes the render pipeline
func (r *RenderCmd) Run(ctx *Context) error {
	cfg, err := loadConfig(ctx, r.overrides())
	if err != nil {
		return err
	}
	progress := logging.NewProgress(ctx.Logger)

	// 1. Parse JSON input
	ir, err := r.parseInput(ctx, cfg)
	if err != nil {
		// Error is already wrapped by parseInput
		return err
	}
	ctx.Logger.Debug("Parsed input", "array", ir.RootIsArray, "lossless", ir.Lossless)

	// 2. Mount the tree and build the page
	res, err := generator.NewGeneratorWithConfig(cfg).Generate(ir.Root)
	if err != nil {
		return errors.NewRenderError("failed to render JSON document", err)
	}

	// 3. Normalize the markup if requested
	out := res.HTML
	if r.Format {
		f := formatter.NewFormatter()
		if cfg.Page.Fragment {
			out, err = f.FormatFragment(out)
		} else {
			out, err = f.Format(out)
		}
		if err != nil {
			return errors.NewRenderError("failed to format HTML", err)
		}
	}

	// 4. Output the result
	if err := r.writeOutput(ctx, out); err != nil {
		return err
	}
	if r.Output != "" {
		progress.Done(fmt.Sprintf("Rendered %d nodes to %s", res.Stats.Nodes, r.Output), "toggles", res.Stats.Toggles)
	}
	return nil
}

// parseInput reads JSON from a file, a URL or stdin
func (r *RenderCmd) parseInput(ctx *Context, cfg *config.Config) (models.IntermediateRepresentation, error) {
	opts := cfg.ParserOptions()

	if r.Input != "" && r.URL != "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("cannot specify both --input and --url", errors.ErrInvalidFilePath)
	}
	if r.Input != "" {
		return parser.ParseFile(r.Input, opts...)
	}
	if r.URL != "" {
		return fetchURL(r.URL, opts...)
	}

	stdinInfo, err := ctx.Stdin.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if r.Interactive {
			return readInteractiveInput(ctx, opts...)
		}
		// No data provided on stdin and not in interactive mode
		return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(jsonData) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseString(string(jsonData), opts...)
}

// fetchURL downloads and parses a JSON document
func fetchURL(rawURL string, opts ...parser.Option) (models.IntermediateRepresentation, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (!strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https")) {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("invalid URL scheme in '%s': only http and https are supported", rawURL),
			errors.ErrInvalidFilePath,
		)
	}

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Get(u.String())
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(fmt.Sprintf("failed to fetch '%s'", rawURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("fetching '%s' returned %s", rawURL, resp.Status),
			stderrors.New(resp.Status),
		)
	}
	return parser.Parse(resp.Body, opts...)
}

// writeOutput writes the markup to a file or stdout
func (r *RenderCmd) writeOutput(ctx *Context, markup string) error {
	if r.Output != "" {
		if err := os.WriteFile(r.Output, []byte(markup), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", r.Output), err)
		}
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimSpace(markup)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(ctx *Context, opts ...parser.Option) (models.IntermediateRepresentation, error) {
	fmt.Fprintln(ctx.Stderr, "jsonviewer Interactive Mode")
	fmt.Fprintln(ctx.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(ctx.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(ctx.Stderr, "\nRendering JSON...")
	return parser.ParseString(jsonData, opts...)
}

// ServeCmd serves a document and the render endpoint over HTTP
type ServeCmd struct {
	Addr      string `help:"Address to listen on (default from config: :8080)." short:"a"`
	Input     string `help:"JSON file served at /. It is re-read on every request." short:"i" type:"path"`
	Title     string `help:"Title of the served page."`
	Lossless  bool   `help:"Keep numbers that do not fit a float64 in their original form."`
	Canonical bool   `help:"Serve the RFC 8785 canonical form of documents."`
	H2C       bool   `help:"Also accept HTTP/2 over cleartext connections."`
}

// Run starts the server and blocks until interrupted
func (s *ServeCmd) Run(ctx *Context) error {
	o := config.NoOverrides()
	o.Addr = s.Addr
	o.Title = s.Title
	o.LosslessNumbers = s.Lossless
	o.Canonical = s.Canonical
	cfg, err := loadConfig(ctx, o)
	if err != nil {
		return err
	}
	if s.H2C {
		cfg.Server.H2C = true
	}

	var source server.Source
	if s.Input != "" {
		path := s.Input
		source = func(context.Context) (any, error) {
			ir, err := parser.ParseFile(path, cfg.ParserOptions()...)
			if err != nil {
				return nil, err
			}
			return ir.Root, nil
		}
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, ctx.Logger, source).ListenAndServe(sigCtx)
}

// VersionCmd prints the version
type VersionCmd struct{}

// Run prints version information
func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "jsonviewer version %s\n", Version)
	return err
}
