package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atfkit/atf/internal/telemetry"
	"github.com/atfkit/atf/pkg/config"
	"github.com/atfkit/atf/pkg/expr"
	"github.com/atfkit/atf/pkg/hook"
	"github.com/atfkit/atf/pkg/memory"
	reflectcat "github.com/atfkit/atf/pkg/reflect"
	"github.com/atfkit/atf/pkg/server"

	"github.com/atfkit/atf/internal/logger"
	"github.com/atfkit/atf/pkg/metrics"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const supportedVersion = "1.0.0"

var (
	startTarget      string
	startDumpJSON    bool
	startBaseAddress uint64
	startAPIHost     string
	startAPIPort     int
	startNumWorkers  int
	startVersionFlag string
	startCatalogue   string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Attach to a target process and serve the MemCore/HookCore TCP surface",
	Long: `Start attaches RemoteReader to the named target process, builds the
reflection catalogue, and serves expressions over both a TCP MessageServer
and a foreground interactive console that reads expressions from standard
input and writes the rendered result (or an "#error"-prefixed message) to
standard output.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startTarget, "target", "", "Target process image name (required)")
	startCmd.Flags().BoolVar(&startDumpJSON, "dump-json", false, "Render StructDumper output as JSON instead of text")
	startCmd.Flags().Uint64Var(&startBaseAddress, "base-address", 0, "Override the target module's base address (0 = auto-detect)")
	startCmd.Flags().StringVar(&startAPIHost, "api-host", "", "MessageServer bind host")
	startCmd.Flags().IntVar(&startAPIPort, "api-port", 0, "MessageServer bind port")
	startCmd.Flags().IntVar(&startNumWorkers, "num-workers", 0, "Worker-pool size draining the inbound request queue (1..32)")
	startCmd.Flags().StringVar(&startVersionFlag, "version", "", "Wire-compat version to run (only \"1.0.0\" is implemented)")
	startCmd.Flags().StringVar(&startCatalogue, "catalogue", "", "Path to a serialized reflection catalogue (default: built-in demo catalogue)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyStartFlags(cmd, cfg)

	if cfg.Target == "" {
		return fmt.Errorf("--target is required (or set `target` in the config file)")
	}
	if cfg.Version != "" && cfg.Version != supportedVersion {
		return fmt.Errorf("unsupported version %q (only %q is implemented)", cfg.Version, supportedVersion)
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "atf",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "atf",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("initializing profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	hookMetrics := metrics.NewHookMetrics()
	serverMetrics := metrics.NewServerMetrics()
	memMetrics := metrics.NewMemMetrics()
	exprMetrics := metrics.NewExprMetrics()

	baseCat, err := loadCatalogue(startCatalogue)
	if err != nil {
		return err
	}
	extCat := reflectcat.NewExtendedCatalogue(baseCat)

	reader, err := memory.New(ctx, cfg.Target, memMetrics)
	if err != nil {
		return fmt.Errorf("attaching to %s: %w", cfg.Target, err)
	}
	defer reader.Close()

	moduleBase := resolveModuleBase(reader, cfg.BaseAddress)
	logger.Info("module base resolved", logger.TargetProcess(cfg.Target), logger.BaseAddress(moduleBase))

	root := hook.NewHookRoot(baseCat, hookMetrics)
	root.SetInstaller(stubInstaller)
	root.SetSignature(hook.Signature{ATFSignature: signatureHash(supportedVersion), HookMajor: 1, HookMinor: 0})

	handler := &memCoreHandler{
		cat:        extCat,
		reader:     reader,
		moduleBase: moduleBase,
		dumpJSON:   cfg.DumpJSON,
		metrics:    exprMetrics,
	}

	srv := server.New(server.Config{
		Host:       cfg.APIHost,
		Port:       cfg.APIPort,
		NumWorkers: cfg.NumWorkers,
		Handler:    handler,
		Metrics:    serverMetrics,
	})

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Serve(ctx) }()

	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		runRepl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), handler)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("atf started", logger.TargetProcess(cfg.Target), logger.Component("start"))

	select {
	case <-sigChan:
		logger.Info("shutdown signal received, stopping")
		cancel()
		srv.Stop()
		<-serverDone
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-replDone:
		cancel()
		srv.Stop()
		<-serverDone
	}

	return nil
}

// applyStartFlags overlays any explicitly-set start flags onto cfg, which
// already carries file/env/default precedence from config.Load.
func applyStartFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Target = startTarget
	}
	if flags.Changed("dump-json") {
		cfg.DumpJSON = startDumpJSON
	}
	if flags.Changed("base-address") {
		cfg.BaseAddress = startBaseAddress
	}
	if flags.Changed("api-host") {
		cfg.APIHost = startAPIHost
	}
	if flags.Changed("api-port") {
		cfg.APIPort = startAPIPort
	}
	if flags.Changed("num-workers") {
		cfg.NumWorkers = startNumWorkers
	}
	if flags.Changed("version") {
		cfg.Version = startVersionFlag
	}
}

// resolveModuleBase honors an explicit override, otherwise tries the
// platform auto-detector, falling back to the historical PE-convention
// default (0x140000000) when neither is available.
func resolveModuleBase(reader *memory.RemoteReader, override uint64) uint64 {
	if override != 0 {
		return override
	}
	if base, err := reader.ModuleBase(); err == nil {
		return base
	}
	return 0x140000000
}

// signatureHash folds a version string into a uint64 so Signature has a
// stable, non-zero ATFSignature without hard-coding a magic build number.
func signatureHash(version string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(version))
	return h.Sum64()
}

// memReader is the slice of *memory.RemoteReader the pipeline needs,
// narrowed to an interface so tests can drive memCoreHandler without a real
// target process.
type memReader interface {
	ResolveAddress(program expr.AddressProgram, moduleBase uint64) (uint64, error)
	ReadMemory(addr uint64, size int) ([]byte, error)
}

// memCoreHandler implements server.Handler and the interactive console's
// evaluation step: both run the same Evaluate -> ResolveAddress/ReadMemory
// -> Dump pipeline over the same RemoteReader and ExtendedCatalogue.
type memCoreHandler struct {
	cat        *reflectcat.ExtendedCatalogue
	reader     memReader
	moduleBase uint64
	dumpJSON   bool
	metrics    metrics.ExprMetrics
}

func (h *memCoreHandler) Handle(ctx context.Context, code string) (string, error) {
	result, err := expr.Evaluate(code, h.cat, h.moduleBase, h.metrics)
	if err != nil {
		return "", err
	}

	addr, err := h.reader.ResolveAddress(result.Program, h.moduleBase)
	if err != nil {
		return "", err
	}

	// StateAddress always renders the resolved address itself and skips the
	// memory read -- true for a bare numeric literal (no Node at all) and
	// for an address-producing expression like &gConfig, which carries a
	// valid synthesized Pointer Node but is still an address, not a value
	// to dump.
	if result.Kind == expr.StateAddress {
		return fmt.Sprintf("\"0x%016X\"", addr), nil
	}

	buf, err := h.reader.ReadMemory(addr, int(result.Node.Size))
	if err != nil {
		return "", err
	}

	dumper := reflectcat.NewDumper(h.cat, reflectcat.DumpOptions{JSON: h.dumpJSON})
	return dumper.Dump(result.Node, buf)
}

// runRepl implements spec's interactive mode: read a line from standard
// input, evaluate it as an expression, write the result (or an
// "#"-prefixed error) to standard output. Exits on EOF, Ctrl+C, or ctx
// cancellation.
func runRepl(ctx context.Context, stdin io.Reader, stdout io.Writer, handler *memCoreHandler) {
	if f, ok := stdin.(*os.File); ok && f == os.Stdin {
		runReplPrompt(ctx, stdout, handler)
		return
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		evalAndPrint(ctx, handler, scanner.Text(), stdout)
	}
}

func runReplPrompt(ctx context.Context, stdout io.Writer, handler *memCoreHandler) {
	for {
		if ctx.Err() != nil {
			return
		}
		prompt := promptui.Prompt{Label: "atf"}
		line, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			return
		}
		evalAndPrint(ctx, handler, line, stdout)
	}
}

func evalAndPrint(ctx context.Context, handler *memCoreHandler, line string, stdout io.Writer) {
	out, err := handler.Handle(ctx, line)
	if err != nil {
		fmt.Fprintf(stdout, "#%s\n", err.Error())
		return
	}
	fmt.Fprintln(stdout, out)
}
