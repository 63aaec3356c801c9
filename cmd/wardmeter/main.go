package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wardmeter/meter/internal/capture"
	"github.com/wardmeter/meter/internal/config"
	"github.com/wardmeter/meter/internal/domain"
	"github.com/wardmeter/meter/internal/resources"
	"github.com/wardmeter/meter/internal/schema"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────
//
// Adapted from the teacher's ANSI-banner startup sequence
// (cmd/l1jgo/main.go printBanner/printSection/printStat/printOK/printReady):
// same box-drawing and color scheme, reporting resource-load and
// capture-pipeline readiness instead of NPC/item table counts.

func printBanner(runID string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           wardmeter  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      passive combat telemetry meter       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mrun:\033[0m %s\n\n", runID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main process logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/wardmeter.toml"
	if p := os.Getenv("WARDMETER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	runID := uuid.NewString()
	printBanner(runID)
	log = log.With(zap.String("run_id", runID))

	// 3. Load resources (§6 "Files on disk" — XOR table, decompressor state,
	// skill database, boss list, buff classifier). These are the external
	// collaborators §1 leaves unmodeled as interfaces; LoadXORTable etc. give
	// them concrete, testable implementations.
	printSection("resources")

	xor, err := resources.LoadXORTable(cfg.Resources.XorTablePath)
	if err != nil {
		return fmt.Errorf("xor table: %w", err)
	}
	printOK("deobfuscation table loaded")

	var decompressor *capture.Decompressor
	if dec, err := resources.LoadOodleState(cfg.Resources.DecompressorState, cfg.Resources.DecompressorLib); err != nil {
		log.Warn("oodle decompressor unavailable; compression-method-3 frames will be dropped", zap.Error(err))
		decompressor = capture.NewDecompressor(nil)
	} else {
		decompressor = capture.NewDecompressor(dec)
		printOK("oodle decompressor state loaded")
	}

	skillDB, err := resources.LoadSkillDB(cfg.Resources.SkillDatabasePath)
	if err != nil {
		return fmt.Errorf("skill database: %w", err)
	}
	printStat("skills loaded", skillDB.Len())

	classes, err := resources.LoadBuffClassifier(cfg.Resources.BrandConfigPath)
	if err != nil {
		log.Warn("buff classifier config unavailable; using built-in defaults", zap.Error(err))
		classes = domain.DefaultBuffClassifier()
	} else {
		printOK("brand/AP/identity buff classes loaded")
	}

	var bosses domain.BossRegistry
	if bl, err := resources.LoadBossList(cfg.Resources.BossListPath); err != nil {
		log.Warn("boss species list unavailable; no NPC will be tracked as a boss", zap.Error(err))
	} else {
		bosses = bl
		printOK("boss species list loaded")
	}
	fmt.Println()

	// 4. Build the domain state machine (§3, §4.3) and the schema registry
	// (§4.2). The machine is the single mutex-guarded aggregate root every
	// capture pipeline instance and the status reporter share (§5).
	machine := domain.NewMachine(domain.MachineConfig{
		ResetDelay:            cfg.Encounter.ResetDelay,
		MaxProjectileChainLen: cfg.Encounter.MaxProjectileChainLen,
	}, skillDB, classes, bosses, log.With(zap.String("component", "domain")))

	registry := schema.NewRegistry(log.With(zap.String("component", "schema")))

	// 5. Discover the target process (§4.1 "Process discovery"). Fail
	// fatally if the game client window cannot be found.
	printSection("capture")

	plat := capture.NewPlatform()
	pid, err := plat.FindTargetWindow(cfg.Capture.WindowClass)
	if err != nil {
		return fmt.Errorf("find target process: %w", err)
	}
	printStat("target pid", int(pid))

	tracker := capture.NewTracker(plat, pid, log.With(zap.String("component", "capture")))

	// 6. Startup handshake (§5): the capture thread is spawned before the
	// "UI" (here, the headless status reporter) is initialized; it blocks on
	// a one-shot channel awaiting the render context, needed only so it can
	// request repaints. If the channel closes without delivery, the capture
	// thread exits.
	renderCtx := make(chan struct{}, 1)

	captureLog := log.With(zap.String("component", "capture"))
	go runCapturePipeline(tracker, xor, decompressor, registry, machine, renderCtx, captureLog)

	// Deliver the handshake: the headless reporter stands in for the
	// overlay's render loop, so this fires immediately.
	renderCtx <- struct{}{}

	printReady(fmt.Sprintf("capture thread attached to pid %d", pid))
	fmt.Println()

	// 7. Main/UI thread: a headless status reporter stands in for the
	// overlay's render loop (§9 SUPPLEMENTED FEATURES), reading the shared
	// Data aggregate under the machine's mutex on every repaint signal and
	// printing the current encounter's top line.
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	printSection("status")
	heartbeat := time.NewTicker(5 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-machine.Repaint():
			reportStatus(machine)
		case <-heartbeat.C:
			reportStatus(machine)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			tracker.Stop()
			return nil
		}
	}
}

// runCapturePipeline owns the socket set, reassembly buffers, decompressor,
// and schema arena for the target process (§5 "Capture thread"). It blocks
// on the startup handshake, then runs the connection tracker and spawns one
// Pipeline goroutine per shadow connection it reports.
func runCapturePipeline(
	tracker *capture.Tracker,
	xor *capture.XORTable,
	decompressor *capture.Decompressor,
	registry *schema.Registry,
	machine *domain.Machine,
	renderCtx <-chan struct{},
	log *zap.Logger,
) {
	if _, ok := <-renderCtx; !ok {
		log.Info("capture thread exiting: render context channel closed without delivery")
		return
	}

	pipeline := capture.NewPipeline(xor, decompressor, registry, 1<<16, machine, log)

	go tracker.Run()

	for conn := range tracker.NewShadowConns() {
		go pipeline.Run(conn)
	}
}

// reportStatus prints the current encounter's top line under the machine's
// read lock, mirroring the overlay contract's "no qualifying activity"
// fallback (§7 "User-visible failure").
func reportStatus(machine *domain.Machine) {
	machine.View(func(d *domain.Data) {
		enc := d.CurrentEncounter()
		if enc == nil || !enc.HasQualifyingActivity() {
			fmt.Println("  no data.")
			return
		}
		env := d.CurrentEnvironment()
		rows := domain.PlayerBreakdowns(env, enc)
		if len(rows) == 0 {
			fmt.Println("  no data.")
			return
		}
		top := rows[0]
		fmt.Printf("  top: %s  dmg=%d  dps=%.0f\n", displayName(top.Name, top.Object), top.TotalDamage, top.DPS)

		if boss := domain.TrackedBossInfo(d.Live); boss != nil && boss.MaxHP > 0 {
			pct := float64(boss.CurHP) / float64(boss.MaxHP) * 100
			fmt.Printf("  boss hp: %.1f%%  (%d / %d)\n", pct, boss.CurHP, boss.MaxHP)
		}
	})
}

func displayName(name string, obj domain.ObjectID) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("obj:%d", obj)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
