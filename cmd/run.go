package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"keysim/internal/api"
	"keysim/internal/config"
	"keysim/internal/hotkey"
	"keysim/internal/input"
	"keysim/internal/notify"
	"keysim/internal/osutils"
	"keysim/internal/payload"
	"keysim/internal/simulator"
	"keysim/internal/tray"
)

const (
	defaultStopKey  = "F10"
	defaultPauseKey = "F11"
)

type runOptions struct {
	configPath string
	text       string
	file       string
	targetOS   string
	output     string
	delay      float64
	countdown  int
	backend    string

	hotkeys  bool
	stopKey  string
	pauseKey string
	tray     bool
	listen   string
	token    string
	notify   bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Count down, then type the configured payload",
		Long: `Count down, then type the configured payload into the focused window.

The payload comes from --config, --text or --file. Without any of them the
per-user configuration written by 'keysim init' is used.

Examples:
  keysim run --text "hello world"
  keysim run --file build.sh --target-os linux --countdown 10
  keysim run --config keysim.toml --backend interception --hotkeys`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, o, g)
		},
	}

	o.addFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("config", "text", "file")
	return cmd
}

func (o *runOptions) addFlags(f *pflag.FlagSet) {
	f.StringVarP(&o.configPath, "config", "c", "", "configuration file (.json, .toml, .yaml)")
	f.StringVar(&o.text, "text", "", "text to type")
	f.StringVar(&o.file, "file", "", "file to rebuild on the target")
	f.StringVar(&o.targetOS, "target-os", string(config.TargetLinux), "target shell for --file (linux, windows)")
	f.StringVar(&o.output, "output", "", "output file name on the target (default: base name of --file)")
	f.Float64Var(&o.delay, "delay", config.DefaultDelay, "seconds between keystrokes")
	f.IntVar(&o.countdown, "countdown", config.DefaultCountdown, "seconds to wait before typing")
	f.StringVar(&o.backend, "backend", string(input.KindSendInput), "injection backend (sendinput, interception)")
	f.BoolVar(&o.hotkeys, "hotkeys", false, "enable global stop and pause hotkeys")
	f.StringVar(&o.stopKey, "stop-key", defaultStopKey, "hotkey that stops the run")
	f.StringVar(&o.pauseKey, "pause-key", defaultPauseKey, "hotkey that pauses or resumes the run")
	f.BoolVar(&o.tray, "tray", false, "show a system tray icon with run controls")
	f.StringVar(&o.listen, "listen", "", "serve the control API on this address, e.g. 127.0.0.1:8765")
	f.StringVar(&o.token, "token", "", "bearer token required by the control API")
	f.BoolVar(&o.notify, "notify", false, "show a desktop notification when the run ends")
}

// buildConfig resolves the payload source and applies timing overrides
func buildConfig(flags *pflag.FlagSet, o *runOptions) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.configPath != "":
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case flags.Changed("text"):
		cfg = config.NewText(o.text)
	case o.file != "":
		cfg = config.NewFile(o.file, config.TargetOS(o.targetOS), o.output)
	default:
		path, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locating default config: %w", err)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("no payload given: use --config, --text or --file, or run 'keysim init' to create %s", path)
		}
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("delay") {
		cfg.DelayBetweenKeystrokes = o.delay
	}
	if flags.Changed("countdown") {
		cfg.CountdownBeforeStart = o.countdown
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRun(cmd *cobra.Command, o *runOptions, g *globalOptions) error {
	log := g.component("run")

	cfg, err := buildConfig(cmd.Flags(), o)
	if err != nil {
		return err
	}
	plan, err := payload.BuildPlan(cfg)
	if err != nil {
		return err
	}
	backend, err := input.New(input.Kind(o.backend), g.component("input"))
	if err != nil {
		return err
	}

	if runtime.GOOS == "windows" && !osutils.IsAdmin() {
		log.Warn("Run: not elevated; keystrokes cannot reach windows of elevated programs")
	}

	out := &lockedWriter{w: cmd.OutOrStdout()}
	notifier := notify.New(o.notify, g.component("notify"))

	var (
		sim *simulator.Simulator
		srv *api.Server
		tr  *tray.Tray
	)
	hooks := simulator.Hooks{
		OnCountdown: func(remaining int) {
			out.Printf("Starting in %d...\n", remaining)
			if tr != nil {
				tr.SetCountdown(remaining)
			}
			if srv != nil {
				srv.BroadcastCountdown(remaining)
			}
		},
		OnStatus: func(st simulator.State) {
			out.Printf("Status: %s\n", st)
			if tr != nil {
				tr.SetStatus(st)
			}
			if srv != nil {
				srv.BroadcastStatus(st)
			}
			if st.Terminal() {
				done, total := sim.Progress()
				notifier.RunFinished(st, done, total)
			}
		},
		OnProgress: func(done, total int) {
			if tr != nil {
				tr.SetProgress(done, total)
			}
			if srv != nil {
				srv.BroadcastProgress(done, total)
			}
		},
	}
	sim = simulator.New(backend, hooks, simulator.WithLogger(g.component("simulator")))

	if o.tray {
		tr = tray.New(tray.Controls{Pause: sim.Pause, Resume: sim.Resume, Stop: sim.Stop}, g.component("tray"))
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if o.listen != "" {
		server, stopServer, err := startControlServer(ctx, sim, o, g.component("api"), out)
		if err != nil {
			return err
		}
		defer stopServer()
		srv = server
	}

	if o.hotkeys {
		mgr := hotkey.NewManager(g.component("hotkey"))
		if _, err := mgr.Register(o.stopKey, sim.Stop); err != nil {
			return fmt.Errorf("stop hotkey: %w", err)
		}
		if _, err := mgr.Register(o.pauseKey, sim.TogglePause); err != nil {
			return fmt.Errorf("pause hotkey: %w", err)
		}
		if err := mgr.Start(); err != nil {
			log.Warn("Run: hotkeys unavailable", "error", err)
		} else {
			defer mgr.Stop()
			out.Printf("Hotkeys: %s stops, %s pauses or resumes\n", o.stopKey, o.pauseKey)
		}
	}

	go func() {
		<-ctx.Done()
		sim.Stop()
	}()

	release := osutils.KeepAwake()
	defer release()

	var runErr error
	if tr != nil {
		finished := make(chan error, 1)
		go func() {
			<-tr.Ready()
			finished <- sim.RunPlan(plan)
			tr.Quit()
		}()
		tr.Run()
		sim.Stop()
		runErr = <-finished
	} else {
		runErr = sim.RunPlan(plan)
	}

	done, total := sim.Progress()
	out.Printf("Finished: %s (%d/%d characters)\n", sim.State(), done, total)
	return runErr
}

func startControlServer(ctx context.Context, sim *simulator.Simulator, o *runOptions, log *slog.Logger, out *lockedWriter) (*api.Server, func(), error) {
	if o.token == "" {
		log.Warn("API: no token set; anyone who can reach the address can control the run", "addr", o.listen)
	}

	ln, err := net.Listen("tcp", o.listen)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", o.listen, err)
	}

	srv := api.NewServer(sim, o.token, log)
	serveCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := srv.Serve(serveCtx, ln); err != nil {
			log.Error("API: server error", "error", err)
		}
	}()
	out.Printf("Control server listening on %s\n", ln.Addr())

	return srv, func() {
		cancel()
		<-stopped
		srv.Close()
	}, nil
}

// lockedWriter serializes output from hooks that fire on different goroutines
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}
