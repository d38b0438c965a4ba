package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/ngvet/internal/di"
	ngerrors "github.com/conneroisu/ngvet/internal/errors"
	"github.com/conneroisu/ngvet/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve [path...]",
	Aliases: []string{"s"},
	Short:   "Start the findings dashboard",
	Long: `Start the findings dashboard with live updates.
Watches the checked tree and pushes fresh findings to connected
browsers over WebSocket after every change.

Examples:
  ngvet serve                     # Serve findings for configured paths
  ngvet serve src/app             # Serve findings for one directory
  ngvet serve --port 9000         # Serve on a custom port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 7878, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))

	AddFlagValidation(serveCmd, "port", ValidatePort)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths := cfg.Paths.Include
	if len(args) > 0 {
		if err := validateTargetPaths(args); err != nil {
			return err
		}
		paths = args
	}

	logger := newLogger()
	container := di.NewContainer(cfg, logger)
	defer func() {
		if shutdownErr := container.Shutdown(context.Background()); shutdownErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: shutdown error: %v\n", shutdownErr)
		}
	}()

	srv := container.Server()

	// First run before the server accepts clients, so the dashboard
	// has a report on first paint.
	rep, err := runLint(context.Background(), container, paths)
	if err != nil {
		return err
	}
	srv.SetReport(rep)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutting down dashboard...")
		cancel()
	}()

	if err := startServeWatcher(ctx, container, paths); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: live updates disabled: %v\n", err)
	}

	fmt.Printf("Starting ngvet dashboard at http://%s\n", srv.Addr())
	fmt.Printf("Checked paths: %s\n", strings.Join(paths, ", "))

	if err := srv.Start(ctx); err != nil {
		if strings.Contains(err.Error(), "address already in use") || strings.Contains(err.Error(), "bind") {
			suggestions := ngerrors.ServerStartSuggestions(err, cfg.Server.Port)
			return ngerrors.NewEnhancedError(
				fmt.Sprintf("Failed to start dashboard on port %d", cfg.Server.Port),
				err,
				suggestions,
			)
		}
		return fmt.Errorf("dashboard error: %w", err)
	}

	return nil
}

// startServeWatcher wires the file watcher so every change batch
// re-checks the tree and pushes the fresh report to the hub.
func startServeWatcher(ctx context.Context, container *di.Container, paths []string) error {
	fileWatcher, err := container.Watcher()
	if err != nil {
		return err
	}

	fileWatcher.AddFilter(watcher.SourceFilter)
	fileWatcher.AddFilter(watcher.NoTempFilter)
	fileWatcher.AddFilter(watcher.NoNodeModulesFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)

	absRoots, err := resolveRoots(paths)
	if err != nil {
		return err
	}

	w := container.Walker()
	reg := container.Registry()
	srv := container.Server()

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, event := range events {
			root, ok := rootFor(event.Path, absRoots)
			if !ok {
				continue
			}

			switch event.Type {
			case watcher.EventTypeDeleted, watcher.EventTypeRenamed:
				if rel, relErr := filepath.Rel(root, event.Path); relErr == nil {
					reg.Remove(filepath.ToSlash(rel))
				}
			default:
				if setErr := w.SetRoot(root); setErr != nil {
					continue
				}
				if walkErr := w.WalkFile(event.Path); walkErr != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to process %s: %v\n", event.Path, walkErr)
				}
			}
		}

		eng, engErr := container.Engine()
		if engErr != nil {
			return engErr
		}
		rep, runErr := eng.Run(context.Background(), rootLabel(paths))
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Re-check failed: %v\n", runErr)
			return runErr
		}

		srv.SetReport(rep)
		fmt.Printf("🔁 Re-checked %d file(s): %d finding(s)\n", rep.Files, len(rep.Findings))
		return nil
	})

	for _, path := range paths {
		if err := fileWatcher.AddRecursive(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to watch path %s: %v\n", path, err)
		}
	}

	return fileWatcher.Start(ctx)
}
