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

	"github.com/conneroisu/ngvet/internal/config"
	"github.com/conneroisu/ngvet/internal/di"
	"github.com/conneroisu/ngvet/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch [path...]",
	Aliases: []string{"w"},
	Short:   "Watch for file changes and re-check",
	Long: `Watch for file changes and automatically re-check affected sources.
Parse results for unchanged files are cached, so incremental runs only
pay for the files that actually changed.

Examples:
  ngvet watch                     # Watch configured include paths
  ngvet watch src/app             # Watch one directory
  ngvet watch --verbose           # Print each changed file`,
	RunE: runWatch,
}

var watchVerbose bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose output")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	// Resolve the watched roots up front. Change events carry absolute
	// paths and need mapping back to the root they belong to.
	absRoots, err := resolveRoots(paths)
	if err != nil {
		return err
	}

	fileWatcher, err := container.Watcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	fileWatcher.AddFilter(watcher.SourceFilter)
	fileWatcher.AddFilter(watcher.NoTempFilter)
	fileWatcher.AddFilter(watcher.NoNodeModulesFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)

	w := container.Walker()
	reg := container.Registry()

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Printf("📁 File changes detected:\n")
			for _, event := range events {
				fmt.Printf("   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Printf("📁 %d file(s) changed\n", len(events))
		}

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
					fmt.Fprintf(os.Stderr, "Warning: %v\n", setErr)
					continue
				}
				if walkErr := w.WalkFile(event.Path); walkErr != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to process %s: %v\n", event.Path, walkErr)
				}
			}
		}

		if err := checkAndPrint(container, cfg, paths); err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		}
		return nil
	})

	fmt.Println("🔍 Setting up file watching...")
	for _, path := range paths {
		if err := fileWatcher.AddRecursive(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to watch path %s: %v\n", path, err)
		} else {
			fmt.Printf("   - Watching: %s\n", path)
		}
	}

	fmt.Println("📁 Performing initial check...")
	if rep, lintErr := runLint(context.Background(), container, paths); lintErr != nil {
		fmt.Fprintf(os.Stderr, "Initial check failed: %v\n", lintErr)
	} else if writeErr := writeReport(cfg, rep); writeErr != nil {
		fmt.Fprintf(os.Stderr, "Initial check failed: %v\n", writeErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Println("👀 Watching for changes... (Press Ctrl+C to stop)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\n🛑 Stopping file watcher...")
	cancel()

	return nil
}

// resolveRoots converts the target paths to absolute form.
func resolveRoots(paths []string) ([]string, error) {
	absRoots := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		absRoots = append(absRoots, abs)
	}
	return absRoots, nil
}

// rootFor maps an absolute changed path onto the watched root that
// contains it.
func rootFor(path string, absRoots []string) (string, bool) {
	for _, root := range absRoots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}

// checkAndPrint runs the engine over the registered files and prints
// the report. Watch runs never fail the process; findings keep
// streaming until interrupted.
func checkAndPrint(container *di.Container, cfg *config.Config, paths []string) error {
	eng, err := container.Engine()
	if err != nil {
		return err
	}

	rep, err := eng.Run(context.Background(), rootLabel(paths))
	if err != nil {
		return err
	}
	return writeReport(cfg, rep)
}
