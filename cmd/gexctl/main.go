package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gm8ext/gex/pkg/ext"
	"github.com/gm8ext/gex/pkg/logging"
)

var (
	outputPath string
	optimize   bool
	logLevel   string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "gexctl <input.ged|.gmp|.gex|.dat> [output]",
		Short: "Inspect and round-trip GameMaker extension container files",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (defaults to stdout summary when omitted)")
	rootCmd.Flags().BoolVar(&optimize, "optimize", false, "Write with recoverable fields elided, as a compiled package would")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("gexctl: %v", err))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = logging.GetLogLevel()
	}
	logger := logging.NewLogger("gexctl", level, os.Stderr)

	inputPath := args[0]
	rewrite := outputPath != ""
	if len(args) == 2 {
		outputPath = args[1]
		rewrite = true
	}

	file := ext.NewFile(logger)

	switch kind := classifyBySuffix(inputPath); kind {
	case ext.KindGEDFile:
		return loadAndShowGED(file, inputPath, rewrite)
	case ext.KindGEXFile:
		return loadAndShowGEX(file, inputPath)
	case ext.KindDATFile:
		return fmt.Errorf("gexctl: DAT inspection requires --names, not yet wired into this command")
	default:
		return fmt.Errorf("gexctl: cannot classify %q by suffix", inputPath)
	}
}

func classifyBySuffix(path string) ext.Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ged", ".gmp":
		return ext.KindGEDFile
	case ".gex":
		return ext.KindGEXFile
	case ".dat":
		return ext.KindDATFile
	default:
		return ext.KindUnknownFile
	}
}

func loadAndShowGED(file *ext.File, path string, rewrite bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	proto, err := file.LoadGED(f)
	f.Close()
	if err != nil {
		return err
	}
	printPrototype(proto)

	if !rewrite {
		return nil
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return file.SaveGED(out, proto, optimize)
}

func loadAndShowGEX(file *ext.File, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	destDir := outputPath
	if destDir == "" {
		destDir = "."
	}

	pkg, err := file.LoadGEX(f, extractingSink(destDir))
	if err != nil {
		return err
	}
	printPrototype(pkg.Prototype)
	return nil
}

// extractingSink returns a LoadSinkFunc that writes every payload slot to
// destDir under its logical name, creating destDir if necessary.
func extractingSink(destDir string) ext.LoadSinkFunc {
	return func(name, sourceHint string) (dst io.Writer, rewrittenHint string, ok bool, err error) {
		if name == "" {
			return nil, "", false, nil
		}
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return nil, "", false, err
		}
		target := filepath.Join(destDir, name)
		out, err := os.Create(target)
		if err != nil {
			return nil, "", false, err
		}
		return out, target, true, nil
	}
}

func printPrototype(p *ext.Prototype) {
	bold := color.New(color.Bold)
	bold.Println(p.Name)
	fmt.Printf("  version:     %s\n", p.Version)
	fmt.Printf("  author:      %s\n", p.Author)
	fmt.Printf("  license:     %s\n", p.License)
	fmt.Printf("  temp folder: %s\n", p.TempFolder)
	fmt.Printf("  entries:     %d\n", len(p.Entries))
	for _, de := range p.Entries {
		fmt.Printf("    - %s (%s)\n", de.Name, contentKindLabel(de.Content.Kind()))
	}
}

func contentKindLabel(k ext.ContentKind) string {
	switch k {
	case ext.KindNativeLibrary:
		return "native library"
	case ext.KindScriptLibrary:
		return "script library"
	case ext.KindBinaryPlugin:
		return "binary plugin"
	case ext.KindSimpleBinary:
		return "simple binary"
	default:
		return "unknown"
	}
}

// newTempFolder mints a temp-folder name in the "temp%03d" shape the IDE
// itself uses, for callers assembling a fresh Prototype rather than loading
// one from disk.
func newTempFolder() string {
	return fmt.Sprintf("temp%03d", rand.IntN(1000))
}
