// cmodelc converts 3D models into compressed cmodel files and inspects them.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/Faultbox/cmodel/internal/config"
	"github.com/Faultbox/cmodel/internal/importer"
	"github.com/Faultbox/cmodel/internal/logger"
	"github.com/Faultbox/cmodel/pkg/cmodel"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`cmodelc - compressed mesh converter

Usage:
  cmodelc <command> [options]

Commands:
  convert -i <model> -o <file.cmodel>   Convert a glTF/GLB model
  info <file.cmodel>                    Show per-mesh summary
  dump <file.cmodel>                    Dump decoded chunk headers
  config [path]                         Write the default config file

Convert options:
  -config <file>     Config file (default ./cmodel.yaml or user config dir)
  -workers <n>       Meshes encoded concurrently
  -debug             Enable debug logging
  -log-file <file>   Also write logs to a rotated file
  -no-gen-normals    Do not generate missing normals
  -no-flip-uvs       Keep texture coordinates as imported

Examples:
  cmodelc convert -i ship.glb -o ship.cmodel
  cmodelc info ship.cmodel`)
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	input := fs.String("i", "", "Input model file")
	output := fs.String("o", "", "Output cmodel file")
	cfgFlags := config.RegisterFlags(fs)
	fs.Parse(args)

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: cmodelc convert -i <model> -o <file.cmodel>")
		os.Exit(1)
	}

	cfg, err := config.Load(cfgFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	s, err := importer.Load(*input, importer.Options{
		Triangulate: cfg.Import.Triangulate,
		GenNormals:  cfg.Import.GenNormals,
		FlipUVs:     cfg.Import.FlipUVs,
	})
	if err != nil {
		log.Error("Import failed", zap.String("input", *input), zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Info("Imported scene", zap.String("input", *input), zap.Int("meshes", len(s.Meshes)))

	enc := cmodel.NewEncoder(
		cmodel.WithLogger(log),
		cmodel.WithWorkers(cfg.Encode.Workers),
	)
	if err := enc.WriteFile(*output, s); err != nil {
		log.Error("Encode failed", zap.String("output", *output), zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	if st, err := os.Stat(*output); err == nil {
		log.Info("Wrote cmodel", zap.String("output", *output), zap.Int64("bytes", st.Size()))
	}
}

func openModel(args []string, usage string) *cmodel.File {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	f, err := cmodel.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return f
}

func cmdInfo(args []string) {
	f := openModel(args, "Usage: cmodelc info <file.cmodel>")

	fmt.Printf("File:   %s\n", args[0])
	fmt.Printf("Meshes: %d\n", len(f.Meshes))
	fmt.Println()

	var totalCompressed, totalRaw int64
	for i, m := range f.Meshes {
		var flags []string
		compressed := int64(m.Index.CompressedSize())
		raw := int64(m.Index.UncompressedSize)
		for _, a := range m.Attributes {
			flags = append(flags, a.Flag.String())
			compressed += int64(a.Block.CompressedSize())
			raw += int64(a.Block.UncompressedSize)
		}
		triangles := int(m.Index.UncompressedSize) / m.IndexWidth.Size() / 3

		fmt.Printf("  [%d] %d bytes, %d triangles (%s indices), %s\n",
			i, m.Length, triangles, m.IndexWidth, strings.Join(flags, "|"))
		totalCompressed += compressed
		totalRaw += raw
	}

	if totalRaw > 0 {
		fmt.Println()
		fmt.Printf("Payload: %.2f KB compressed / %.2f KB raw (%.1f%%)\n",
			float64(totalCompressed)/1024, float64(totalRaw)/1024,
			100*float64(totalCompressed)/float64(totalRaw))
	}
}

func cmdDump(args []string) {
	f := openModel(args, "Usage: cmodelc dump <file.cmodel>")

	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		MaxDepth:                4,
		SortKeys:                true,
	}
	for i, m := range f.Meshes {
		// Payloads are omitted; only the framing is of interest here.
		header := struct {
			Length     uint64
			IndexWidth string
			Index      [2]int32
			Attributes map[string][2]int32
		}{
			Length:     m.Length,
			IndexWidth: m.IndexWidth.String(),
			Index:      [2]int32{m.Index.CompressedSize(), m.Index.UncompressedSize},
			Attributes: make(map[string][2]int32),
		}
		for _, a := range m.Attributes {
			header.Attributes[a.Flag.String()] = [2]int32{a.Block.CompressedSize(), a.Block.UncompressedSize}
		}
		fmt.Printf("mesh %d: ", i)
		cfg.Dump(header)
	}
}

func cmdConfig(args []string) {
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.Default().SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config: %s\n", path)
}
