// Command gosave transcodes serialized containers between the JSON and
// binary formats bound by pkg/serial, batching many files concurrently
// through pkg/serial/transcode.BatchTranscode.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/lk2023060901/gosave/internal/ioutil"
	"github.com/lk2023060901/gosave/pkg/log"
	"github.com/lk2023060901/gosave/pkg/metrics"
	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/binary"
	"github.com/lk2023060901/gosave/pkg/serial/jsonformat"
	"github.com/lk2023060901/gosave/pkg/serial/transcode"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML/JSON config file (optional)")
		to          = flag.String("to", "", "target format: json or binary")
		concurrency = flag.Int("concurrency", 0, "max concurrent transcode jobs (0 = config default)")
	)
	flag.Parse()
	inputs := flag.Args()

	if _, _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "gosave: maxprocs.Set failed: %v\n", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gosave: loadConfig failed: %v\n", err)
		os.Exit(1)
	}

	logger, props, err := log.InitLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gosave: InitLogger failed: %v\n", err)
		os.Exit(1)
	}
	log.ReplaceGlobals(logger, props)
	defer log.Sync()
	log.Info("gosave starting", zap.Stringer("serialVersion", serial.Version()))

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	metrics.RegisterLoggingMetrics(registry)
	metrics.RegisterSerialMetrics(registry)
	metrics.SetBuildInfo(registry, serial.Version().String())

	if len(inputs) == 0 {
		log.Fatal("gosave: no input files given")
	}
	if *to != "json" && *to != "binary" {
		log.Fatal("gosave: -to must be \"json\" or \"binary\"", zap.String("to", *to))
	}

	concurrencyLimit := *concurrency
	if concurrencyLimit <= 0 {
		concurrencyLimit = cfg.Concurrency
	}

	ctx := context.Background()
	jobs := make([]transcode.Job, 0, len(inputs))
	for _, in := range inputs {
		in := in
		jobs = append(jobs, transcode.Job{
			Name: in,
			Run: func(ctx context.Context) error {
				return transcodeFile(ctx, in, *to)
			},
		})
	}

	failures := transcode.BatchTranscode(ctx, jobs, concurrencyLimit)
	if len(failures) > 0 {
		for _, err := range failures {
			log.Error("transcode job failed", zap.Error(err))
		}
		os.Exit(1)
	}
	log.Info("gosave: batch transcode complete", zap.Int("files", len(inputs)))
}

func transcodeFile(ctx context.Context, path, to string) error {
	data, err := ioutil.ReadContainer(ctx, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	isJSON := strings.EqualFold(filepath.Ext(path), ".json")
	outPath := outputPath(path, to)

	switch {
	case isJSON && to == "binary":
		root, err := jsonformat.Parse(string(data))
		if err != nil {
			return fmt.Errorf("parse json %s: %w", path, err)
		}
		src := jsonformat.NewReader(&root)
		c := binary.NewContainer()
		w := binary.NewWriter(c)
		if err := transcode.FromJSON(src, w); err != nil {
			return fmt.Errorf("transcode %s: %w", path, err)
		}
		w.Finish()
		return ioutil.WriteContainer(ctx, outPath, binary.Encode(c))

	case !isJSON && to == "json":
		view, err := binary.Decode(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		src := binary.NewViewReader(view)
		dst := jsonformat.NewWriter()
		if err := transcode.FromBinary(src, dst); err != nil {
			return fmt.Errorf("transcode %s: %w", path, err)
		}
		out, err := jsonformat.Marshal(dst.Root())
		if err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
		return ioutil.WriteContainer(ctx, outPath, out)

	default:
		return fmt.Errorf("%s is already in %s format", path, to)
	}
}

func outputPath(path, to string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if to == "json" {
		return base + ".out.json"
	}
	return base + ".out.bin"
}
