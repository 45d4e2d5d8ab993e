package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/cache"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/calibrate"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/ingest"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/out"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/writer"
	"github.com/chenzhangda16/web3-graphintel/pkg/obs"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	var (
		brokers = flag.String("brokers", "127.0.0.1:9092", "kafka brokers csv")
		group   = flag.String("group", "graphintel-calibrator", "kafka consumer group")
		inTopic = flag.String("in-topic", "graphintel.raw_graphs", "topic to consume raw graph snapshots")
		outTop  = flag.String("out-topic", "graphintel.calibrated", "topic for calibrated snapshots + explains")

		cachePath = flag.String("cache", "./data/snapshot_cache.db", "rocksdb snapshot cache path (empty = in-memory)")
		cacheTTL  = flag.Int64("cache-ttl", 300, "snapshot cache ttl seconds")

		logMode = flag.String("log", "dev", "log mode: dev|prod")
		usePG   = flag.Bool("pg", false, "persist calibration runs to postgres (needs PG_DSN)")
	)
	flag.Parse()

	obs.Init("calibrator", *logMode)
	defer obs.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var c cache.Cache
	if *cachePath != "" {
		rc, err := cache.OpenRocks(*cachePath, 60)
		if err != nil {
			log.Fatalf("open rocks cache: %v", err)
		}
		c = rc
	} else {
		c = cache.NewMemory(4096)
	}
	defer c.Close()

	var pg *writer.PGWriter
	if *usePG {
		w, err := writer.NewPGWriterFromEnv()
		if err != nil {
			log.Fatalf("pg writer: %v", err)
		}
		if err := w.EnsureSchema(ctx); err != nil {
			log.Fatalf("pg schema: %v", err)
		}
		pg = w
		defer pg.Close()
	}

	sink, err := out.NewKafkaSink(splitCSV(*brokers), *outTop, sarama.NewConfig())
	if err != nil {
		log.Fatalf("kafka sink: %v", err)
	}
	defer sink.Close()

	svc, err := ingest.New(ingest.Config{
		Brokers:     *brokers,
		Group:       *group,
		Topic:       *inTopic,
		Calibration: calibrate.DefaultConfig(),
		CacheTTLSec: *cacheTTL,
	}, c, pg, sink)
	if err != nil {
		log.Fatalf("ingest service: %v", err)
	}
	defer svc.Close()

	obs.L("main").Infow("calibrator up",
		"in", *inTopic, "out", *outTop, "version", calibrate.CalibrationVersion)

	if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("run: %v", err)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	outp := make([]string, 0, len(parts))
	for _, x := range parts {
		x = strings.TrimSpace(x)
		if x != "" {
			outp = append(outp, x)
		}
	}
	return outp
}
