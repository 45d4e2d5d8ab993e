package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/chenzhangda16/web3-graphintel/internal/graphgen"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/ingest"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/out"
)

// graphgen publishes synthetic raw graph snapshots so the calibrator can be
// exercised end to end without a real evidence-query layer.
func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	var (
		brokers  = flag.String("brokers", "127.0.0.1:9092", "kafka brokers csv")
		topic    = flag.String("topic", "graphintel.raw_graphs", "raw graph topic")
		seed     = flag.Int64("seed", 42, "rng seed (deterministic layout)")
		nodes    = flag.Int("nodes", 200, "nodes per snapshot")
		edges    = flag.Int("edges", 800, "edges per snapshot")
		count    = flag.Int("count", 10, "snapshots to publish (0 = forever)")
		interval = flag.Duration("interval", 2*time.Second, "publish interval")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sink, err := out.NewKafkaSink(splitCSV(*brokers), *topic, sarama.NewConfig())
	if err != nil {
		log.Fatalf("kafka sink: %v", err)
	}
	defer sink.Close()

	gen := graphgen.New(*seed)
	for i := 0; *count == 0 || i < *count; i++ {
		req := ingest.Request{
			Route:    fmt.Sprintf("gen:%d:%d", *seed, i),
			Snapshot: gen.Snapshot(*nodes, *edges),
		}
		if err := sink.Emit(ctx, out.TypeRawGraph, req); err != nil {
			log.Printf("[graphgen] emit failed: %v", err)
		} else {
			log.Printf("[graphgen] published route=%s nodes=%d edges=%d", req.Route, *nodes, *edges)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(*interval):
		}
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
