package main

import (
	"flag"
	"log"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/api"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/cache"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/calibrate"
	"github.com/chenzhangda16/web3-graphintel/pkg/obs"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	var (
		addr      = flag.String("addr", ":8003", "listen address")
		cachePath = flag.String("cache", "", "rocksdb snapshot cache path (empty = in-memory)")
		cacheTTL  = flag.Int64("cache-ttl", 300, "snapshot cache ttl seconds")
		logMode   = flag.String("log", "dev", "log mode: dev|prod")
	)
	flag.Parse()

	obs.Init("server", *logMode)
	defer obs.Sync()

	var c cache.Cache
	if *cachePath != "" {
		rc, err := cache.OpenRocks(*cachePath, 60)
		if err != nil {
			log.Fatalf("open rocks cache: %v", err)
		}
		c = rc
	} else {
		c = cache.NewMemory(1024)
	}
	defer c.Close()

	s := api.NewServer(calibrate.DefaultConfig(), c, *cacheTTL)
	obs.L("main").Infow("api up", "addr", *addr, "version", calibrate.CalibrationVersion)
	if err := s.Run(*addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
