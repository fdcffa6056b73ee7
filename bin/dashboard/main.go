package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"nanogrid/cache"
	"nanogrid/collector"
	"nanogrid/common"
	"nanogrid/influx"
	nanoprom "nanogrid/prometheus"
	"nanogrid/server"
	"nanogrid/storage"
)

var (
	configPath string
	metaDir    string
)

func init() {
	flag.StringVar(&configPath, "config", "/etc/nanogrid/nanogrid.yaml", "The path of config file")
	flag.StringVar(&metaDir, "meta_dir", "/etc/nanogrid/", "The directory of the env file")
	flag.Usage = usage
}

func usage() {
	fmt.Println("Usage: dashboard [config] [meta_dir]")
	flag.PrintDefaults()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	flag.Parse()

	if err := common.LoadEnv(metaDir); err != nil {
		logrus.Fatal(err)
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	if err := config.Validate(); err != nil {
		logrus.Fatal(err)
	}

	client, err := influx.NewClient(config.Influx)
	if err != nil {
		logrus.Fatal(err)
	}

	engine, err := storage.GetSnapEngine(config.SnapEngine, config.DataDir)
	if err != nil {
		logrus.Fatal(err)
	}

	results := cache.New(config.Cache.Size, time.Duration(config.Cache.TTLSeconds)*time.Second)

	exporter := nanoprom.NewNanogridExporter(engine)
	registry := prometheus.NewRegistry()
	registry.MustRegister(exporter)

	srv := server.NewServer(config, client, engine, results, registry)
	hub := srv.Hub()

	runner, err := collector.NewPanelRunner(client, engine, results)
	if err != nil {
		logrus.Fatal(err)
	}
	runner.SetNotify(func(snapshot storage.Snapshot) {
		exporter.Panels.ObserveRefresh(snapshot.Panel)
		hub.Broadcast(snapshot)
	})
	runner.SetOnError(exporter.Panels.ObserveFailure)

	panelQueue, err := collector.NewPanelQueue(runner)
	if err != nil {
		logrus.Fatal(err)
	}

	configWatcher, err := collector.NewConfigWatcher(panelQueue.Comm)
	if err != nil {
		logrus.Fatal(err)
	}

	panelQueue.Run(ctx)

	if err := configWatcher.Run(ctx, config.PanelsDir); err != nil {
		logrus.Fatal(err)
	}
	defer configWatcher.Release()

	go func() {
		if err := srv.Router().Run(config.Listen); err != nil {
			logrus.Fatal(err)
		}
	}()

	<-ctx.Done()
}
