package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"nanogrid/catalog"
	"nanogrid/common"
	"nanogrid/influx"
)

var (
	configPath  string
	metaDir     string
	queryName   string
	measurement string
	field       string
	timeRange   string
	window      string
)

func init() {
	flag.StringVar(&configPath, "config", "/etc/nanogrid/nanogrid.yaml", "The path of config file")
	flag.StringVar(&metaDir, "meta_dir", "/etc/nanogrid/", "The directory of the env file")
	flag.StringVar(&queryName, "query", "", "A catalog query name (see -list)")
	flag.StringVar(&measurement, "measurement", "", "A raw measurement, used when -query is unset")
	flag.StringVar(&field, "field", "", "The field of the raw measurement")
	flag.StringVar(&timeRange, "range", string(influx.LastDay), "The relative time range")
	flag.StringVar(&window, "window", "", "The aggregate window")
	flag.Usage = usage
}

func usage() {
	fmt.Println("Usage: query [-query name | -measurement name] [-range] [-window]")
	fmt.Printf("Catalog queries: %s\n", strings.Join(catalog.Names(), ", "))
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if queryName == "" && measurement == "" {
		usage()
		os.Exit(1)
	}

	if err := common.LoadEnv(metaDir); err != nil {
		logrus.Fatal(err)
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		logrus.Fatal(err)
	}

	client, err := influx.NewClient(config.Influx)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx := context.Background()

	var points []influx.Point
	if queryName != "" {
		points, err = catalog.Run(ctx, client, queryName, influx.TimeRange(timeRange), window)
	} else {
		points, err = client.Query(ctx, influx.QueryDescriptor{
			Measurement: measurement,
			Field:       field,
			Range:       influx.TimeRange(timeRange),
			Window:      window,
		})
	}
	if err != nil {
		logrus.Fatal(err)
	}

	if len(points) == 0 {
		fmt.Println("no data in range")
		return
	}
	for _, point := range points {
		fmt.Printf("%s\t%g\n", point.Timestamp, point.Value)
	}
}
