// Command stockctl asks a running stockdesk instance for the stock of one
// or more products over the internal gRPC service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/example/stockdesk/pkg/config"
	"github.com/example/stockdesk/pkg/discovery"
	stockgrpc "github.com/example/stockdesk/pkg/grpc"
	"github.com/example/stockdesk/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	addr := flag.String("addr", "", "stock service address, used when discovery finds nothing")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: stockctl [flags] <product-id>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Log.OutputPaths = []string{"stderr"}
	logger, err := logging.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fallback := *addr
	if fallback == "" {
		fallback = fmt.Sprintf("127.0.0.1:%d", cfg.GRPC.Port)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var resolver stockgrpc.Resolver
	if len(cfg.Etcd.Endpoints) > 0 {
		sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, logger)
		if err != nil {
			logger.Warn("Service discovery unavailable", zap.Error(err))
		} else {
			defer sd.Close()
			resolver = sd
		}
	}

	client, err := stockgrpc.Dial(ctx, resolver, stockgrpc.StockServiceName, fallback, logger)
	if err != nil {
		logger.Fatal("Failed to connect", zap.Error(err))
	}
	defer client.Close()

	failed := false
	for _, id := range flag.Args() {
		info, err := client.GetStock(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed = true
			continue
		}
		fmt.Printf("%s\t%s\tstock=%d\tprice=%s\n", info.ID, info.Name, info.Stock, info.Price)
	}
	if failed {
		os.Exit(1)
	}
}
