// Command matcherd runs one matching engine process for a single
// product: it recovers from the last snapshot and journal, writes a
// fresh snapshot before accepting any client, then serves the
// matcherrpc stream while fanning feed events out over multicast and
// Kafka.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"matchcore/internal/config"
	"matchcore/internal/feed"
	"matchcore/internal/journal"
	"matchcore/internal/logging"
	"matchcore/internal/orderbook"
	"matchcore/internal/pipeline"
	"matchcore/internal/recovery"
	"matchcore/internal/sequence"
	"matchcore/internal/transport/matcherrpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "matcherd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	journalPath := filepath.Join(cfg.LogDir, fmt.Sprintf("matcher.%s.log", cfg.Product))

	var snap recovery.Snapshot
	if cfg.NoRecover {
		log.Info("matcherd: no_recover set, starting from an empty book", zap.String("product", cfg.Product))
		snap = recovery.Snapshot{Book: orderbook.New()}
	} else {
		snap, err = recovery.LoadSnapshot(cfg.LogDir, cfg.Product, log)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		return fmt.Errorf("open inbound journal: %w", err)
	}
	defer j.Close()

	outbound, err := feed.OpenOutbound(filepath.Join(cfg.LogDir, fmt.Sprintf("matcher_out.%s.log", cfg.Product)))
	if err != nil {
		return fmt.Errorf("open outbound journal: %w", err)
	}
	defer outbound.Close()

	store, err := feed.OpenReconcileStore(filepath.Join(cfg.LogDir, fmt.Sprintf("reconcile.%s", cfg.Product)))
	if err != nil {
		return fmt.Errorf("open reconcile store: %w", err)
	}
	defer store.Close()

	feedAddr := fmt.Sprintf("%s:%d", cfg.FeedIP, cfg.FeedPort)
	pub, err := feed.NewPublisher(feedAddr, outbound, store, log, snap.OutputSeq)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer pub.Close()

	seq := sequence.New(0)
	replies := pipeline.NewRegistry()
	pipe := pipeline.New(pipeline.Config{
		Book:     snap.Book,
		Journal:  j,
		Seq:      seq,
		Pub:      pub,
		Replies:  replies,
		Log:      log,
		SnapDir:  cfg.LogDir,
		Product:  cfg.Product,
		StateNum: snap.StateNum,
	})

	if !cfg.NoRecover {
		lastSeq, err := recovery.ReplayJournal(journalPath, snap.StateNum, pipe, log)
		if err != nil {
			return fmt.Errorf("replay journal: %w", err)
		}
		seq.Reset(lastSeq)
	}

	// A fresh snapshot is always written before accepting clients.
	if _, err := pipe.Snapshot(); err != nil {
		log.Warn("matcherd: startup snapshot failed", zap.Error(err))
	}

	broadcaster, err := feed.NewBroadcaster(store, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		return fmt.Errorf("build broadcaster: %w", err)
	}
	defer broadcaster.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go broadcaster.Run(ctx)

	clientAddr := fmt.Sprintf("%s:%d", cfg.ClientIP, cfg.ClientPort)
	lis, err := net.Listen("tcp", clientAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", clientAddr, err)
	}

	grpcSrv := grpc.NewServer()
	grpcSrv.RegisterService(&matcherrpc.ServiceDesc, matcherrpc.NewServer(pipe, log))

	log.Info("matcherd: serving", zap.String("product", cfg.Product), zap.String("addr", clientAddr))

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcSrv.Serve(lis) }()

	select {
	case <-ctx.Done():
		log.Info("matcherd: shutting down")
		grpcSrv.GracefulStop()
		return nil
	case err := <-serveErr:
		return fmt.Errorf("gRPC server exited: %w", err)
	case err := <-pipe.Fatal():
		log.Error("matcherd: fatal writer condition, aborting", zap.Error(err))
		grpcSrv.GracefulStop()
		return fmt.Errorf("writer aborted: %w", err)
	}
}
