package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"txkv/internal/config"
	"txkv/internal/db"
	"txkv/internal/logger"
)

const (
	maxLineSize   = 1 << 20
	rejectTimeout = time.Second
)

var ErrServerBusy = errors.New("server busy")

// Init opens the configured datastore and serves it until SIGINT or SIGTERM.
func Init(cfg *config.TxKVConfig) error {
	slog.SetDefault(logger.New(cfg.LogLevel))

	database, err := db.NewDB(cfg, slog.Default())
	if err != nil {
		slog.Error("Failed to open datastore", "error", err)
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close datastore", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel)

	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		slog.Error("Failed to listen", "error", err)
		return fmt.Errorf("failed to listen on %s: %w", cfg.Address(), err)
	}
	slog.Info("Server started", "host", cfg.Host, "port", cfg.Port, "backend", cfg.Backend)

	err = Run(ctx, ln, database, cfg.MetricsAddress)
	slog.Info("Server stopped")
	return err
}

// Run serves sessions from ln and, when metricsAddress is set, the metrics
// endpoint. It returns once ctx is cancelled or either server fails.
func Run(ctx context.Context, ln net.Listener, database *db.DB, metricsAddress string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listenForConnections(ctx, ln, database)
	})

	if metricsAddress != "" {
		srv := newMetricsServer(metricsAddress, database.Metrics)
		g.Go(func() error {
			return runMetricsServer(ctx, srv)
		})
	}

	return g.Wait()
}

// listenForConnections serves one session at a time. The datastore holds a
// single transaction slot, so a client arriving while another session is
// open is told the server is busy and disconnected.
func listenForConnections(ctx context.Context, ln net.Listener, database *db.DB) error {
	stop := context.AfterFunc(ctx, func() {
		slog.Info("No longer accepting connections")
		ln.Close()
	})
	defer stop()

	session := make(chan struct{}, 1)
	wg := &sync.WaitGroup{}
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Failed to accept connection", "error", err)
			return fmt.Errorf("accept: %w", err)
		}

		select {
		case session <- struct{}{}:
			slog.Info("Accepted connection", "remoteAddr", conn.RemoteAddr().String())
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-session }()
				handleConnection(ctx, conn, database)
			}()
		default:
			go rejectConnection(conn)
		}
	}
}

// rejectConnection writes the busy reply, then drains what the client sent
// so closing does not reset the connection before the reply is read.
func rejectConnection(conn net.Conn) {
	defer conn.Close()
	slog.Warn("Rejected connection, a session is already open", "remoteAddr", conn.RemoteAddr().String())

	deadline := time.Now().Add(rejectTimeout)
	_ = conn.SetDeadline(deadline)
	if _, err := conn.Write([]byte("error: " + ErrServerBusy.Error() + "\n")); err != nil {
		return
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}
	_, _ = io.Copy(io.Discard, conn)
}

func handleConnection(ctx context.Context, conn net.Conn, database *db.DB) {
	remote := conn.RemoteAddr().String()
	stop := context.AfterFunc(ctx, func() {
		slog.Info("Closing connection", "remoteAddr", remote)
		conn.Close()
	})
	defer func() {
		stop()
		conn.Close()
		database.Reset()
		slog.Info("Connection closed", "remoteAddr", remote)
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		response, err := database.Execute(line)
		if err != nil {
			response = []byte("error: " + err.Error())
		}

		if _, err := conn.Write(append(response, '\n')); err != nil {
			slog.Error("Failed to write to connection", "remoteAddr", remote, "error", err)
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		slog.Error("Failed to read from connection", "remoteAddr", remote, "error", err)
	}
}

func handleShutdown(contextCancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("Received shutdown signal")
	contextCancel()
}
