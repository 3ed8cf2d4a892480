package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"kvredis/internal/dispatch"
	"kvredis/internal/logging"
	"kvredis/internal/replica"
	"kvredis/internal/server"
	"kvredis/internal/store"
)

func main() {
	port := flag.Int("port", 6379, "port to listen on")
	replicaOf := flag.String("replicaof", "", `upstream master, "<host> <port>"`)
	flag.Parse()

	log := logging.New()

	cfg := server.Config{Port: *port, ReplicaOf: *replicaOf}
	state, err := server.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to construct server state")
	}

	db := store.New(store.SystemClock{})
	d := dispatch.New(db, state, log)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.WithError(err).Fatal("failed to bind listener")
	}
	log.WithField("addr", addr).Info("listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		listener.Close()
		os.Exit(0)
	}()

	if host, port, ok, err := cfg.ReplicaOfAddress(); err != nil {
		log.WithError(err).Fatal("failed to parse replicaof")
	} else if ok {
		go func() {
			masterAddr := net.JoinHostPort(host, port)
			err := replica.Connect(masterAddr, cfg.Port, log, func(conn net.Conn) {
				d.Handle(conn, false)
			})
			if err != nil {
				log.WithError(err).Error("replication handshake failed")
			}
		}()
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.WithError(err).Debug("listener closed")
			return
		}
		go d.Handle(conn, true)
	}
}
