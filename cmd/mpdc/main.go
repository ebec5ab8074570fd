// Command mpdc is a small CLI around the mpdc client library: connect, run
// one command, or wait for one idle event (cut short by SIGINT/SIGTERM).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/famish99/mpdc"
	"github.com/famish99/mpdc/internal/config"
)

var (
	configPath = flag.String("config", getDefaultConfigPath(), "Path to configuration file")
	host       = flag.String("host", "", "MPD host (default: the config's preferred server, else $MPD_HOST or localhost)")
	port       = flag.Int("port", 0, "MPD port (default: the config's preferred server, else $MPD_PORT or 6600)")
	serverName = flag.String("server", "", "Use a named server from the config file")
	timeout    = flag.Duration("timeout", mpdc.DefaultTimeout, "response timeout (0 disables it)")
	idleMode   = flag.Bool("idle", false, "wait for one idle event and print it, then exit")
	command    = flag.String("cmd", "", "run a single raw MPD command and print its response lines")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	resolvedHost, resolvedPort := *host, *port
	if resolvedHost == "" && *serverName != "" {
		srv := cfg.GetServer(*serverName)
		if srv == nil {
			log.Fatalf("no such server in config: %s", *serverName)
		}
		resolvedHost, resolvedPort = srv.Host, srv.Port
	} else if resolvedHost == "" {
		if srv := cfg.GetPreferredServer(); srv != nil {
			resolvedHost, resolvedPort = srv.Host, srv.Port
		}
	}

	client, err := mpdc.Connect(resolvedHost, resolvedPort)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()
	client.SetTimeout(*timeout)

	log.Printf("connected, server version %s", client.Version())

	switch {
	case *idleMode:
		runIdle(client)
	case *command != "":
		runCommand(client, *command)
	default:
		runREPL(client)
	}
}

func runIdle(client *mpdc.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		client.Interrupt()
	}()

	changed, err := client.Idle(ctx, 0)
	if err != nil {
		log.Fatalf("idle failed: %v", err)
	}
	fmt.Printf("changed: %s\n", changed)
}

func runCommand(client *mpdc.Client, cmd string) {
	acc := mpdc.NewLineAccumulator()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := client.Do(ctx, cmd, acc); err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
	for _, line := range acc.Lines {
		fmt.Println(line)
	}
}

func runREPL(client *mpdc.Client) {
	fmt.Fprintln(os.Stderr, "usage: mpdc -cmd '<command>' | mpdc -idle")
	flag.PrintDefaults()
}

func getDefaultConfigPath() string {
	locations := []string{
		"./mpdc.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "mpdc", "config.yaml"),
		"/etc/mpdc/config.yaml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return locations[0]
}
