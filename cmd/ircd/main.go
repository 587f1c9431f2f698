// Command ircd is the server entry point: parse flags, load
// configuration, build an internal/server.Core, and run it until a
// shutdown signal arrives.
//
// Grounded on horgh-catbox's ircd.go main/getArgs and args.go: same
// "-conf flag is required, config load failure is fatal" shape. This
// version additionally lets -server-name/-sid override config values
// the way the teacher's Args already declared fields for but never wired
// up (getArgs parsed ServerName/SID but main() never applied them).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/foxcomet/ircd/internal/config"
	"github.com/foxcomet/ircd/internal/server"
)

type args struct {
	configFile string
	serverName string
	sid        string
}

func parseArgs() (*args, error) {
	configFile := flag.String("conf", "", "Configuration file.")
	serverName := flag.String("server-name", "", "Server name. Overrides server_name from config.")
	sid := flag.String("sid", "", "TS6 SID. Overrides ts6_sid from config.")
	flag.Parse()

	if *configFile == "" {
		flag.PrintDefaults()
		return nil, fmt.Errorf("you must provide a configuration file")
	}

	abs, err := filepath.Abs(*configFile)
	if err != nil {
		return nil, fmt.Errorf("unable to determine path to the configuration file: %w", err)
	}

	return &args{configFile: abs, serverName: *serverName, sid: *sid}, nil
}

func main() {
	log.SetFlags(0)

	a, err := parseArgs()
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		log.Fatalf("configuration problem: %s", err)
	}
	if a.serverName != "" {
		cfg.ServerName = a.serverName
	}
	if a.sid != "" {
		cfg.TS6SID = a.sid
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration problem: %s", err)
	}

	core, err := server.New(cfg)
	if err != nil {
		log.Fatalf("unable to build server: %s", err)
	}

	ln, err := core.Listen()
	if err != nil {
		log.Fatalf("unable to listen: %s", err)
	}
	log.Printf("listening on %s", ln.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Printf("shutting down")
		core.Shutdown()
	}()

	if err := core.Serve(ln); err != nil {
		log.Fatalf("server error: %s", err)
	}
	log.Printf("server shutdown cleanly")
}
