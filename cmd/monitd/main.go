// Package main is the entry point for monitd.
//
// monitd is a host monitoring daemon in the spirit of Monit: it reads a
// TOML service list, walks it once per poll interval checking processes,
// files, directories, fifos, filesystems, external programs, remote
// hosts, and system resources, and posts every outcome to a SQLite event
// sink that dedups repeat failures against a bitmap and drives
// start/stop/restart/unmonitor through a configurable control command.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/syslog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ocochard/cmonit/internal/config"
	"github.com/ocochard/cmonit/internal/control"
	"github.com/ocochard/cmonit/internal/model"
	"github.com/ocochard/cmonit/internal/probes"
	"github.com/ocochard/cmonit/internal/schedule"
	"github.com/ocochard/cmonit/internal/sink"
	"github.com/ocochard/cmonit/internal/validate"
)

func main() {
	configFile := flag.String("config", "/etc/monitd/monitd.toml",
		"Configuration file path (TOML format)")

	interval := flag.String("interval", "30s",
		"Poll interval between cycles (e.g. 30s, 1m)")

	dbPath := flag.String("db", "/var/run/monitd/monitd.db",
		"SQLite event database path")

	pidFile := flag.String("pidfile", "/var/run/monitd/monitd.pid",
		"PID file path")

	syslogFacility := flag.String("syslog", "",
		"Syslog facility (daemon, local0-local7, or empty for stderr logging)")

	debugFlag := flag.Bool("debug", false,
		"Enable verbose DEBUG logging for troubleshooting")

	daemonMode := flag.Bool("daemon", false,
		"Run in background as a daemon process")

	controlCommand := flag.String("control-command", "",
		`Control command template, e.g. "service {name} {action}" or `+
			`"systemctl {action} {name}" (empty uses the config file's control_command, else control.DefaultTemplate)`)

	hashSecret := flag.String("hash-secret", "",
		"Generate a bcrypt hash for the given control-surface password and exit")

	flag.Parse()

	if *hashSecret != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*hashSecret), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating bcrypt hash: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Bcrypt hash: %s\n\n", string(hash))
		fmt.Println("Add this to your configuration file:")
		fmt.Println("[run.auth]")
		fmt.Println("user = \"admin\"")
		fmt.Printf("password = \"%s\"\n", string(hash))
		fmt.Println("password_format = \"bcrypt\"")
		os.Exit(0)
	}

	var cfg *config.Config
	if *configFile != "" {
		if _, err := os.Stat(*configFile); err == nil {
			loaded, err := config.Load(*configFile)
			if err != nil {
				log.Fatalf("[FATAL] Failed to load config file: %v", err)
			}
			cfg = loaded
			log.Printf("[INFO] Loaded configuration from: %s", *configFile)
		}
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	*interval = config.MergeString(cfg.Run.Interval, *interval, "30s")
	*dbPath = config.MergeString(cfg.Run.Database, *dbPath, "/var/run/monitd/monitd.db")
	*pidFile = config.MergeString(cfg.Run.PidFile, *pidFile, "/var/run/monitd/monitd.pid")
	*syslogFacility = config.MergeString(cfg.Run.Syslog, *syslogFacility, "")
	*debugFlag = config.MergeBool(cfg.Run.Debug, *debugFlag)
	*daemonMode = config.MergeBool(cfg.Run.Daemon, *daemonMode)

	pollInterval, err := time.ParseDuration(*interval)
	if err != nil {
		log.Fatalf("[FATAL] Invalid -interval %q: %v", *interval, err)
	}

	if *daemonMode {
		if os.Getenv("MONITD_DAEMONIZED") != "1" {
			args := make([]string, 0, len(os.Args))
			for _, arg := range os.Args {
				if arg != "-daemon" {
					args = append(args, arg)
				}
			}

			execSpec := &syscall.ProcAttr{
				Env: append(os.Environ(), "MONITD_DAEMONIZED=1"),
				Files: []uintptr{
					uintptr(syscall.Stdin),
					uintptr(syscall.Stdout),
					uintptr(syscall.Stderr),
				},
				Sys: &syscall.SysProcAttr{
					Setsid: true,
				},
			}

			execPath, err := os.Executable()
			if err != nil {
				log.Fatalf("[FATAL] Failed to get executable path for daemonization: %v", err)
			}

			pid, err := syscall.ForkExec(execPath, args, execSpec)
			if err != nil {
				log.Fatalf("[FATAL] Failed to daemonize: %v", err)
			}

			fmt.Printf("monitd daemonized with PID %d\n", pid)
			os.Exit(0)
		}
	}

	if *syslogFacility != "" {
		priority, err := parseSyslogFacility(*syslogFacility)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid syslog facility: %v\n", err)
			os.Exit(1)
		}

		syslogWriter, err := syslog.New(priority, "monitd")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to syslog: %v\n", err)
			os.Exit(1)
		}

		log.SetOutput(syslogWriter)
		log.SetFlags(0)
	}

	log.Printf("[INFO] monitd starting...")
	log.Printf("[INFO] Poll interval: %s", pollInterval)
	log.Printf("[INFO] Database path: %s", *dbPath)
	log.Printf("[INFO] PID file: %s", *pidFile)

	dbDir := filepath.Dir(*dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("[FATAL] Failed to create database directory %s: %v", dbDir, err)
	}
	pidDir := filepath.Dir(*pidFile)
	if err := os.MkdirAll(pidDir, 0755); err != nil {
		log.Fatalf("[FATAL] Failed to create PID file directory %s: %v", pidDir, err)
	}

	pid := os.Getpid()
	if err := os.WriteFile(*pidFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		log.Fatalf("[FATAL] Failed to write PID file: %v", err)
	}
	log.Printf("[INFO] PID %d written to %s", pid, *pidFile)
	defer func() {
		if err := os.Remove(*pidFile); err != nil {
			log.Printf("[WARN] Failed to remove PID file: %v", err)
		}
	}()

	db, err := sink.Open(*dbPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to open event database: %v", err)
	}
	defer db.Close()

	template := cfg.Run.ControlCommand
	if *controlCommand != "" {
		template = strings.Fields(*controlCommand)
	}
	controller := control.NewController(template)

	eventSink := sink.New(db, controller)

	services, err := config.BuildServices(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build service list from config: %v", err)
	}
	log.Printf("[INFO] %d services loaded", len(services))

	engine := &validate.Engine{
		Sink:       eventSink,
		Stat:       probes.FileStat{},
		Content:    probes.ContentFile{},
		Filesystem: probes.Filesystem{},
		Checksum:   probes.Checksum{},
		Icmp:       probes.Icmp{},
		Connection: probes.Connection{},
		Process:    probes.Process{},
		System:     probes.System{},
		Command:    probes.Command{},
		Control:    controller,
		Clock:      probes.Clock{},
		Cron:       schedule.NewMatcher(),
		Debug:      *debugFlag,

		RunDoProcess: true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Printf("[INFO] Shutdown signal received, finishing current cycle...")
		cancel()
	}()

	runState := &validate.RunState{}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	runCycle(engine, runState, services)

cycleLoop:
	for {
		select {
		case <-ctx.Done():
			break cycleLoop
		case <-ticker.C:
			if ctx.Err() != nil {
				break cycleLoop
			}
			runCycle(engine, runState, services)
		}
	}

	log.Printf("[INFO] monitd exiting")
}

// runCycle drives one poll interval's worth of checks and folds any
// bitmap transitions into a Markdown digest, the way the teacher's own
// background jobs log a one-line summary of what happened each tick.
func runCycle(engine *validate.Engine, runState *validate.RunState, services []*model.Service) {
	n := engine.Run(runState, services)
	sk, ok := engine.Sink.(*sink.Sink)
	if !ok {
		return
	}
	incidents := sk.Drain()
	if len(incidents) == 0 {
		return
	}
	cycleStart := engine.Clock.Now().Format(time.RFC3339)
	source, _ := sink.BuildDigest(cycleStart, incidents)
	log.Printf("[INFO] cycle finished with %d failed services, %d incidents:\n%s", n, len(incidents), source)
}

func parseSyslogFacility(facility string) (syslog.Priority, error) {
	facilities := map[string]syslog.Priority{
		"daemon": syslog.LOG_DAEMON | syslog.LOG_INFO,
		"local0": syslog.LOG_LOCAL0 | syslog.LOG_INFO,
		"local1": syslog.LOG_LOCAL1 | syslog.LOG_INFO,
		"local2": syslog.LOG_LOCAL2 | syslog.LOG_INFO,
		"local3": syslog.LOG_LOCAL3 | syslog.LOG_INFO,
		"local4": syslog.LOG_LOCAL4 | syslog.LOG_INFO,
		"local5": syslog.LOG_LOCAL5 | syslog.LOG_INFO,
		"local6": syslog.LOG_LOCAL6 | syslog.LOG_INFO,
		"local7": syslog.LOG_LOCAL7 | syslog.LOG_INFO,
	}

	priority, ok := facilities[strings.ToLower(facility)]
	if !ok {
		return 0, fmt.Errorf("unknown facility '%s', supported: daemon, local0-local7", facility)
	}
	return priority, nil
}
