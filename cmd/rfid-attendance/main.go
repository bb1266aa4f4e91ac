package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rfid-attendance/attend"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	var configPath string
	var readerAddrs multiFlag
	var baud int
	var credentialsFile string
	var spreadsheetID string
	var sheetName string
	var archiveDB string
	var auditFile string
	var flushInterval time.Duration
	var pollDelay time.Duration
	var metricsAddr string
	var debug bool

	flag.StringVar(&configPath, "config", "", "YAML config file path.")
	flag.Var(&readerAddrs, "reader", "Reader gateway address. Can be repeated (max 4).")
	flag.IntVar(&baud, "baud", 57600, "Communication rate of the serial link behind each gateway.")
	flag.StringVar(&credentialsFile, "credentials", "", "Service account credentials file for the sheet.")
	flag.StringVar(&spreadsheetID, "spreadsheet", "", "Attendance spreadsheet id.")
	flag.StringVar(&sheetName, "sheet", "", "Worksheet name.")
	flag.StringVar(&archiveDB, "archive-db", "attendance.db", "SQLite sighting archive path.")
	flag.StringVar(&auditFile, "audit-file", "attendance.json", "JSON audit file of previously seen tags.")
	flag.DurationVar(&flushInterval, "flush-interval", 5*time.Second, "Minimum spacing between sheet reconciliations.")
	flag.DurationVar(&pollDelay, "poll-delay", 50*time.Millisecond, "Delay between reader polls.")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address (empty disables).")
	flag.BoolVar(&debug, "debug", false, "Enable debug logs.")
	flag.Parse()

	visited := map[string]bool{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	// Base config from file (optional)
	fileCfg := &attend.FileConfig{}
	if configPath != "" {
		cfg, err := attend.LoadConfig(configPath)
		if err != nil {
			logrus.WithError(err).Fatal("load config")
		}
		fileCfg = cfg
	}

	// Merge config + CLI overrides
	if visited["reader"] {
		fileCfg.Readers = nil
		for _, addr := range readerAddrs {
			fileCfg.Readers = append(fileCfg.Readers, attend.ReaderConfig{Addr: addr, Baud: baud})
		}
	}
	if visited["credentials"] {
		fileCfg.Sheet.CredentialsFile = credentialsFile
	}
	if visited["spreadsheet"] {
		fileCfg.Sheet.SpreadsheetID = spreadsheetID
	}
	if visited["sheet"] {
		fileCfg.Sheet.SheetName = sheetName
	}
	if visited["archive-db"] || fileCfg.ArchiveDB == "" {
		fileCfg.ArchiveDB = archiveDB
	}
	if visited["audit-file"] || fileCfg.AuditFile == "" {
		fileCfg.AuditFile = auditFile
	}
	if visited["flush-interval"] || fileCfg.FlushInterval == 0 {
		fileCfg.FlushInterval = attend.Duration(flushInterval)
	}
	if visited["poll-delay"] || fileCfg.PollDelay == 0 {
		fileCfg.PollDelay = attend.Duration(pollDelay)
	}
	if visited["metrics-addr"] {
		fileCfg.MetricsAddr = metricsAddr
	}
	if visited["debug"] {
		fileCfg.Debug = debug
	}

	if fileCfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := fileCfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := attend.NewSheetStore(ctx, fileCfg.Sheet.CredentialsFile, fileCfg.Sheet.SpreadsheetID, fileCfg.Sheet.SheetName)
	if err != nil {
		logrus.WithError(err).Fatal("init sheet store")
	}
	archive, err := attend.OpenArchive(fileCfg.ArchiveDB)
	if err != nil {
		logrus.WithError(err).Fatal("open archive")
	}
	defer archive.Close()
	audit := attend.NewAuditLog(fileCfg.AuditFile)

	seen, err := audit.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load audit file")
	}
	logrus.WithField("previously_seen", len(seen)).Info("audit file loaded")

	controller, err := attend.NewController(attend.ControllerConfig{
		Store:         store,
		Archive:       archive,
		Audit:         audit,
		FlushInterval: time.Duration(fileCfg.FlushInterval),
		PollDelay:     time.Duration(fileCfg.PollDelay),
	})
	if err != nil {
		logrus.WithError(err).Fatal("init controller")
	}

	if fileCfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(fileCfg.MetricsAddr, mux); err != nil {
				logrus.WithError(err).Error("metrics listener failed")
			}
		}()
	}

	// Stand-in presentation layer: log what a UI would display.
	go func() {
		for ev := range controller.Events() {
			switch ev.Kind {
			case attend.EventTagObserved:
				logrus.WithField("tag", ev.Tag).Info("tag")
			case attend.EventCountChanged:
				logrus.WithFields(logrus.Fields{
					"pending":    ev.Pending,
					"reconciled": ev.Reconciled,
				}).Debug("counts")
			}
		}
	}()

	if err := controller.Start(ctx, fileCfg.Readers); err != nil {
		logrus.WithError(err).Fatal("start readers")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logrus.Info("shutting down")

	if err := controller.Stop(); err != nil {
		logrus.WithError(err).Error("stop readers")
	}
	logrus.WithFields(logrus.Fields{
		"reconciled": controller.TotalReconciled(),
		"pending":    controller.TagCount(),
	}).Info("run finished")
}
