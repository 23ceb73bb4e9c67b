package main

import (
	"bufio"
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/washlink/app/internal/apiclient"
	"github.com/washlink/app/internal/config"
	"github.com/washlink/app/internal/credstore"
	"github.com/washlink/app/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: %v", err)
	}

	// Diagnostics go to stderr so prompts stay readable.
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	creds := credstore.New(cfg.CredentialsFile)
	gateway := apiclient.New(cfg.APIBaseURL, creds, logger)
	sess := session.New(gateway, creds, logger)
	gateway.OnUnauthorized(sess.Invalidate)

	ctx := context.Background()
	sess.Init(ctx)

	app := &app{
		in:   bufio.NewScanner(os.Stdin),
		out:  os.Stdout,
		gw:   gateway,
		sess: sess,
	}
	app.run(ctx)
}
