package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kirillkom/transcript-summarizer/internal/bootstrap"
	"github.com/kirillkom/transcript-summarizer/internal/config"
	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
	"github.com/kirillkom/transcript-summarizer/internal/observability/logging"
)

const serviceName = "transcript-cli"

func main() {
	copyFlag := flag.Bool("copy", false, "copy the summary to the clipboard")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-copy] <transcript.vtt|transcript.txt>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logging.InstallTo(os.Stderr, serviceName, cfg.LogLevel)

	app, err := bootstrap.New(cfg, serviceName, bootstrap.Options{})
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	ctx := context.Background()
	file, err := app.Files.Open(ctx, flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Controller.SelectFile(file)
	done, accepted := app.Controller.SubmitUpload(ctx)
	if !accepted {
		log.Fatalf("upload was not accepted")
	}
	<-done

	snap := app.Controller.Snapshot()
	if snap.State.Phase != domain.PhaseSucceeded {
		fmt.Fprintf(os.Stderr, "Error uploading file. Please try again.\n%s\n", snap.State.Reason)
		os.Exit(1)
	}
	fmt.Println(snap.Summary)

	if *copyFlag {
		copied, err := app.Controller.CopySummary(ctx)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "copy failed: %v\n", err)
		case copied:
			fmt.Fprintln(os.Stderr, "summary copied to clipboard")
		}
	}
}
