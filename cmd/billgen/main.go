package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/locvowork/billgen/internal/bootstrap"
	"github.com/locvowork/billgen/internal/config"
	"github.com/locvowork/billgen/internal/logger"
)

const msgPressKey = "Нажмите любую клавишу."

// errFirstRun stops the program after the settings file and folders were
// created, so the user fills them in before the next start.
var errFirstRun = errors.New("settings file created, run again after filling it in")

func main() {
	configPath := flag.String("config", config.DefaultFileName, "Settings file (dotenv syntax, or YAML for .yaml/.yml)")
	serve := flag.String("serve", "", "Serve the HTTP interface on this address, e.g. :8080")
	dryRun := flag.Bool("dry-run", false, "List the bills that would be written without writing them")
	noWait := flag.Bool("no-wait", false, "Do not wait for a key press after a failure")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, *configPath, *serve, *dryRun)
	stop()
	os.Exit(finish(err, *noWait, os.Stdin, os.Stdout))
}

// finish returns the exit code for err. A failed run waits for a key press
// before exiting unless noWait is set.
func finish(err error, noWait bool, in io.Reader, out io.Writer) int {
	if err == nil {
		return 0
	}
	if !noWait {
		fmt.Fprintln(out, msgPressKey)
		bufio.NewReader(in).ReadString('\n')
	}
	return 1
}

func run(ctx context.Context, out io.Writer, configPath, serveAddr string, dryRun bool) error {
	app := bootstrap.NewApp(configPath)
	ctx, firstRun, err := app.Initialize(ctx)
	defer logger.Close()
	if err != nil {
		return report(ctx, out, app, err, "Initialization failed")
	}

	if firstRun {
		fmt.Fprintln(out, bootstrap.MsgInitialized)
		return errFirstRun
	}

	if serveAddr != "" {
		return serve(ctx, app, serveAddr)
	}

	if dryRun {
		summary, err := app.Plan(ctx)
		if err != nil {
			return report(ctx, out, app, err, "Bill planning failed")
		}
		for _, name := range summary.Files {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	summary, err := app.Run(ctx)
	if err != nil {
		return report(ctx, out, app, err, "Bill generation failed")
	}
	fmt.Fprintf(out, bootstrap.MsgDone+"\n", len(summary.Files), app.Settings.OutputFolder)
	return nil
}

func serve(ctx context.Context, app *bootstrap.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.InfoLog(ctx, "Serving on %s", addr)
		errCh <- app.Serve(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLog(ctx, err, "Server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	}
}

// report keeps the details in the log and shows the user a short message.
func report(ctx context.Context, out io.Writer, app *bootstrap.App, err error, msg string) error {
	logger.ErrorLog(ctx, err, "%s", msg)
	fmt.Fprintln(out, app.UserMessage(err))
	return err
}
