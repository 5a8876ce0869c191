package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vidloop/internal/config"
	"vidloop/internal/looper"
	"vidloop/internal/mpv"
	"vidloop/internal/probe"
	"vidloop/internal/store"
	"vidloop/internal/web"
)

var (
	serveVideo  string
	serveListen string
)

var serveCmd = &cobra.Command{
	Use:   "serve <timestamps>",
	Short: "Serve an interactive loop session over HTTP",
	Long: `serve loads a timestamp file, starts mpv on the matching video and
exposes the table and the loop controls as an HTTP and websocket API.

The video defaults to a file with the same name as the timestamp file
and a different extension, next to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveVideo, "video", "", "Video file (default: companion of the timestamp file)")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	tmspPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	listen := cfg.Web.Listen
	if serveListen != "" {
		listen = serveListen
	}

	log := newLogger()

	video := serveVideo
	if video == "" {
		found, ok := store.FindCompanionVideo(tmspPath)
		if !ok {
			return fmt.Errorf("no video found next to %s: pass one with --video", tmspPath)
		}
		video = found
	}
	if _, err := os.Stat(video); err != nil {
		return fmt.Errorf("cannot access video file %s: %w", video, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Preflight: refuse to start a session over media ffprobe cannot read.
	duration, err := probe.Duration(ctx, video)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"video":    video,
		"duration": duration,
	}).Info("media probed")

	st, err := store.Open(tmspPath, cfg.Store.SaveOnSort)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d timestamps from %s\n", st.RowCount(), tmspPath)

	socket := mpv.SocketPath()
	mpvCmd, err := mpv.Launch(ctx, cfg.Player.MPVBinary, socket)
	if err != nil {
		return err
	}
	log.WithField("socket", socket).Debug("mpv started")

	client, err := mpv.Dial(socket, 10*time.Second, log)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Load(video); err != nil {
		return err
	}
	if err := client.SetVolume(cfg.Player.DefaultVolume); err != nil {
		log.WithError(err).Warn("setting initial volume")
	}

	ctrl := looper.New(client, log, cfg.Player.VolumeCeiling)
	client.OnPosition(ctrl.OnPositionChanged)
	ctrl.MediaChanged()

	hub := web.NewHub()
	go hub.Run(ctx)

	srv := web.NewServer(st, ctrl, client, hub, log)
	srv.BindEvents()

	go ctrl.Run(ctx, cfg.Loop.TickPeriod())

	httpSrv := &http.Server{
		Addr: listen,
		Handler: srv.Router(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Serving on http://%s (Ctrl-C to stop)\n", listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = client.Close()
	_ = mpvCmd.Wait()
	return nil
}
