package main

import (
	"net/http"
	"os"

	"github.com/pingcap/errors"
	"github.com/urfave/cli/v2"

	"github.com/lonng/wspipe/internal/env"
	"github.com/lonng/wspipe/internal/log"
	"github.com/lonng/wspipe/pipeline"
	"github.com/lonng/wspipe/protocal/frame"
	"github.com/lonng/wspipe/session"
	"github.com/lonng/wspipe/ws"
)

// echoStage writes every data frame back to the client and consumes it.
type echoStage struct{}

func (echoStage) Process(ctx *pipeline.Context, batch *pipeline.Batch) error {
	size := batch.Size()
	for i := 0; i < size; i++ {
		m := batch.Get(i)
		f, ok := m.(frame.Frame)
		if !ok || f.Kind().Control() {
			batch.Add(m)
			continue
		}
		ctx.Session().Conn().Write(f)
	}
	batch.RemoveRange(0, size)
	return nil
}

// Notify logs the completed upgrade.
func (echoStage) Notify(ctx *pipeline.Context, event any) {
	if hc, ok := event.(ws.HandshakeComplete); ok {
		log.Info("Handshake complete, ID=%d, Path=%s, Subprotocol=%q",
			ctx.Session().ID(), hc.Path, hc.Subprotocol)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "WspipeEchoDemo"
	app.Description = "Websocket pipeline echo server"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "HTTP listen address",
			Value: "127.0.0.1:3250",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "Websocket upgrade endpoint",
			Value: "/ws",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Verbose connection logging",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		log.Fatal("Startup server error.", err)
	}
}

func run(c *cli.Context) error {
	addr := c.String("addr")
	if addr == "" {
		return errors.Errorf("listen address cannot empty")
	}
	path := c.String("path")
	if path == "" {
		return errors.Errorf("websocket endpoint cannot empty")
	}
	env.Debug = c.Bool("debug")

	session.Lifetime.SessionCreated(func(s *session.Session) {
		log.Info("Session created, ID=%d", s.ID())
	})
	session.Lifetime.SessionClosed(func(s *session.Session) {
		log.Info("Session closed, ID=%d", s.ID())
	})

	opts := ws.DefaultOptions()
	opts.Path = path

	srv := ws.NewServer(opts, func(p *pipeline.Pipeline) error {
		// nothing but websocket traffic may pass the upgrade stage
		if err := p.AddLast("guard", ws.RejectStage{}); err != nil {
			return err
		}
		return p.AddLast("echo", echoStage{})
	})

	// mounted at the root so off-endpoint requests get the pipeline's
	// answer instead of the mux's 404
	mux := http.NewServeMux()
	mux.Handle("/", srv)
	log.Info("Echo server listening on %s%s", addr, opts.Path)
	return http.ListenAndServe(addr, mux)
}
