// Command qipc is a small CLI wrapping the stream client: it can act as a
// kdb+-speaking acceptor (serve) or issue a single synchronous request
// against one (query).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/kdbgo/qipc/frame"
	"github.com/kdbgo/qipc/stream"
	"github.com/kdbgo/qipc/value"
)

func methodFromFlag(name string) (stream.Method, error) {
	switch name {
	case "tcp":
		return stream.MethodTCP, nil
	case "tls":
		return stream.MethodTLS, nil
	case "unix":
		return stream.MethodUnix, nil
	default:
		return 0, fmt.Errorf("unknown transport %q (want tcp, tls, or unix)", name)
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	method, err := methodFromFlag(cmd.String("transport"))
	if err != nil {
		return err
	}

	var accounts stream.AccountFile
	if path := cmd.String("accounts"); path != "" {
		accounts, err = stream.LoadAccountFile(path)
		if err != nil {
			return fmt.Errorf("loading account file: %w", err)
		}
	}

	logger.Info("listening", zap.String("transport", method.String()), zap.Int("port", cmd.Int("port")))

	s, err := stream.Accept(method, cmd.String("host"), cmd.Int("port"), accounts, stream.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer s.Shutdown()

	readHalf, writeHalf := s.Split()

	for {
		decoded, err := readHalf.Receive(ctx)
		if err != nil {
			logger.Info("connection ended", zap.Error(err))
			return nil
		}

		logger.Info("received frame", zap.String("type", decoded.Type.String()), zap.String("value", decoded.Value.String()))

		if decoded.Type == frame.MessageSync {
			if err := writeHalf.Send(decoded.Value, frame.MessageResponse); err != nil {
				return fmt.Errorf("reply: %w", err)
			}
		}
	}
}

func queryAction(ctx context.Context, cmd *cli.Command) error {
	method, err := methodFromFlag(cmd.String("transport"))
	if err != nil {
		return err
	}

	cred := stream.Credential{User: cmd.String("user"), Password: cmd.String("password")}

	s, err := stream.Connect(method, cmd.String("host"), cmd.Int("port"), cred)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer s.Shutdown()

	resp, err := s.SendSync(ctx, value.Symbol(cmd.Args().First()))
	if err != nil {
		return fmt.Errorf("send_sync: %w", err)
	}

	fmt.Println(resp.String())

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "qipc",
		Usage: "kdb+ IPC stream client and acceptor",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "accept one connection and echo sync requests back as responses",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Value: "tcp", Usage: "tcp, tls, or unix"},
					&cli.StringFlag{Name: "host", Value: "", Usage: "address to bind"},
					&cli.IntFlag{Name: "port", Value: 5001, Usage: "port to listen on"},
					&cli.StringFlag{Name: "accounts", Usage: "credential file (user:hex-sha1-password per line)"},
				},
				Action: serveAction,
			},
			{
				Name:      "query",
				Usage:     "connect and send a single symbol as a synchronous request",
				ArgsUsage: "SYMBOL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Value: "tcp", Usage: "tcp, tls, or unix"},
					&cli.StringFlag{Name: "host", Value: "localhost", Usage: "server host"},
					&cli.IntFlag{Name: "port", Value: 5001, Usage: "server port"},
					&cli.StringFlag{Name: "user", Value: "guest", Usage: "username"},
					&cli.StringFlag{Name: "password", Value: "", Usage: "password"},
				},
				Action: queryAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
