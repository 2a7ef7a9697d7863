package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"palisade/internal/app"
	"palisade/internal/domain"
	"palisade/internal/protocol/handshake"
	"palisade/internal/transport"
)

// stdio adapts the command's standard streams to an io.ReadWriter so the
// framed transport can run over a pipe to the peer process.
type stdio struct {
	io.Reader
	io.Writer
}

// peer: run one endpoint of the channel over stdin/stdout. Wire two
// instances together (one initiator, one responder) with a bidirectional
// pipe and they will handshake and exchange one ping/pong.
func peerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peer",
		Short: "Run one channel endpoint over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t := transport.NewFramed(stdio{cmd.InOrStdin(), cmd.OutOrStdout()})

			w, err := app.NewWire(cfg, t)
			if err != nil {
				return err
			}
			defer w.Session.Close()

			if err := w.Session.Establish(ctx); err != nil {
				return err
			}

			role, err := cfg.HandshakeRole()
			if err != nil {
				return err
			}
			if role == handshake.Initiator {
				return runInitiator(ctx, w, t)
			}
			return runResponder(ctx, w, t)
		},
	}
}

func runInitiator(ctx context.Context, w *app.Wire, t domain.Transport) error {
	env, err := w.Session.Seal([]byte(`{"op":"PING"}`), domain.OpPing)
	if err != nil {
		return err
	}
	wire, err := env.Marshal()
	if err != nil {
		return err
	}
	if err := t.Send(ctx, wire); err != nil {
		return err
	}

	wire, err = t.Receive(ctx)
	if err != nil {
		return err
	}
	reply, err := domain.UnmarshalEnvelope(wire)
	if err != nil {
		return err
	}
	body, err := w.Session.Open(reply, domain.OpPong)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "peer answered: %s\n", body)
	return nil
}

func runResponder(ctx context.Context, w *app.Wire, t domain.Transport) error {
	wire, err := t.Receive(ctx)
	if err != nil {
		return err
	}
	env, err := domain.UnmarshalEnvelope(wire)
	if err != nil {
		return err
	}
	body, err := w.Session.Open(env, domain.OpPing)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "peer asked: %s\n", body)

	reply, err := w.Session.Seal([]byte(`{"op":"PONG"}`), domain.OpPong)
	if err != nil {
		return err
	}
	wire, err = reply.Marshal()
	if err != nil {
		return err
	}
	return t.Send(ctx, wire)
}
