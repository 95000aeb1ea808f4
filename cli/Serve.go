package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samuelfneumann/gorl/checkpoint"
	"github.com/samuelfneumann/gorl/config"
	"github.com/samuelfneumann/gorl/environment/gridworld"
	"github.com/samuelfneumann/gorl/environment/tictactoe"
	"github.com/samuelfneumann/gorl/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the predictions of the latest trained agents over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(g.storeKind, g.storePath, g.log)
			if err != nil {
				return err
			}
			defer store.Close()

			s, err := newServer(store, g.log)
			if err != nil {
				return err
			}

			g.log.WithField("addr", addr).Info("serving")
			return http.ListenAndServe(addr, s.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}

// newServer creates a server for the latest agent of each environment
// in store. Environments without a trained agent are not served. The
// grid world is served with the shape its agent was trained on.
func newServer(store checkpoint.Store, log logrus.FieldLogger) (
	*server.Server, error) {
	s := server.New(log, prometheus.NewRegistry())
	served := 0

	g, err := loadAgent[gridworld.Position, gridworld.Direction](store,
		latest(config.Grid))
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("serve: %w", err)
	default:
		rows, cols, err := gridShape(g)
		if err != nil {
			return nil, fmt.Errorf("serve: %w", err)
		}
		server.Register[gridworld.Position, gridworld.Direction](s,
			config.Grid, gridworld.States(rows, cols), g, true)
		served++
	}

	t, err := loadAgent[tictactoe.Board, tictactoe.Move](store,
		latest(config.TicTacToe))
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("serve: %w", err)
	default:
		// Enumerating every board is too slow to serve
		server.Register[tictactoe.Board, tictactoe.Move](s,
			config.TicTacToe, tictactoe.New().StateSpace(), t, false)
		served++
	}

	if served == 0 {
		return nil, fmt.Errorf("serve: no trained agents in the store")
	}
	return s, nil
}
