package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/config"
	"github.com/samuelfneumann/gorl/environment/gridworld"
	"github.com/spf13/cobra"
)

var arrows = map[gridworld.Direction]string{
	gridworld.Up:    "↑",
	gridworld.Down:  "↓",
	gridworld.Left:  "←",
	gridworld.Right: "→",
}

func newShowCommand(g *globals) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the greedy policy of the latest grid world agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(g.storeKind, g.storePath, g.log)
			if err != nil {
				return err
			}
			defer store.Close()

			a, err := loadAgent[gridworld.Position, gridworld.Direction](store,
				latest(config.Grid))
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			rows, cols, err := gridShape(a)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}
			return showPolicy(cmd.OutOrStdout(), aurora.NewAurora(!noColor),
				a, rows, cols)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	return cmd
}

// showPolicy prints the greedy action of a in each cell of a grid, with
// the centre marked
func showPolicy(w io.Writer, au aurora.Aurora,
	a agent.Agent[gridworld.Position, gridworld.Direction], rows,
	cols int) error {
	centre := gridworld.Position{Row: rows / 2, Col: cols / 2}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := gridworld.Position{Row: r, Col: c}
			if p == centre {
				b.WriteString(au.Green("◎").Bold().String())
			} else {
				d, err := a.Predict(p)
				if err != nil {
					return fmt.Errorf("showPolicy: %v: %w", p, err)
				}
				b.WriteString(au.Cyan(arrows[d]).String())
			}
			if c < cols-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
