package experiment

import (
	"errors"
	"fmt"

	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/environment"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
	"github.com/sirupsen/logrus"
)

// pending is a move of a player which has not yet been credited with
// a reward
type pending[S space.State, A space.Elem] struct {
	state  S
	action A
	ok     bool
}

// TurnBased is an Experiment in which any number of players take turns
// acting in an environment, each controlled by its own agent. The same
// agent may control several players for self-play.
//
// A player is credited with all rewards it receives between two of its
// own moves, including those caused by the moves of other players. Its
// agent therefore learns from a move only once the player acts again or
// the episode ends.
type TurnBased[S space.State, A space.Elem] struct {
	env      environment.Environment[S, A]
	agents   []agent.Agent[S, A]
	episodes int
	episode  int
	settings
}

// NewTurnBased creates a new experiment which trains agents on env for
// the given number of episodes. Agent i controls player i and is
// initialized on env. NewTurnBased panics if the number of agents does
// not equal the number of players of env.
func NewTurnBased[S space.State, A space.Elem](
	env environment.Environment[S, A], agents []agent.Agent[S, A],
	episodes int, opts ...Option) (*TurnBased[S, A], error) {
	players := env.StateSpace().PlayerCount()
	if len(agents) != players {
		panic(fmt.Sprintf("newTurnBased: environment has %v players but "+
			"%v agents were given", players, len(agents)))
	}

	for i, a := range agents {
		if !a.Init(env) {
			return nil, fmt.Errorf("newTurnBased: agent %v does not "+
				"support the environment", i)
		}
	}

	t := &TurnBased[S, A]{
		env:      env,
		agents:   agents,
		episodes: episodes,
		settings: defaultSettings(),
	}
	for _, opt := range opts {
		opt(&t.settings)
	}
	t.log = t.log.WithField("run", t.run)
	return t, nil
}

// Episodes returns the number of episodes run so far
func (t *TurnBased[S, A]) Episodes() int {
	return t.episode
}

// Run runs all remaining episodes of the experiment
func (t *TurnBased[S, A]) Run() error {
	t.log.WithField("episodes", t.episodes).Info("training started")
	for t.episode < t.episodes {
		if _, err := t.RunEpisode(); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	t.log.Info("training finished")
	return nil
}

// RunEpisode runs a single episode of the experiment
func (t *TurnBased[S, A]) RunEpisode() (timestep.Episode, error) {
	players := len(t.agents)
	ep := timestep.Episode{
		Number:  t.episode,
		Returns: make([]float64, players),
	}
	log := t.log.WithField("episode", ep.Number)

	rewards := make([]float64, players)
	waiting := make([]pending[S, A], players)

	state := t.env.Reset().Observation
	for {
		player := state.CurrentPlayer()
		if player < 0 || player >= players {
			return ep, fmt.Errorf("runEpisode: player %v out of range "+
				"[0, %v)", player, players)
		}

		// Credit the player's last move with everything it received
		// since
		if w := waiting[player]; w.ok {
			err := t.learn(player, timestep.Transition[S, A]{
				State:     w.state,
				Action:    w.action,
				Reward:    rewards[player],
				NextState: state,
			})
			if err != nil {
				return ep, fmt.Errorf("runEpisode: %w", err)
			}
			rewards[player] = 0
		}

		action, err := t.agents[player].Act(state)
		if err != nil {
			return ep, fmt.Errorf("runEpisode: player %v: %w", player, err)
		}

		step := t.env.Step(action)
		ep.Steps++
		if len(step.Reward) != players {
			return ep, fmt.Errorf("runEpisode: %v rewards for %v players",
				len(step.Reward), players)
		}
		for i, r := range step.Reward {
			rewards[i] += r
			ep.Returns[i] += r
		}
		waiting[player] = pending[S, A]{state: state, action: action, ok: true}

		next, ok := step.Next()
		if !ok {
			break
		}
		if t.stepLimit > 0 && ep.Steps >= t.stepLimit {
			log.WithField("steps", ep.Steps).Debug("episode truncated")
			return ep, t.finish(ep)
		}
		state = next
	}

	for player, w := range waiting {
		if !w.ok {
			continue
		}
		err := t.learn(player, timestep.Transition[S, A]{
			State:    w.state,
			Action:   w.action,
			Reward:   rewards[player],
			Terminal: true,
		})
		if err != nil {
			return ep, fmt.Errorf("runEpisode: %w", err)
		}
	}

	return ep, t.finish(ep)
}

// learn updates the agent of player
func (t *TurnBased[S, A]) learn(player int,
	tr timestep.Transition[S, A]) error {
	if err := t.agents[player].Learn(tr); err != nil {
		if t.metrics != nil {
			t.metrics.LearnError(t.run, player)
		}
		return fmt.Errorf("player %v: %w", player, err)
	}
	return nil
}

// finish sends a finished episode to all observers
func (t *TurnBased[S, A]) finish(ep timestep.Episode) error {
	t.episode++

	for _, tracker := range t.trackers {
		tracker.Track(ep)
	}
	if t.metrics != nil {
		t.metrics.ObserveEpisode(t.run, ep)
	}
	if t.bar != nil {
		t.bar.Increment()
		t.bar.Display()
	}

	t.log.WithFields(logrus.Fields{
		"episode": ep.Number,
		"steps":   ep.Steps,
		"returns": ep.Returns,
	}).Debug("episode finished")

	for _, c := range t.checkpointers {
		if err := c.Checkpoint(ep); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}
	return nil
}

// Save saves the data of all trackers
func (t *TurnBased[S, A]) Save() error {
	var errs []error
	for _, tracker := range t.trackers {
		errs = append(errs, tracker.Save())
	}
	return errors.Join(errs...)
}
