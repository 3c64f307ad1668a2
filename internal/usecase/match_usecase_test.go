package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/fadilmartias/persona-match/internal/matching"
	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spySelector() (matching.Selector, *spyStrategy, *spyStrategy) {
	personal := &spyStrategy{name: "personal_agent"}
	simulated := &spyStrategy{name: "simulated_agent"}
	return matching.Selector{Personal: personal, Simulated: simulated}, personal, simulated
}

func TestStartMatch_DedupsPair(t *testing.T) {
	env := newEnv(t)
	sel, _, _ := spySelector()
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	ctx := context.Background()
	a, b := env.member(t, "ana"), env.member(t, "ben")

	first, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "processing", first.Status)

	second, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.MatchID, second.MatchID)

	reverse, err := uc.StartMatch(ctx, b.ID.String(), a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.MatchID, reverse.MatchID)

	assert.Equal(t, 1, env.launcher.count())
}

func TestStartMatch_ConcurrentCallsLaunchOnce(t *testing.T) {
	env := newEnv(t)
	sel, _, _ := spySelector()
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	a, b := env.member(t, "ana"), env.member(t, "ben")

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := uc.StartMatch(context.Background(), a.ID.String(), b.ID.String())
			if assert.NoError(t, err) {
				ids[i] = res.MatchID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, env.launcher.count())
}

func TestStartMatch_CompletedMatchIsReused(t *testing.T) {
	env := newEnv(t)
	sel, _, _ := spySelector()
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	ctx := context.Background()
	a, b := env.member(t, "ana"), env.member(t, "ben")

	first, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)
	env.launcher.runAll()
	assert.Equal(t, model.MatchStatusCompleted, env.reload(t, first.MatchID).Status)

	again, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first.MatchID, again.MatchID)
	assert.Equal(t, "completed", again.Status)
	assert.Equal(t, 0, env.launcher.count())
}

func TestStartMatch_FailedMatchCanBeRetried(t *testing.T) {
	env := newEnv(t)
	sel, personal, _ := spySelector()
	personal.err = errors.New("agent unreachable")
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	ctx := context.Background()
	a, b := env.member(t, "ana"), env.member(t, "ben")

	first, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)
	env.launcher.runAll()
	assert.Equal(t, model.MatchStatusFailed, env.reload(t, first.MatchID).Status)

	retry, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)
	assert.NotEqual(t, first.MatchID, retry.MatchID)
	assert.Equal(t, 1, env.launcher.count())
}

func TestStartMatch_Validation(t *testing.T) {
	env := newEnv(t)
	sel, _, _ := spySelector()
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	ctx := context.Background()
	a := env.member(t, "ana")

	_, err := uc.StartMatch(ctx, "", a.ID.String())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = uc.StartMatch(ctx, a.ID.String(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.StartMatch(ctx, a.ID.String(), "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = uc.StartMatch(ctx, a.ID.String(), a.ID.String())
	assert.ErrorIs(t, err, ErrSelfMatch)

	assert.Equal(t, 0, env.launcher.count())
}

func TestRun_RoutesByGuestPredicate(t *testing.T) {
	cases := []struct {
		name          string
		aGuest        bool
		bGuest        bool
		wantSimulated bool
	}{
		{"member and member", false, false, false},
		{"guest initiator", true, false, true},
		{"guest target", false, true, true},
		{"both guests", true, true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newEnv(t)
			sel, personal, simulated := spySelector()
			uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)

			pick := func(name string, guest bool) *model.User {
				if guest {
					return env.guest(t, name)
				}
				return env.member(t, name)
			}
			a, b := pick("ana", c.aGuest), pick("ben", c.bGuest)

			res, err := uc.StartMatch(context.Background(), a.ID.String(), b.ID.String())
			require.NoError(t, err)
			env.launcher.runAll()

			if c.wantSimulated {
				assert.Equal(t, 1, simulated.calls)
				assert.Equal(t, 0, personal.calls)
			} else {
				assert.Equal(t, 1, personal.calls)
				assert.Equal(t, 0, simulated.calls)
			}
			assert.Equal(t, model.MatchStatusCompleted, env.reload(t, res.MatchID).Status)
		})
	}
}

func TestRun_FailurePaths(t *testing.T) {
	t.Run("strategy error", func(t *testing.T) {
		env := newEnv(t)
		sel, personal, _ := spySelector()
		personal.err = errors.New("chat API failed: 502")
		uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
		a, b := env.member(t, "ana"), env.member(t, "ben")

		res, err := uc.StartMatch(context.Background(), a.ID.String(), b.ID.String())
		require.NoError(t, err)
		env.launcher.runAll()

		m := env.reload(t, res.MatchID)
		assert.Equal(t, model.MatchStatusFailed, m.Status)
		assert.Contains(t, string(m.Report), "chat API failed: 502")
		assert.JSONEq(t, `[]`, string(m.ChatLog))
	})

	t.Run("panic", func(t *testing.T) {
		env := newEnv(t)
		sel, personal, _ := spySelector()
		personal.panics = true
		uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
		a, b := env.member(t, "ana"), env.member(t, "ben")

		res, err := uc.StartMatch(context.Background(), a.ID.String(), b.ID.String())
		require.NoError(t, err)
		env.launcher.runAll()

		m := env.reload(t, res.MatchID)
		assert.Equal(t, model.MatchStatusFailed, m.Status)
		assert.Contains(t, string(m.Report), "strategy exploded")
	})

	t.Run("missing user", func(t *testing.T) {
		env := newEnv(t)
		sel, personal, simulated := spySelector()
		uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
		a, b := env.member(t, "ana"), env.member(t, "ben")

		m := &model.Match{UserAID: a.ID, UserBID: b.ID, Status: model.MatchStatusProcessing}
		require.NoError(t, env.matches.Create(context.Background(), m))
		uc.Run(context.Background(), m.ID, a.ID.String(), "00000000-0000-0000-0000-000000000009")

		assert.Equal(t, model.MatchStatusFailed, env.reload(t, m.ID.String()).Status)
		assert.Zero(t, personal.calls+simulated.calls)
	})
}

func TestRun_TerminalStateIsFinal(t *testing.T) {
	env := newEnv(t)
	sel, personal, _ := spySelector()
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	a, b := env.member(t, "ana"), env.member(t, "ben")

	res, err := uc.StartMatch(context.Background(), a.ID.String(), b.ID.String())
	require.NoError(t, err)
	env.launcher.runAll()
	done := env.reload(t, res.MatchID)
	require.Equal(t, model.MatchStatusCompleted, done.Status)

	// a duplicate launch must not overwrite the stored result
	personal.err = errors.New("late failure")
	uc.Run(context.Background(), done.ID, a.ID.String(), b.ID.String())

	again := env.reload(t, res.MatchID)
	assert.Equal(t, model.MatchStatusCompleted, again.Status)
	assert.Equal(t, done.Score, again.Score)
	assert.JSONEq(t, string(done.Report), string(again.Report))
}

func TestMatchPipeline_EndToEnd(t *testing.T) {
	env := newEnv(t)
	agent := &stubAgent{actReply: "Here you go:\n" + goodReport}
	sel := matching.Selector{
		Personal:  matching.NewPersonalAgentStrategy(agent, env.users),
		Simulated: matching.NewSimulatedAgentStrategy(&stubLLM{reply: "not json"}),
	}
	launcher := worker.NewLauncher()
	uc := NewMatchUsecase(env.users, env.matches, sel, launcher)
	ctx := context.Background()
	u1, u2 := env.member(t, "u1"), env.member(t, "u2")

	res, err := uc.StartMatch(ctx, u1.ID.String(), u2.ID.String())
	require.NoError(t, err)
	require.NoError(t, launcher.Wait(ctx))

	view, err := uc.GetMatch(ctx, u1.ID.String(), res.MatchID)
	require.NoError(t, err)
	assert.Equal(t, "completed", view.Status)
	assert.Equal(t, 88, view.Score)
	assert.Equal(t, "u1", view.UserA.Name)
	assert.Equal(t, "u2", view.UserB.Name)

	var report matching.Report
	require.NoError(t, json.Unmarshal(view.Report, &report))
	require.NoError(t, report.Validate())

	var chatLog []matching.ChatRound
	require.NoError(t, json.Unmarshal(view.ChatLog, &chatLog))
	require.Len(t, chatLog, 4)
	for i, r := range chatLog {
		assert.Equal(t, matching.Questions[i], r.Question)
		assert.NotEmpty(t, r.Answer)
	}
	assert.Equal(t, 4, agent.chats)
	assert.Equal(t, 1, agent.acts)
}

func TestMatchPipeline_UnparsableOutputStillCompletes(t *testing.T) {
	for _, guest := range []bool{false, true} {
		env := newEnv(t)
		sel := matching.Selector{
			Personal:  matching.NewPersonalAgentStrategy(&stubAgent{actReply: "not json"}, env.users),
			Simulated: matching.NewSimulatedAgentStrategy(&stubLLM{reply: "not json"}),
		}
		uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
		a := env.member(t, "ana")
		b := env.member(t, "ben")
		if guest {
			b = env.guest(t, "gus")
		}

		res, err := uc.StartMatch(context.Background(), a.ID.String(), b.ID.String())
		require.NoError(t, err)
		env.launcher.runAll()

		m := env.reload(t, res.MatchID)
		assert.Equal(t, model.MatchStatusCompleted, m.Status)
		assert.Equal(t, 70, m.Score)

		var report matching.Report
		require.NoError(t, json.Unmarshal(m.Report, &report))
		assert.NoError(t, report.Validate())

		var chatLog []matching.ChatRound
		require.NoError(t, json.Unmarshal(m.ChatLog, &chatLog))
		assert.Len(t, chatLog, 4)
	}
}

func TestGetMatch_Access(t *testing.T) {
	env := newEnv(t)
	sel, _, _ := spySelector()
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	ctx := context.Background()
	a, b, c := env.member(t, "ana"), env.member(t, "ben"), env.member(t, "cy")

	res, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)

	view, err := uc.GetMatch(ctx, b.ID.String(), res.MatchID)
	require.NoError(t, err)
	assert.Equal(t, "processing", view.Status)
	assert.JSONEq(t, `{}`, string(view.Report))
	assert.JSONEq(t, `[]`, string(view.ChatLog))

	_, err = uc.GetMatch(ctx, "", res.MatchID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = uc.GetMatch(ctx, c.ID.String(), res.MatchID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.GetMatch(ctx, a.ID.String(), "00000000-0000-0000-0000-000000000042")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestListMatches(t *testing.T) {
	env := newEnv(t)
	sel, _, _ := spySelector()
	uc := NewMatchUsecase(env.users, env.matches, sel, env.launcher)
	ctx := context.Background()
	a, b, c := env.member(t, "ana"), env.member(t, "ben"), env.member(t, "cy")

	_, err := uc.StartMatch(ctx, a.ID.String(), b.ID.String())
	require.NoError(t, err)
	_, err = uc.StartMatch(ctx, c.ID.String(), a.ID.String())
	require.NoError(t, err)

	list, err := uc.ListMatches(ctx, a.ID.String())
	require.NoError(t, err)
	require.Len(t, list, 2)

	partners := map[string]bool{}
	for _, m := range list {
		partners[m.Partner.Name] = m.InitiatedByMe
	}
	assert.Equal(t, map[string]bool{"ben": true, "cy": false}, partners)

	_, err = uc.ListMatches(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
