package competition_test

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/competition"
	"github.com/ZJUSCT/TopTSP/internal/config"
	"github.com/ZJUSCT/TopTSP/internal/database"
	"github.com/ZJUSCT/TopTSP/internal/database/models"
	"github.com/ZJUSCT/TopTSP/internal/tsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances one second on every reading so timestamps are distinct
// and ordered.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(topic string, msg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, topic+":"+string(msg))
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	svc   *competition.Service
	store *database.Store
	clock *fakeClock
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		store: database.NewStore(db),
		clock: &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)},
		pub:   &recordingPublisher{},
	}
	f.svc = competition.NewService(f.store,
		competition.WithClock(f.clock.Now),
		competition.WithPublisher(f.pub),
		competition.WithDefaultInstanceName("Berlin 52"),
	)
	return f
}

// squareInstance stores the 4-node instance with a hand-made matrix as the
// active one.
func (f *fixture) squareInstance(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.PutInstance(&models.Instance{
		Name:      "square",
		Type:      "TSP",
		Dimension: 4,
		DistanceMatrix: models.Matrix{
			{0, 10, 15, 20},
			{10, 0, 35, 25},
			{15, 35, 0, 30},
			{20, 25, 30, 0},
		},
	}))
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{ID: "id-" + email, Email: email, PasswordHash: "x"}
	require.NoError(t, f.store.CreateUser(u))
	return u
}

func (f *fixture) submit(t *testing.T, userID, tour string) *competition.SubmitResult {
	t.Helper()
	res, err := f.svc.SubmitSolution(userID, tour, "test")
	require.NoError(t, err)
	return res
}

const lineInstance = `NAME: line
TYPE: TSP
DIMENSION: 3
EDGE_WEIGHT_TYPE: EUC_2D
NODE_COORD_SECTION
1 0 0
2 3 0
3 3 4
EOF
`

func TestSubmitSolution_Scenario(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	u := f.user(t, "alice@example.com")

	res := f.submit(t, u.ID, "1,2,3,4")
	require.Equal(t, 95.0, res.ObjectiveValue)
	require.True(t, res.Improved)
	first := res.SubmissionID

	res = f.submit(t, u.ID, "1,3,2,4")
	require.Equal(t, 95.0, res.ObjectiveValue)
	require.False(t, res.Improved)

	best, err := f.store.BestResult(u.ID)
	require.NoError(t, err)
	require.Equal(t, first, best.BestSubmissionID)
	require.Equal(t, 2, best.TotalSubmissions)

	res = f.submit(t, u.ID, "1,2,4,3")
	require.Equal(t, 80.0, res.ObjectiveValue)
	require.True(t, res.Improved)

	best, err = f.store.BestResult(u.ID)
	require.NoError(t, err)
	require.Equal(t, 80.0, best.BestObjectiveValue)
	require.Equal(t, res.SubmissionID, best.BestSubmissionID)
	require.Equal(t, 3, best.TotalSubmissions)
	require.Equal(t, "test", best.BestMethod)
}

// failingStore hands transactions a store whose PutBestResult fails.
type failingStore struct {
	competition.Store
}

func (s failingStore) Transaction(fn func(tx competition.Store) error) error {
	return s.Store.Transaction(func(tx competition.Store) error {
		return fn(failingTx{tx})
	})
}

type failingTx struct {
	competition.Store
}

func (failingTx) PutBestResult(*models.BestResult) error {
	return errors.New("disk full")
}

func TestSubmitSolution_FailedBestUpdateRollsBack(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	u := f.user(t, "alice@example.com")

	svc := competition.NewService(failingStore{f.store},
		competition.WithClock(f.clock.Now),
		competition.WithPublisher(f.pub),
	)
	res, err := svc.SubmitSolution(u.ID, "1,2,3,4", "")
	require.Error(t, err)
	require.Nil(t, res)
	require.Zero(t, f.pub.count())

	history, err := svc.ExportHistory()
	require.NoError(t, err)
	require.Empty(t, history)
	_, err = f.store.BestResult(u.ID)
	require.ErrorIs(t, err, competition.ErrNotFound)

	// the same tour is still a first result once storage recovers
	require.True(t, f.submit(t, u.ID, "1,2,3,4").Improved)
}

func TestSubmitSolution_Rejections(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "alice@example.com")

	_, err := f.svc.SubmitSolution(u.ID, "1,2,3,4", "")
	require.ErrorIs(t, err, competition.ErrNoInstance)

	f.squareInstance(t)
	cases := []struct {
		tour string
		want error
	}{
		{"", tsp.ErrEmptyInput},
		{"1,two,3,4", tsp.ErrNonNumericToken},
		{"1,0,3,4", tsp.ErrNonPositiveToken},
		{"1,2,3", tsp.ErrWrongLength},
		{"1,2,2,4", tsp.ErrDuplicateNode},
		{"1,2,3,9", tsp.ErrMissingNode},
	}
	for _, tc := range cases {
		t.Run(tc.tour, func(t *testing.T) {
			_, err := f.svc.SubmitSolution(u.ID, tc.tour, "")
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err = f.svc.SubmitSolution("ghost", "1,2,3,4", "")
	require.ErrorIs(t, err, competition.ErrNotFound)

	// nothing was recorded by any rejected submission
	_, err = f.store.BestResult(u.ID)
	require.ErrorIs(t, err, competition.ErrNotFound)
	subs, err := f.svc.UserSolutions(u.ID)
	require.NoError(t, err)
	require.Empty(t, subs)
}

func TestSubmitSolution_MethodLabel(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	u := f.user(t, "alice@example.com")

	_, err := f.svc.SubmitSolution(u.ID, "1,2,3,4", "  2-opt  ")
	require.NoError(t, err)
	_, err = f.svc.SubmitSolution(u.ID, "1,2,3,4", "simulated annealing")
	require.NoError(t, err)

	subs, err := f.svc.UserSolutions(u.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, "", subs[0].Method)
	require.Equal(t, "2-opt", subs[1].Method)
}

func TestSubmitSolution_ClosedCompetition(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	u := f.user(t, "alice@example.com")

	require.NoError(t, f.svc.SetEndDate("2026-05-04T10:00:04Z"))
	open, err := f.svc.IsOpen()
	require.NoError(t, err)
	require.True(t, open)

	for i := 0; i < 3; i++ {
		f.submit(t, u.ID, "1,2,3,4")
	}
	_, err = f.svc.SubmitSolution(u.ID, "1,2,4,3", "")
	require.ErrorIs(t, err, competition.ErrCompetitionClosed)

	// past submissions stay, reads still work
	view, err := f.svc.Ranking()
	require.NoError(t, err)
	require.Len(t, view.Ranking, 1)
	require.Equal(t, 95.0, view.Ranking[0].BestObjectiveValue)

	require.NoError(t, f.svc.SetEndDate(""))
	f.submit(t, u.ID, "1,2,4,3")

	require.ErrorIs(t, f.svc.SetEndDate("next tuesday"), competition.ErrInvalidDate)
}

func TestSubmitSolution_ConcurrentSameUser(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	u := f.user(t, "alice@example.com")

	tours := []string{"1,2,3,4", "1,3,2,4", "1,2,4,3", "4,3,2,1", "3,4,2,1"}
	const rounds = 8

	var wg sync.WaitGroup
	var mu sync.Mutex
	improvedCount := 0
	for r := 0; r < rounds; r++ {
		for _, tour := range tours {
			wg.Add(1)
			go func(tour string) {
				defer wg.Done()
				res, err := f.svc.SubmitSolution(u.ID, tour, "")
				if !assert.NoError(t, err) {
					return
				}
				if res.Improved {
					mu.Lock()
					improvedCount++
					mu.Unlock()
				}
			}(tour)
		}
	}
	wg.Wait()

	best, err := f.store.BestResult(u.ID)
	require.NoError(t, err)
	require.Equal(t, rounds*len(tours), best.TotalSubmissions)
	require.Equal(t, 80.0, best.BestObjectiveValue)
	require.GreaterOrEqual(t, improvedCount, 1)
	require.LessOrEqual(t, improvedCount, 2)
}

func TestRanking_LiveOrderAndStats(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	carol := f.user(t, "carol@example.com")

	f.submit(t, bob.ID, "1,2,3,4")   // 95
	f.submit(t, alice.ID, "1,3,2,4") // 95, later than bob
	f.submit(t, carol.ID, "1,2,4,3") // 80
	f.submit(t, alice.ID, "1,2,3,4") // 95 again, no improvement

	view, err := f.svc.Ranking()
	require.NoError(t, err)
	require.False(t, view.Frozen)
	require.Nil(t, view.FrozenAt)
	require.Len(t, view.Ranking, 3)
	require.Equal(t, "carol@example.com", view.Ranking[0].Email)
	require.Equal(t, "bob@example.com", view.Ranking[1].Email)
	require.Equal(t, "alice@example.com", view.Ranking[2].Email)
	require.Equal(t, 2, view.Ranking[2].TotalSubmissions)

	require.Equal(t, 3, view.Stats.TotalParticipants)
	require.Equal(t, 80.0, *view.Stats.BestSolution)
	require.Equal(t, 4, view.Stats.TotalSolutions)
}

func TestRanking_FreezeStability(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	f.submit(t, alice.ID, "1,2,3,4")
	require.NoError(t, f.svc.ToggleFreeze(true))

	frozen, err := f.svc.Ranking()
	require.NoError(t, err)
	require.True(t, frozen.Frozen)
	require.NotNil(t, frozen.FrozenAt)
	require.Len(t, frozen.Ranking, 1)

	// submissions are still scored while frozen
	res := f.submit(t, alice.ID, "1,2,4,3")
	require.True(t, res.Improved)
	f.submit(t, bob.ID, "1,3,2,4")

	again, err := f.svc.Ranking()
	require.NoError(t, err)
	require.Equal(t, frozen, again)

	settings, err := f.svc.Settings()
	require.NoError(t, err)
	require.True(t, settings.Frozen)

	require.NoError(t, f.svc.ToggleFreeze(false))
	live, err := f.svc.Ranking()
	require.NoError(t, err)
	require.False(t, live.Frozen)
	require.Len(t, live.Ranking, 2)
	require.Equal(t, 80.0, live.Ranking[0].BestObjectiveValue)
	require.Equal(t, 3, live.Stats.TotalSolutions)
}

func TestRanking_FreezeRecomputes(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	alice := f.user(t, "alice@example.com")

	f.submit(t, alice.ID, "1,2,3,4")
	require.NoError(t, f.svc.ToggleFreeze(true))
	f.submit(t, alice.ID, "1,2,4,3")

	// freezing again without unfreezing takes a new snapshot
	require.NoError(t, f.svc.ToggleFreeze(true))
	view, err := f.svc.Ranking()
	require.NoError(t, err)
	require.True(t, view.Frozen)
	require.Equal(t, 80.0, view.Ranking[0].BestObjectiveValue)
}

func TestResetRanking_KeepsFrozenSnapshot(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	f.submit(t, alice.ID, "1,2,3,4")
	f.submit(t, bob.ID, "1,2,4,3")

	require.NoError(t, f.svc.ToggleFreeze(true))
	require.NoError(t, f.svc.ResetRanking())

	rows, err := f.store.ListRankingRows()
	require.NoError(t, err)
	require.Empty(t, rows)

	view, err := f.svc.Ranking()
	require.NoError(t, err)
	require.True(t, view.Frozen)
	require.Len(t, view.Ranking, 2)

	require.NoError(t, f.svc.ToggleFreeze(false))
	view, err = f.svc.Ranking()
	require.NoError(t, err)
	require.Empty(t, view.Ranking)
	require.Nil(t, view.Stats.BestSolution)

	history, err := f.svc.ExportHistory()
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestUploadInstance(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")

	_, err := f.svc.UploadInstance("NAME: broken\n", false)
	require.ErrorIs(t, err, tsp.ErrInvalidFormat)
	_, err = f.svc.ActiveInstance()
	require.ErrorIs(t, err, competition.ErrNoInstance)

	inst, err := f.svc.UploadInstance(lineInstance, false)
	require.NoError(t, err)
	require.NotZero(t, inst.ID)
	require.Equal(t, 1, inst.Generation)

	res := f.submit(t, alice.ID, "1,2,3")
	require.Equal(t, 12.0, res.ObjectiveValue)

	// an upload without replacement keeps every result
	second, err := f.svc.UploadInstance(strings.Replace(lineInstance, "NAME: line", "NAME: line two", 1), false)
	require.NoError(t, err)
	require.Equal(t, 2, second.Generation)
	view, err := f.svc.Ranking()
	require.NoError(t, err)
	require.Len(t, view.Ranking, 1)

	// the best result carries over to the new generation and only a strictly
	// better tour replaces it
	again := f.submit(t, alice.ID, "1,3,2")
	require.Equal(t, 12.0, again.ObjectiveValue)
	require.False(t, again.Improved)
	best, err := f.store.BestResult(alice.ID)
	require.NoError(t, err)
	require.Equal(t, res.SubmissionID, best.BestSubmissionID)
	require.Equal(t, 2, best.TotalSubmissions)
	stored, err := f.store.GetSubmission(again.SubmissionID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Generation)

	active, err := f.svc.ActiveInstance()
	require.NoError(t, err)
	require.Equal(t, second.ID, active.ID)

	name, content, err := f.svc.InstanceDownload()
	require.NoError(t, err)
	require.Equal(t, "line_two.txt", name)
	require.Contains(t, content, "NAME: line two")

	// replacing wipes the whole competition
	third, err := f.svc.UploadInstance(lineInstance, true)
	require.NoError(t, err)
	require.Equal(t, 3, third.Generation)
	view, err = f.svc.Ranking()
	require.NoError(t, err)
	require.Empty(t, view.Ranking)
	history, err := f.svc.ExportHistory()
	require.NoError(t, err)
	require.Empty(t, history)

	// a fresh service reads the same active instance from the store
	fresh := competition.NewService(f.store, competition.WithPublisher(f.pub))
	active, err = fresh.ActiveInstance()
	require.NoError(t, err)
	require.Equal(t, third.ID, active.ID)
	require.Equal(t, models.Matrix{{0, 3, 5}, {3, 0, 4}, {5, 4, 0}}, active.DistanceMatrix)
	require.Len(t, active.Coordinates, 3)

	require.GreaterOrEqual(t, f.pub.count(), 4)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	f.submit(t, alice.ID, "1,2,3,4")
	f.submit(t, bob.ID, "1,2,4,3")

	require.NoError(t, f.svc.DeleteUser(alice.ID))
	_, err := f.store.GetUser(alice.ID)
	require.ErrorIs(t, err, competition.ErrNotFound)
	_, err = f.store.BestResult(alice.ID)
	require.ErrorIs(t, err, competition.ErrNotFound)

	history, err := f.svc.ExportHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "bob@example.com", history[0].Email)

	require.ErrorIs(t, f.svc.DeleteUser(alice.ID), competition.ErrNotFound)

	admin := &models.User{ID: "root", Email: "root@example.com", IsAdmin: true}
	require.NoError(t, f.store.CreateUser(admin))
	require.ErrorIs(t, f.svc.DeleteUser(admin.ID), competition.ErrAdminProtected)
}

func TestHistoryViews(t *testing.T) {
	f := newFixture(t)
	f.squareInstance(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	f.submit(t, alice.ID, "1,2,3,4") // 95, global best
	f.submit(t, bob.ID, "1,3,2,4")   // 95, not a global improvement
	f.submit(t, bob.ID, "1,2,4,3")   // 80, global best
	f.submit(t, alice.ID, "2,1,3,4") // 10+15+30+25 = 80, tie

	improvements, err := f.svc.BestHistory()
	require.NoError(t, err)
	require.Len(t, improvements, 2)
	require.Equal(t, "alice@example.com", improvements[0].User)
	require.Equal(t, 95.0, improvements[0].Value)
	require.Equal(t, "bob@example.com", improvements[1].User)
	require.Equal(t, 80.0, improvements[1].Value)

	route, err := f.svc.UserBestRoute(bob.ID)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 4, 3}, route.Route)
	require.Equal(t, 80.0, route.ObjectiveValue)
	require.Equal(t, "Berlin 52", route.InstanceName)

	require.NoError(t, f.svc.SetInstanceName("Square 4"))
	route, err = f.svc.UserBestRoute(alice.ID)
	require.NoError(t, err)
	require.Equal(t, "Square 4", route.InstanceName)

	_, err = f.svc.UserBestRoute("ghost")
	require.ErrorIs(t, err, competition.ErrNotFound)

	timeline, err := f.svc.UserTimeline(alice.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	require.True(t, timeline[0].SubmittedAt.Before(timeline[1].SubmittedAt))

	_, err = f.svc.UserTimeline("ghost")
	require.ErrorIs(t, err, competition.ErrNotFound)

	history, err := f.svc.ExportHistory()
	require.NoError(t, err)
	require.Len(t, history, 4)
	require.Equal(t, "2,1,3,4", history[0].Solution)
	require.Equal(t, "1,2,3,4", history[3].Solution)

	var buf bytes.Buffer
	require.NoError(t, competition.WriteHistoryCSV(&buf, history))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	require.Equal(t, []string{"Email", "Solution", "Objective", "Method", "Submitted At", "Valid"}, records[0])
	require.Equal(t, "alice@example.com", records[1][0])
	require.Equal(t, "80.00", records[1][2])
	require.Equal(t, "true", records[1][5])
}

func TestUsers(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateUsers(" alice@example.com; bob@example.com ;; alice@example.com")
	require.NoError(t, err)
	require.Equal(t, 2, res.Created)
	require.Equal(t, []string{"User alice@example.com already exists"}, res.Errors)

	user, err := f.svc.Authenticate("alice@example.com", "alice@example.com")
	require.NoError(t, err)
	require.True(t, user.FirstLogin)
	require.False(t, user.IsAdmin)

	_, err = f.svc.Authenticate("alice@example.com", "wrong")
	require.ErrorIs(t, err, competition.ErrInvalidCredentials)
	_, err = f.svc.Authenticate("nobody@example.com", "x")
	require.ErrorIs(t, err, competition.ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(user.ID, "n3w"))
	user, err = f.svc.Authenticate("alice@example.com", "n3w")
	require.NoError(t, err)
	require.False(t, user.FirstLogin)

	require.NoError(t, f.svc.ResetPassword(user.ID))
	user, err = f.svc.Authenticate("alice@example.com", "alice@example.com")
	require.NoError(t, err)
	require.True(t, user.FirstLogin)

	participants, err := f.svc.Participants()
	require.NoError(t, err)
	require.Len(t, participants, 2)
	require.Equal(t, "alice@example.com", participants[0].Email)
	require.Nil(t, participants[0].BestObjectiveValue)
}

func TestBootstrap(t *testing.T) {
	f := newFixture(t)
	seed := filepath.Join(t.TempDir(), "line.tsp")
	require.NoError(t, os.WriteFile(seed, []byte(lineInstance), 0644))

	cfg := &config.Config{
		Auth: config.Auth{BootstrapAdmin: config.BootstrapAdmin{Email: "root@example.com", Password: "root"}},
		Competition: config.Competition{
			SeedInstance: seed,
			EndAt:        "2026-06-01T00:00:00Z",
		},
	}
	require.NoError(t, f.svc.Bootstrap(cfg))

	admin, err := f.svc.Authenticate("root@example.com", "root")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)

	inst, err := f.svc.ActiveInstance()
	require.NoError(t, err)
	require.Equal(t, "line", inst.Name)

	settings, err := f.svc.Settings()
	require.NoError(t, err)
	require.True(t, settings.HasInstance)
	require.Equal(t, "Berlin 52", settings.InstanceName)
	require.NotNil(t, settings.EndAt)
	require.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), settings.EndAt.UTC())

	// a second run changes nothing
	require.NoError(t, f.svc.SetEndDate(""))
	require.NoError(t, f.svc.Bootstrap(cfg))
	again, err := f.svc.ActiveInstance()
	require.NoError(t, err)
	require.Equal(t, inst.ID, again.ID)
	settings, err = f.svc.Settings()
	require.NoError(t, err)
	require.NotNil(t, settings.EndAt)
}
