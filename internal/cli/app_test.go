package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/diagraph/pkg/adapters/file"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeShop saves a two step graph as shop.json and returns its path.
func writeShop(t *testing.T) string {
	t.Helper()
	g := domain.NewGraph("shop", "Shop")
	g.AddNode(&domain.Node{ID: "start", Type: domain.NodeTypeStart, Successor: "ask"})
	g.AddNode(&domain.Node{ID: "ask", Type: domain.NodeTypeQuestion, Markup: "Tea or coffee?", Text: "Tea or coffee?", Answers: []domain.Answer{
		{ID: "tea", Index: 0, Text: "tea", Successor: "done"},
		{ID: "coffee", Index: 1, Text: "coffee", Successor: "done"},
	}})
	g.AddNode(&domain.Node{ID: "done", Type: domain.NodeTypeInfo, Markup: "Enjoy!", Text: "Enjoy!"})

	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, file.Save(path, g))
	return path
}

func TestSetup_Source(t *testing.T) {
	path := writeShop(t)
	app, err := Setup(context.Background(), Options{Source: path, LogLevel: "error"})
	require.NoError(t, err)
	defer app.Close()

	id, err := app.GraphID(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "shop", id)
	assert.Nil(t, app.Metrics)
}

func TestSetup_ConfigFile(t *testing.T) {
	graph := writeShop(t)
	cfgPath := filepath.Join(t.TempDir(), "diagraph.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("graph_file: "+graph+"\nlog_level: warn\nmax_candidates: 1\n"), 0o644))

	app, err := Setup(context.Background(), Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, 1, app.Config.MaxCandidates)
	res, err := app.Engine.HandleTurn(context.Background(), ports.TurnRequest{UserID: "u", GraphID: "shop"})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 1)
}

func TestSetup_Errors(t *testing.T) {
	_, err := Setup(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = Setup(context.Background(), Options{Source: writeShop(t), LogLevel: "loud"})
	assert.Error(t, err)

	_, err = Setup(context.Background(), Options{Source: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestSetup_MetricsAndDebug(t *testing.T) {
	app, err := Setup(context.Background(), Options{Source: writeShop(t), Debug: true, Metrics: true})
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.Metrics)
	assert.Equal(t, "debug", app.Config.LogLevel)

	_, err = app.Engine.HandleTurn(context.Background(), ports.TurnRequest{UserID: "u", GraphID: "shop"})
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(app.Metrics.Turns))
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.NodeVisits.WithLabelValues(domain.NodeTypeQuestion.String())))
	assert.Equal(t, 0.0, testutil.ToFloat64(app.Metrics.NodeVisits.WithLabelValues(domain.NodeTypeStart.String())), "START is resolved, not dispatched")
}

func TestSetup_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("DIAGRAPH_REDIS_ADDR", mr.Addr())
	t.Setenv("DIAGRAPH_REDIS_PREFIX", "test:")

	app, err := Setup(context.Background(), Options{Source: writeShop(t), LogLevel: "error"})
	require.NoError(t, err)

	_, err = app.Engine.HandleTurn(context.Background(), ports.TurnRequest{UserID: "alice", GraphID: "shop"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:session:alice"))

	require.NoError(t, app.Close())
}

func TestSetup_RedisPublishMasked(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("DIAGRAPH_REDIS_ADDR", mr.Addr())
	t.Setenv("DIAGRAPH_REDIS_PREFIX", "test:")
	t.Setenv("DIAGRAPH_PUBLISH_MASK_KEYS", "PIN")

	app, err := Setup(context.Background(), Options{Source: writeShop(t), LogLevel: "error"})
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()
	sub := client.Subscribe(ctx, "test:"+domain.TopicBelief+":alice")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	_, err = app.Engine.HandleTurn(ctx, ports.TurnRequest{
		UserID:  "alice",
		GraphID: "shop",
		Belief:  domain.BeliefState{"PIN": "1234"},
	})
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"PIN":"***"`)
	assert.NotContains(t, msg.Payload, "1234")
}

func TestSetup_RedisBadMaskPattern(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("DIAGRAPH_REDIS_ADDR", mr.Addr())
	t.Setenv("DIAGRAPH_PUBLISH_MASK_KEYS", "(")

	_, err := Setup(context.Background(), Options{Source: writeShop(t), LogLevel: "error"})
	assert.Error(t, err)
}
