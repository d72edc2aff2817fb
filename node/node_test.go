package node

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/nextdotid/relationservice/cmd"
	"github.com/nextdotid/relationservice/cmd/relation/flags"
	"github.com/nextdotid/relationservice/config/params"
	"github.com/nextdotid/relationservice/testing/assert"
	"github.com/nextdotid/relationservice/testing/require"
	"github.com/urfave/cli/v2"
)

// Test that the relation node can build with default flag values.
func TestNode_Builds(t *testing.T) {
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.String(flags.GraphStoreEndpointFlag.Name, "http://127.0.0.1:9000", "graph store endpoint")
	set.String(flags.HTTPHostFlag.Name, "127.0.0.1", "graphql host")
	set.Int(flags.HTTPPortFlag.Name, 8000, "graphql port")
	set.String(flags.HTTPCorsDomainFlag.Name, "*", "cors origins")
	set.Bool(cmd.DisableMonitoringFlag.Name, true, "disable monitoring")
	ctx := cli.NewContext(&app, set, nil)

	node, err := New(ctx)
	require.NoError(t, err)
	require.NotNil(t, node.querySvc)
	// Graph store, refresher and GraphQL server are registered; monitoring is
	// disabled above.
	assert.Equal(t, 3, len(node.services.Statuses()))
}

func TestNode_MalformedGraphStoreEndpoint(t *testing.T) {
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.String(flags.GraphStoreEndpointFlag.Name, "notaurl", "graph store endpoint")
	ctx := cli.NewContext(&app, set, nil)

	_, err := New(ctx)
	require.ErrorContains(t, "hostname must include port", err)
}

func TestNode_LoadsRelationConfigFile(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	cfgPath := filepath.Join(t.TempDir(), "relation.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("fetch-depth: 5\n"), os.ModePerm))

	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.String(flags.GraphStoreEndpointFlag.Name, "http://127.0.0.1:9000", "graph store endpoint")
	set.Bool(cmd.DisableMonitoringFlag.Name, true, "disable monitoring")
	set.String(cmd.RelationConfigFileFlag.Name, "", "config file")
	require.NoError(t, set.Set(cmd.RelationConfigFileFlag.Name, cfgPath))
	ctx := cli.NewContext(&app, set, nil)

	_, err := New(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, params.RelationConfig().FetchDepth)
}

func TestNode_RejectsUnknownConfigKeys(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	cfgPath := filepath.Join(t.TempDir(), "relation.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("fetch-depht: 5\n"), os.ModePerm))

	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.String(flags.GraphStoreEndpointFlag.Name, "http://127.0.0.1:9000", "graph store endpoint")
	set.String(cmd.RelationConfigFileFlag.Name, "", "config file")
	require.NoError(t, set.Set(cmd.RelationConfigFileFlag.Name, cfgPath))
	ctx := cli.NewContext(&app, set, nil)

	_, err := New(ctx)
	require.ErrorContains(t, "failed to parse config yaml file", err)
}
