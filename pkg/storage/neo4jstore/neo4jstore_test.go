package neo4jstore

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/storage"
)

// fakeClient keeps map nodes in memory and records every write.
type fakeClient struct {
	nodes   map[string]fakeNode
	writes  []string
	failing error
	closed  bool
}

type fakeNode struct {
	document  string
	updatedAt int64
}

func newFakeClient() *fakeClient {
	return &fakeClient{nodes: make(map[string]fakeNode)}
}

func (c *fakeClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	if c.failing != nil {
		return Result{}, c.failing
	}
	c.writes = append(c.writes, cypher)
	id, _ := params["id"].(string)
	switch cypher {
	case cypherUpsert:
		c.nodes[id] = fakeNode{
			document:  params["document"].(string),
			updatedAt: params["updated_at"].(int64),
		}
	case cypherDelete:
		delete(c.nodes, id)
	}
	return Result{}, nil
}

func (c *fakeClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	if c.failing != nil {
		return Result{}, c.failing
	}
	switch cypher {
	case cypherGet:
		n, ok := c.nodes[params["id"].(string)]
		if !ok {
			return Result{}, nil
		}
		return Result{Records: []Record{{"document": n.document}}}, nil
	case cypherList:
		ids := make([]string, 0, len(c.nodes))
		for id := range c.nodes {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b string) int {
			if d := c.nodes[b].updatedAt - c.nodes[a].updatedAt; d != 0 {
				return int(d)
			}
			return strings.Compare(a, b)
		})
		var res Result
		for _, id := range ids {
			res.Records = append(res.Records, Record{"document": c.nodes[id].document})
		}
		return res, nil
	}
	return Result{}, nil
}

func (c *fakeClient) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

func sampleMap() graph.CareerMap {
	return graph.CareerMap{
		Name: "Engineering",
		Paths: []graph.CareerPath{
			{ID: "ic", Roles: []graph.Role{
				{ID: "eng1", Name: "Engineer I", Level: 0},
				{ID: "eng2", Name: "Engineer II", Level: 1},
				{ID: "staff", Name: "Staff", Level: 2},
			}},
			{ID: "mgmt", Roles: []graph.Role{
				{ID: "eng2", Name: "Engineer II", Level: 1},
				{ID: "em", Name: "Manager", Level: 2},
			}},
		},
		Transitions: []graph.Transition{
			{FromID: "staff", ToID: "em", Recommended: true},
			{FromID: "em", ToID: "ghost"},
		},
	}
}

func newStore() (*Store, *fakeClient) {
	c := newFakeClient()
	s := New(c)
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		t = t.Add(time.Second)
		return t
	}
	return s, c
}

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	s, c := newStore()

	saved, err := s.Save(ctx, storage.Document{Map: sampleMap()})
	require.NoError(t, err)
	assert.Equal(t, []string{cypherUpsert, cypherRoles, cypherSteps, cypherTransitions}, c.writes)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleMap(), got.Map); diff != "" {
		t.Errorf("map mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveReplaceKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	first, err := s.Save(ctx, storage.NewDocument(sampleMap()))
	require.NoError(t, err)
	first.Name = "Renamed"
	second, err := s.Save(ctx, first)
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	s, c := newStore()

	a, err := s.Save(ctx, storage.Document{Map: sampleMap()})
	require.NoError(t, err)
	b, err := s.Save(ctx, storage.Document{Map: sampleMap()})
	require.NoError(t, err)

	docs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, b.ID, docs[0].ID)
	assert.Equal(t, a.ID, docs[1].ID)

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Close(ctx))
	assert.True(t, c.closed)
}

func TestBackendErrors(t *testing.T) {
	ctx := context.Background()
	s, c := newStore()
	c.failing = errors.New("connection refused")

	_, err := s.Save(ctx, storage.Document{Map: sampleMap()})
	assert.True(t, errs.Is(err, errs.ErrCodeStorage))

	_, err = s.List(ctx)
	assert.True(t, errs.Is(err, errs.ErrCodeStorage))

	_, err = s.Get(ctx, "not-a-uuid")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidMapID))
}

func TestRoleGraph(t *testing.T) {
	g := roleGraph(sampleMap())

	require.Len(t, g.roles, 4)
	assert.Equal(t, "eng2", g.roles[1]["id"])
	assert.Equal(t, []string{"ic", "mgmt"}, g.roles[1]["paths"])

	wantSteps := []map[string]any{
		{"from": "eng1", "to": "eng2", "path": "ic"},
		{"from": "eng2", "to": "staff", "path": "ic"},
		{"from": "eng2", "to": "em", "path": "mgmt"},
	}
	if diff := cmp.Diff(wantSteps, g.steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}

	// The transition to an unknown role is dropped.
	require.Len(t, g.transitions, 1)
	assert.Equal(t, true, g.transitions[0]["recommended"])
}
