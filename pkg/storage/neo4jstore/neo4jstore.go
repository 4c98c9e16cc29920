// Package neo4jstore implements storage.Store on a Neo4j graph.
//
// Each map is a (:CareerMap) node holding the serialized document. Its
// roles are (:Role) nodes attached with [:HAS_ROLE]; consecutive roles of a
// path are joined by [:NEXT {path}] and transitions by
// [:LEADS_TO {recommended}]. The role graph is rebuilt on every save, so it
// can be queried directly:
//
//	MATCH (:CareerMap {id: $id})-[:HAS_ROLE]->(r:Role)-[:LEADS_TO]->(next)
//	RETURN r.name, next.name
package neo4jstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	errs "github.com/matzehuels/metromap/pkg/errors"
	"github.com/matzehuels/metromap/pkg/graph"
	"github.com/matzehuels/metromap/pkg/storage"
)

const (
	cypherGet = `MATCH (m:CareerMap {id: $id}) RETURN m.document AS document`

	cypherList = `MATCH (m:CareerMap)
RETURN m.document AS document
ORDER BY m.updated_at DESC, m.id`

	cypherUpsert = `MERGE (m:CareerMap {id: $id})
SET m.name = $name, m.document = $document, m.updated_at = $updated_at
WITH m
OPTIONAL MATCH (m)-[:HAS_ROLE]->(old:Role)
DETACH DELETE old`

	cypherRoles = `MATCH (m:CareerMap {id: $id})
UNWIND $roles AS role
CREATE (m)-[:HAS_ROLE]->(:Role {id: role.id, name: role.name, level: role.level, paths: role.paths})`

	cypherSteps = `MATCH (m:CareerMap {id: $id})
UNWIND $steps AS step
MATCH (m)-[:HAS_ROLE]->(a:Role {id: step.from}), (m)-[:HAS_ROLE]->(b:Role {id: step.to})
CREATE (a)-[:NEXT {path: step.path}]->(b)`

	cypherTransitions = `MATCH (m:CareerMap {id: $id})
UNWIND $transitions AS t
MATCH (m)-[:HAS_ROLE]->(a:Role {id: t.from}), (m)-[:HAS_ROLE]->(b:Role {id: t.to})
CREATE (a)-[:LEADS_TO {recommended: t.recommended}]->(b)`

	cypherDelete = `MATCH (m:CareerMap {id: $id})
OPTIONAL MATCH (m)-[:HAS_ROLE]->(r:Role)
DETACH DELETE r, m`
)

// Store is a Neo4j-backed map store.
type Store struct {
	client Client
	now    func() time.Time
}

// New returns a store using client. The store owns the client and closes
// it on Close.
func New(client Client) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) Save(ctx context.Context, doc storage.Document) (storage.Document, error) {
	var existing *storage.Document
	if doc.ID != "" && errs.ValidateMapID(doc.ID) == nil {
		prev, err := s.Get(ctx, doc.ID)
		switch {
		case err == nil:
			existing = &prev
		case !errs.Is(err, errs.ErrCodeMapNotFound):
			return storage.Document{}, err
		}
	}
	doc, err := storage.Prepare(doc, existing, s.now())
	if err != nil {
		return storage.Document{}, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return storage.Document{}, fmt.Errorf("marshal map: %w", err)
	}

	g := roleGraph(doc.Map)
	writes := []struct {
		cypher string
		params map[string]any
	}{
		{cypherUpsert, map[string]any{
			"id":         doc.ID,
			"name":       doc.Name,
			"document":   string(data),
			"updated_at": doc.UpdatedAt.UnixMilli(),
		}},
		{cypherRoles, map[string]any{"id": doc.ID, "roles": g.roles}},
		{cypherSteps, map[string]any{"id": doc.ID, "steps": g.steps}},
		{cypherTransitions, map[string]any{"id": doc.ID, "transitions": g.transitions}},
	}
	for _, w := range writes {
		if _, err := s.client.ExecuteWrite(ctx, w.cypher, w.params); err != nil {
			return storage.Document{}, errs.Backend(err, "save map %s", doc.ID)
		}
	}
	return doc, nil
}

func (s *Store) Get(ctx context.Context, id string) (storage.Document, error) {
	if err := errs.ValidateMapID(id); err != nil {
		return storage.Document{}, err
	}
	res, err := s.client.ExecuteRead(ctx, cypherGet, map[string]any{"id": id})
	if err != nil {
		return storage.Document{}, errs.Backend(err, "get map %s", id)
	}
	if len(res.Records) == 0 {
		return storage.Document{}, storage.NotFound(id)
	}
	return decode(res.Records[0])
}

func (s *Store) List(ctx context.Context) ([]storage.Document, error) {
	res, err := s.client.ExecuteRead(ctx, cypherList, nil)
	if err != nil {
		return nil, errs.Backend(err, "list maps")
	}
	docs := make([]storage.Document, 0, len(res.Records))
	for _, rec := range res.Records {
		doc, err := decode(rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errs.ValidateMapID(id); err != nil {
		return err
	}
	if _, err := s.client.ExecuteWrite(ctx, cypherDelete, map[string]any{"id": id}); err != nil {
		return errs.Backend(err, "delete map %s", id)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func decode(rec Record) (storage.Document, error) {
	raw, ok := rec["document"].(string)
	if !ok {
		return storage.Document{}, errs.New(errs.ErrCodeStorage, "map node has no document")
	}
	var doc storage.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return storage.Document{}, errs.Backend(err, "parse stored map")
	}
	return doc, nil
}

// =============================================================================
// Role graph parameters
// =============================================================================

type graphParams struct {
	roles       []map[string]any
	steps       []map[string]any
	transitions []map[string]any
}

// roleGraph flattens m into Cypher parameters. A role listed on several
// paths becomes one node carrying every path ID; its name and level come
// from the first listing.
func roleGraph(m graph.CareerMap) graphParams {
	var (
		g     graphParams
		index = make(map[string]int)
	)
	for _, p := range m.Paths {
		for i, r := range p.Roles {
			if j, ok := index[r.ID]; ok {
				g.roles[j]["paths"] = append(g.roles[j]["paths"].([]string), p.ID)
			} else {
				index[r.ID] = len(g.roles)
				g.roles = append(g.roles, map[string]any{
					"id":    r.ID,
					"name":  r.Name,
					"level": r.Level,
					"paths": []string{p.ID},
				})
			}
			if i > 0 {
				g.steps = append(g.steps, map[string]any{
					"from": p.Roles[i-1].ID,
					"to":   r.ID,
					"path": p.ID,
				})
			}
		}
	}
	for _, t := range m.Transitions {
		_, from := index[t.FromID]
		_, to := index[t.ToID]
		if !from || !to {
			continue
		}
		g.transitions = append(g.transitions, map[string]any{
			"from":        t.FromID,
			"to":          t.ToID,
			"recommended": t.Recommended,
		})
	}
	return g
}

var _ storage.Store = (*Store)(nil)
