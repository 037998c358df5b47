package annotation

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/datasource"
	"github.com/starford/modeler/internal/metastore"
)

// connectionNamespace seeds the name-based UUIDs used as connection refs.
var connectionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("modeler:connection"))

// Manager persists annotation groups and connection references. It holds no
// state; every call names the store it works against.
type Manager struct{}

// StoreConnection saves meta and returns its reference. The reference is
// derived from the connection name, so storing the same connection again
// returns the same reference and replaces the stored details.
func (Manager) StoreConnection(meta datasource.ConnectionMeta, store metastore.Store) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", apperr.ErrInvalid.New("connection", err.Error())
	}
	ref := ConnectionRef(meta.Name)
	blob, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("annotation: encode connection: %w", err)
	}
	if err := store.Put(metastore.KindConnection, ref, blob); err != nil {
		return "", err
	}
	return ref, nil
}

// ConnectionRef returns the reference StoreConnection uses for a connection
// called name.
func ConnectionRef(name string) string {
	return uuid.NewSHA1(connectionNamespace, []byte(name)).String()
}

// LoadConnection returns the connection stored under ref.
func (Manager) LoadConnection(ref string, store metastore.Store) (datasource.ConnectionMeta, error) {
	var meta datasource.ConnectionMeta
	blob, err := store.Get(metastore.KindConnection, ref)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(blob, &meta); err != nil {
		return meta, apperr.ErrStoreFailure.New(fmt.Sprintf("decode connection %s: %v", ref, err))
	}
	return meta, nil
}

// CreateGroup persists g under its name. It fails with ErrNameConflict when
// the name is taken. Shared groups must resolve a data provider first.
func (m Manager) CreateGroup(g *Group, store metastore.Store) error {
	blob, err := m.prepare(g, store)
	if err != nil {
		return err
	}
	return store.Create(metastore.KindAnnotationGroup, g.Name, blob)
}

// SaveGroup persists g under its name, replacing any previous version.
func (m Manager) SaveGroup(g *Group, store metastore.Store) error {
	blob, err := m.prepare(g, store)
	if err != nil {
		return err
	}
	return store.Put(metastore.KindAnnotationGroup, g.Name, blob)
}

func (m Manager) prepare(g *Group, store metastore.Store) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, apperr.ErrInvalid.New("annotation group", err.Error())
	}
	if g.SharedDimension {
		if _, err := m.ResolveProvider(g, store); err != nil {
			return nil, err
		}
	}
	blob, err := EncodeGroup(g)
	if err != nil {
		return nil, fmt.Errorf("annotation: encode group %s: %w", g.Name, err)
	}
	return blob, nil
}

// LoadGroup returns the group stored under name, or ErrNotFound.
func (Manager) LoadGroup(name string, store metastore.Store) (*Group, error) {
	blob, err := store.Get(metastore.KindAnnotationGroup, name)
	if err != nil {
		return nil, err
	}
	g, err := DecodeGroup(blob)
	if err != nil {
		return nil, apperr.ErrStoreFailure.New(err.Error())
	}
	return g, nil
}

// ListGroups returns the names of all stored groups in ascending order.
func (Manager) ListGroups(store metastore.Store) ([]string, error) {
	return store.List(metastore.KindAnnotationGroup)
}

// DeleteGroup removes the group called name.
func (Manager) DeleteGroup(name string, store metastore.Store) error {
	return store.Delete(metastore.KindAnnotationGroup, name)
}

// ResolveProvider returns the first data provider of g that names a table
// and whose connection reference resolves in store.
func (m Manager) ResolveProvider(g *Group, store metastore.Store) (DataProvider, error) {
	for _, p := range g.DataProviders {
		if !p.complete() {
			continue
		}
		_, err := m.LoadConnection(p.ConnectionRef, store)
		if err == nil {
			return p, nil
		}
		if !apperr.Is(err, apperr.ErrNotFound) {
			return DataProvider{}, err
		}
	}
	return DataProvider{}, apperr.ErrNotFound.New("data provider for group", g.Name)
}
