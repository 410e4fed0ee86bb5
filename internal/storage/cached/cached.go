package cached

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"practice-scheduler/internal/models"
)

type Store interface {
	GetClient(ctx context.Context, clientID string) (*models.Client, error)
	ListActiveWithRecurrence(ctx context.Context, userID string) ([]models.Client, error)
	ListUserIDsWithRecurrence(ctx context.Context) ([]string, error)
	UpdateRecurrence(ctx context.Context, clientID string, r *models.Recurrence) error
	AppendException(ctx context.Context, clientID string, e models.ExceptionEntry) error
}

// ClientStore caches the per-user list of clients with an active recurrence.
// Every write to a client's recurrence drops the owning user's entry, so the
// next list sees new exceptions.
type ClientStore struct {
	Store
	cache *cache.Cache
	ttl   time.Duration
}

func New(next Store, ttl, cleanupInterval time.Duration) *ClientStore {
	return &ClientStore{
		Store: next,
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func listKey(userID string) string   { return "clients:" + userID }
func ownerKey(clientID string) string { return "owner:" + clientID }

func (c *ClientStore) ListActiveWithRecurrence(ctx context.Context, userID string) ([]models.Client, error) {
	const op = "storage.cached.ListActiveWithRecurrence"

	if v, found := c.cache.Get(listKey(userID)); found {
		clients := v.([]models.Client)
		return append([]models.Client(nil), clients...), nil
	}

	clients, err := c.Store.ListActiveWithRecurrence(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, client := range clients {
		c.cache.Set(ownerKey(client.ID), userID, cache.NoExpiration)
	}
	c.cache.Set(listKey(userID), clients, c.ttl)

	return append([]models.Client(nil), clients...), nil
}

func (c *ClientStore) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	client, err := c.Store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	c.cache.Set(ownerKey(client.ID), client.UserID, cache.NoExpiration)

	return client, nil
}

func (c *ClientStore) UpdateRecurrence(ctx context.Context, clientID string, r *models.Recurrence) error {
	defer c.invalidate(clientID)

	return c.Store.UpdateRecurrence(ctx, clientID, r)
}

func (c *ClientStore) AppendException(ctx context.Context, clientID string, e models.ExceptionEntry) error {
	defer c.invalidate(clientID)

	return c.Store.AppendException(ctx, clientID, e)
}

// Invalidate drops every cached list.
func (c *ClientStore) Invalidate() {
	c.cache.Flush()
}

func (c *ClientStore) invalidate(clientID string) {
	v, found := c.cache.Get(ownerKey(clientID))
	if !found {
		c.cache.Flush()
		return
	}

	c.cache.Delete(listKey(v.(string)))
}
