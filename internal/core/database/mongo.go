package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/singleflight"
)

// Connector memoizes one mongo client for the lifetime of the process.
// Concurrent cold-start callers share a single dial via singleflight; once a
// dial succeeds every later Connect returns the cached handle immediately.
// A failed dial is returned to all waiters and is not retried here.
type Connector struct {
	uri  string
	dial func(ctx context.Context, uri string) (*mongo.Client, error)

	sf     singleflight.Group
	mu     sync.RWMutex
	client *mongo.Client
}

func NewConnector(uri string) *Connector {
	return &Connector{uri: uri, dial: dialMongo}
}

// NewConnectorWithDial is used by tests to count and stub dial attempts.
func NewConnectorWithDial(uri string, dial func(ctx context.Context, uri string) (*mongo.Client, error)) *Connector {
	return &Connector{uri: uri, dial: dial}
}

// Connect returns the memoized client, dialing on first use.
func (c *Connector) Connect(ctx context.Context) (*mongo.Client, error) {
	c.mu.RLock()
	cl := c.client
	c.mu.RUnlock()
	if cl != nil {
		return cl, nil
	}

	v, err, _ := c.sf.Do("connect", func() (any, error) {
		// Re-check under the flight: a racing caller may have stored it.
		c.mu.RLock()
		cached := c.client
		c.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		cl, err := c.dial(ctx, c.uri)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.client = cl
		c.mu.Unlock()
		return cl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*mongo.Client), nil
}

// Handle returns the connected client, or nil before the first Connect.
func (c *Connector) Handle() *mongo.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	cl := c.client
	c.client = nil
	c.mu.Unlock()
	if cl == nil {
		return nil
	}
	return cl.Disconnect(ctx)
}

func dialMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}
