package docstore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/phermann/shopcore/pkg/config"
	"github.com/phermann/shopcore/pkg/logger"
)

// Collection names used by the store layout: one document per user under
// "users" (holding the merge-updatable cart/favorites fields and the
// profile), an "orders" subcollection per user, and a global read-only
// "products" collection.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	OrdersCollection   = "orders"
)

// Client wraps the shared Firestore connection.
type Client struct {
	conn *firestore.Client
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New boots a Firestore client using the provided configuration.
func New(ctx context.Context, cfg config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("gcp project id is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	conn, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening firestore connection: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "firestore connection established")
	}

	return &Client{conn: conn}, nil
}

// Conn returns the underlying Firestore client.
func (c *Client) Conn() *firestore.Client {
	return c.conn
}

// Users returns the users collection.
func (c *Client) Users() *firestore.CollectionRef {
	return c.conn.Collection(UsersCollection)
}

// User returns the document for a single user id.
func (c *Client) User(userID string) *firestore.DocumentRef {
	return c.Users().Doc(userID)
}

// Products returns the global products collection.
func (c *Client) Products() *firestore.CollectionRef {
	return c.conn.Collection(ProductsCollection)
}

// Orders returns the per-user order history subcollection.
func (c *Client) Orders(userID string) *firestore.CollectionRef {
	return c.User(userID).Collection(OrdersCollection)
}

// Ping verifies the datasource is reachable by probing the users collection.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Users().Limit(1).Documents(ctx).GetAll()
	return err
}

// Close shuts down the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
