package clickhouse

import (
	"context"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
)

type (
	// Client represents a ClickHouse database connection
	Client struct {
		conn driver.Conn
	}

	// ClientOptions holds connection settings that override the DSN.
	ClientOptions struct {
		// User, Password and Database override credentials from the DSN when set
		User     string
		Password string
		Database string

		TLSSettings
	}

	// TLSSettings are the files used for mTLS. All three must be set to
	// enable TLS.
	TLSSettings struct {
		CAFile   string
		CertFile string
		KeyFile  string
	}
)

// NewClient creates a new ClickHouse client connection using only the DSN.
func NewClient(ctx context.Context, dsn string) (*Client, error) {
	return NewClientWithOptions(ctx, dsn, ClientOptions{})
}

// NewClientWithOptions creates a new ClickHouse client and verifies the
// connection with a ping.
//
// Example:
//
//	client, err := clickhouse.NewClientWithOptions(ctx, "http://localhost:8123", clickhouse.ClientOptions{
//		User:     "default",
//		Password: "secret",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
func NewClientWithOptions(ctx context.Context, dsn string, opts ClientOptions) (*Client, error) {
	chOpts, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if opts.User != "" {
		chOpts.Auth.Username = opts.User
	}
	if opts.Password != "" {
		chOpts.Auth.Password = opts.Password
	}
	if opts.Database != "" {
		chOpts.Auth.Database = opts.Database
	}

	tlsConfig, err := opts.TLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConfig != nil {
		chOpts.TLS = tlsConfig
	}

	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ClickHouse connection")
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "failed to connect to ClickHouse at %s", dsn)
	}

	return &Client{conn: conn}, nil
}

// NewClientFromConn wraps an existing driver connection.
func NewClientFromConn(conn driver.Conn) *Client {
	return &Client{conn: conn}
}

// ParseDSN converts a DSN into clickhouse-go options. Values without a scheme
// are treated as a bare host:port address.
func ParseDSN(dsn string) (*clickhouse.Options, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty ClickHouse DSN")
	}

	if !strings.Contains(dsn, "://") {
		return &clickhouse.Options{Addr: []string{dsn}}, nil
	}

	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ClickHouse DSN: %s", dsn)
	}

	return opts, nil
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping verifies the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Exec executes a single statement.
func (c *Client) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

// Select runs a query and scans every row into dest, which must be a pointer
// to a slice of structs tagged with `ch:"column"`.
func (c *Client) Select(ctx context.Context, dest any, query string, args ...any) error {
	return c.conn.Select(ctx, dest, query, args...)
}

// InsertRow inserts a single struct (tagged with `ch:"column"`) into table.
func (c *Client) InsertRow(ctx context.Context, table string, row any) error {
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return errors.Wrapf(err, "failed to prepare insert into %s", table)
	}

	if err := batch.AppendStruct(row); err != nil {
		_ = batch.Abort()
		return errors.Wrapf(err, "failed to append row to %s", table)
	}

	return errors.Wrapf(batch.Send(), "failed to insert into %s", table)
}
