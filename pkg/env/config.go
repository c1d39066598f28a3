// Package env provides common configurations for deck memory tools.
package env

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/robotalks/deckmem/pkg/deck"
	"github.com/robotalks/deckmem/pkg/link"
	"github.com/robotalks/deckmem/pkg/memlink"
	"github.com/robotalks/deckmem/pkg/sim"
)

// Config provides common options to reach deck memory.
type Config struct {
	// LinkURL specifies the memlink endpoint, e.g.
	// tcp://host:port, ws://host:port/path, mqtt://host:port/prefix/
	// or sim: for an in-process simulated board.
	LinkURL string
	// MemoryID is the ID of the deck memory element.
	MemoryID uint
	// BoardFile is the YAML description of the simulated board.
	BoardFile string
}

// DefaultLinkURL is the default memlink endpoint.
const DefaultLinkURL = "tcp://localhost:7700"

var defaultConfig = Config{
	LinkURL:  DefaultLinkURL,
	MemoryID: 1,
}

func init() {
	if val := os.Getenv("DECK_LINK_URL"); val != "" {
		defaultConfig.LinkURL = val
	}
	if val := os.Getenv("DECK_MEMORY_ID"); val != "" {
		if id, err := strconv.ParseUint(val, 0, 32); err == nil {
			defaultConfig.MemoryID = uint(id)
		}
	}
	if val := os.Getenv("DECK_SIM_BOARD"); val != "" {
		defaultConfig.BoardFile = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.LinkURL, "link", defaultConfig.LinkURL, "Memlink URL.")
	flag.UintVar(&defaultConfig.MemoryID, "memory-id", defaultConfig.MemoryID, "Deck memory element ID.")
	flag.StringVar(&defaultConfig.BoardFile, "board", defaultConfig.BoardFile, "YAML file describing the simulated board.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Board creates the simulated board.
func (c *Config) Board() (*sim.Board, error) {
	cfg := sim.DefaultBoardConfig()
	if c.BoardFile != "" {
		var err error
		if cfg, err = sim.LoadBoardConfig(c.BoardFile); err != nil {
			return nil, err
		}
	}
	return sim.NewBoard(cfg)
}

// Conn is a deck memory manager with its transport.
type Conn struct {
	URL     string
	Manager *deck.Manager

	client *memlink.Client
}

// Connect creates a Manager connected to LinkURL.
func (c *Config) Connect() (*Conn, error) {
	u, err := url.Parse(c.LinkURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %v", err)
	}
	conn := &Conn{URL: c.LinkURL}
	if u.Scheme == "sim" {
		board, err := c.Board()
		if err != nil {
			return nil, err
		}
		conn.Manager = deck.NewManager(board.MemoryID(), sim.NewTransport(board))
		return conn, nil
	}
	rw, err := link.Dial(WithClientID(c.LinkURL, "deckcli"))
	if err != nil {
		return nil, err
	}
	conn.client = memlink.NewClient(rw)
	conn.Manager = deck.NewManager(uint32(c.MemoryID), conn.client)
	return conn, nil
}

// MustConnect connects and fails on error.
func (c *Config) MustConnect() *Conn {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Listen creates the listener serving the simulated board.
func (c *Config) Listen() (link.Listener, error) {
	return link.Listen(WithClientID(c.LinkURL, "decksim"))
}

// Run implements Runnable. The Manager is disconnected when the link stops.
func (c *Conn) Run(ctx context.Context) error {
	defer c.Manager.Disconnect()
	if c.client == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return c.client.Run(ctx)
}
