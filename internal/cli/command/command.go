// Package command implements the operator CLI commands.
package command

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"codearena/internal/cli/config"
	"codearena/internal/cli/httpclient"
	"codearena/internal/common/mq"
	"codearena/internal/common/storage"
)

// Command is a single CLI verb.
type Command struct {
	Name    string
	Usage   string
	Summary string
	Run     func(ctx context.Context, rt *Runtime, args []string) error
}

// Runtime carries shared dependencies. The Kafka producer and object
// storage client are built on first use so read-only commands work
// without a broker or MinIO reachable.
type Runtime struct {
	Config *config.Config
	API    *httpclient.Client
	Out    io.Writer

	mu       sync.Mutex
	producer mq.MessageQueue
	store    storage.ObjectStorage
}

// NewRuntime builds a Runtime from the CLI configuration.
func NewRuntime(cfg *config.Config, out io.Writer) *Runtime {
	return &Runtime{
		Config: cfg,
		API:    httpclient.New(cfg.ExecutionAddr, cfg.LeaderboardAddr),
		Out:    out,
	}
}

// Producer returns the shared Kafka producer, connecting on first use.
func (rt *Runtime) Producer() (mq.Producer, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.producer != nil {
		return rt.producer, nil
	}
	q, err := mq.NewKafkaQueue(mq.KafkaConfig{
		Brokers:  rt.Config.KafkaBrokers,
		ClientID: "codearena-cli",
	})
	if err != nil {
		return nil, fmt.Errorf("connect to kafka failed: %w", err)
	}
	rt.producer = q
	return q, nil
}

// Storage returns the shared object storage client, connecting on first use.
func (rt *Runtime) Storage() (storage.ObjectStorage, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.store != nil {
		return rt.store, nil
	}
	s, err := storage.NewMinIOStorage(rt.Config.MinIO)
	if err != nil {
		return nil, fmt.Errorf("connect to object storage failed: %w", err)
	}
	rt.store = s
	return s, nil
}

// Close releases any lazily created connections.
func (rt *Runtime) Close() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.producer != nil {
		_ = rt.producer.Close()
		rt.producer = nil
	}
}

// Registry maps command names to commands.
type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]*Command)}
	for _, c := range []*Command{
		newSubmitCommand(),
		newStatusCommand(),
		newLeaderboardCommand(),
		newWatchCommand(),
		newUploadTestsCommand(),
	} {
		r.commands[c.Name] = c
	}
	return r
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// PrintUsage writes the command list to w.
func (r *Registry) PrintUsage(w io.Writer) {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Commands:")
	for _, name := range names {
		c := r.commands[name]
		fmt.Fprintf(w, "  %-14s %s\n", c.Name, c.Summary)
		fmt.Fprintf(w, "  %-14s usage: %s\n", "", c.Usage)
	}
	fmt.Fprintln(w, "  help           show this help")
	fmt.Fprintln(w, "  exit           leave the shell")
}
