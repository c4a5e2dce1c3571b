package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/spider/internal/fetch"
	"github.com/nao1215/spider/internal/hook"
	"github.com/nao1215/spider/internal/model"
)

// Dedup kinds.
const (
	DedupMemory = "memory"
	DedupRedis  = "redis"
	DedupBadger = "badger"
)

// Sink kinds.
const (
	SinkConsole   = "console"
	SinkFile      = "file"
	SinkSQLite    = "sqlite"
	SinkPostgres  = "postgres"
	SinkKafka     = "kafka"
	SinkWordPress = "wordpress"
)

// File is the crawl definition read from spider.yaml.
type File struct {
	Fetcher FetcherConfig  `yaml:"fetcher,omitempty"`
	Dedup   DedupConfig    `yaml:"dedup,omitempty"`
	Sinks   []SinkConfig   `yaml:"sinks,omitempty"`
	Spiders []SpiderConfig `yaml:"spiders"`
}

// FetcherConfig configures how pages are downloaded.
type FetcherConfig struct {
	// Timeout bounds one plain HTTP request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Proxy is an optional SOCKS5 proxy in "host:port" form.
	Proxy string `yaml:"proxy,omitempty"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Render configures the headless browser used by render templates.
	Render RenderConfig `yaml:"render,omitempty"`
}

// RenderConfig configures the headless browser.
type RenderConfig struct {
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Wait      time.Duration `yaml:"wait,omitempty"`
	Headless  *bool         `yaml:"headless,omitempty"`
	NoSandbox *bool         `yaml:"no_sandbox,omitempty"`
	ExecPath  string        `yaml:"exec_path,omitempty"`
}

// DedupConfig selects the seen-URL store.
type DedupConfig struct {
	Kind   string       `yaml:"kind,omitempty"`
	Redis  RedisConfig  `yaml:"redis,omitempty"`
	Badger BadgerConfig `yaml:"badger,omitempty"`
}

// RedisConfig configures the Redis dedup filter.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Key      string `yaml:"key,omitempty"`
}

// BadgerConfig configures the Badger dedup filter.
type BadgerConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// SinkConfig configures one sink. Which settings apply depends on Kind.
type SinkConfig struct {
	Kind string `yaml:"kind"`

	// file
	Path      string `yaml:"path,omitempty"`
	Separator string `yaml:"separator,omitempty"`
	CRLF      *bool  `yaml:"crlf,omitempty"`

	// sqlite and postgres
	DSN         string `yaml:"dsn,omitempty"`
	Table       string `yaml:"table,omitempty"`
	CreateTable *bool  `yaml:"create_table,omitempty"`

	// kafka
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`

	// wordpress
	Host     string `yaml:"host,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// SpiderConfig is one named template chain.
type SpiderConfig struct {
	// Name identifies the spider in logs, errors and the report.
	Name string `yaml:"name"`

	// MaxPages caps fetched pages. 0 means unlimited.
	MaxPages int `yaml:"max_pages,omitempty"`

	// Templates are the chain levels, root first.
	Templates []TemplateConfig `yaml:"templates"`
}

// TemplateConfig is one level of a chain.
type TemplateConfig struct {
	URLs        []string          `yaml:"urls,omitempty"`
	List        bool              `yaml:"list,omitempty"`
	Render      bool              `yaml:"render,omitempty"`
	Method      string            `yaml:"method,omitempty"`
	Form        map[string]string `yaml:"form,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Expressions OrderedMap        `yaml:"expressions"`
	Next        string            `yaml:"next,omitempty"`
	Tag         string            `yaml:"tag,omitempty"`
	Fields      OrderedMap        `yaml:"fields,omitempty"`
	Hooks       HooksConfig       `yaml:"hooks,omitempty"`
}

// HooksConfig names the registered hooks run at each stage, in order.
type HooksConfig struct {
	BeforeDownload []string `yaml:"before_download,omitempty"`
	AfterDownload  []string `yaml:"after_download,omitempty"`
	BeforeSave     []string `yaml:"before_save,omitempty"`
}

// OrderedMap is a string mapping that keeps document order.
type OrderedMap model.Fields

// UnmarshalYAML decodes a mapping node pair by pair.
func (m *OrderedMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := make(OrderedMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %q must be a string", value.Line, key.Value)
		}
		out = append(out, model.Field{Name: key.Value, Value: value.Value})
	}
	*m = out
	return nil
}

// MarshalYAML encodes the mapping in order.
func (m OrderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}

// applyDefaults fills unset values.
func (f *File) applyDefaults() {
	if f.Fetcher.Timeout == 0 {
		f.Fetcher.Timeout = fetch.DefaultTimeout
	}
	if f.Fetcher.UserAgent == "" {
		f.Fetcher.UserAgent = fetch.DefaultUserAgent
	}
	if f.Fetcher.Render.Timeout == 0 {
		f.Fetcher.Render.Timeout = fetch.DefaultRenderTimeout
	}
	if f.Fetcher.Render.Headless == nil {
		f.Fetcher.Render.Headless = boolPtr(true)
	}
	if f.Fetcher.Render.NoSandbox == nil {
		f.Fetcher.Render.NoSandbox = boolPtr(true)
	}

	if f.Dedup.Kind == "" {
		f.Dedup.Kind = DedupMemory
	}
	if f.Dedup.Redis.Addr == "" {
		f.Dedup.Redis.Addr = "127.0.0.1:6379"
	}
	if f.Dedup.Badger.Dir == "" {
		f.Dedup.Badger.Dir = DefaultDedupDir()
	}
	f.Dedup.Badger.Dir = expandHome(f.Dedup.Badger.Dir)

	if len(f.Sinks) == 0 {
		f.Sinks = []SinkConfig{{Kind: SinkConsole}}
	}
	for i := range f.Sinks {
		s := &f.Sinks[i]
		if s.CRLF == nil {
			s.CRLF = boolPtr(true)
		}
		if s.CreateTable == nil {
			s.CreateTable = boolPtr(true)
		}
		s.Path = expandHome(s.Path)
		if s.Kind == SinkSQLite && s.DSN == "" {
			s.DSN = s.Path
			if s.DSN == "" {
				s.DSN = DefaultSQLitePath()
			}
		}
	}
}

// expandHome replaces a leading "~/" with the user's home directory.
// The path is returned unchanged when the home directory is unknown.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Validate checks the definition without building anything.
// Template semantics (next field, duplicates, XPath syntax) are checked
// when the chains are built.
func (f *File) Validate() error {
	if f.Fetcher.Timeout < 0 || f.Fetcher.Render.Timeout < 0 || f.Fetcher.Render.Wait < 0 {
		return ErrInvalidTimeout
	}

	switch f.Dedup.Kind {
	case DedupMemory, DedupRedis, DedupBadger:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDedup, f.Dedup.Kind)
	}

	for i, s := range f.Sinks {
		if err := s.validate(); err != nil {
			return fmt.Errorf("sink %d (%s): %w", i+1, s.Kind, err)
		}
	}

	if len(f.Spiders) == 0 {
		return ErrNoSpiders
	}
	names := make(map[string]bool, len(f.Spiders))
	for i, sp := range f.Spiders {
		if sp.Name == "" {
			return fmt.Errorf("spider %d: %w", i+1, ErrUnnamedSpider)
		}
		if names[sp.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSpider, sp.Name)
		}
		names[sp.Name] = true

		if err := sp.validate(); err != nil {
			return fmt.Errorf("spider %q: %w", sp.Name, err)
		}
	}
	return nil
}

func (s SinkConfig) validate() error {
	switch s.Kind {
	case SinkConsole:
		return nil
	case SinkFile:
		if s.Separator != "" && utf8.RuneCountInString(s.Separator) != 1 {
			return fmt.Errorf("separator must be one character, got %q", s.Separator)
		}
		return nil
	case SinkSQLite:
		return nil
	case SinkPostgres:
		return require("dsn", s.DSN)
	case SinkKafka:
		if len(s.Brokers) == 0 {
			return fmt.Errorf("%w: brokers", ErrMissingSinkSetting)
		}
		return nil
	case SinkWordPress:
		return require("host", s.Host)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, s.Kind)
	}
}

func (sp SpiderConfig) validate() error {
	if len(sp.Templates) == 0 {
		return ErrNoTemplates
	}
	if sp.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	for i, t := range sp.Templates {
		for _, names := range [][]string{t.Hooks.BeforeDownload, t.Hooks.AfterDownload, t.Hooks.BeforeSave} {
			for _, name := range names {
				if _, ok := hook.Lookup(name); !ok {
					return fmt.Errorf("template %d: %w", i, unknownHook(name))
				}
			}
		}
	}
	return nil
}

// Spider returns the spider named name.
func (f *File) Spider(name string) (SpiderConfig, bool) {
	for _, sp := range f.Spiders {
		if sp.Name == name {
			return sp, true
		}
	}
	return SpiderConfig{}, false
}

// Select returns the named spiders in definition order, or all spiders
// when names is empty.
func (f *File) Select(names []string) ([]SpiderConfig, error) {
	if len(names) == 0 {
		return f.Spiders, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := f.Spider(n); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpider, n)
		}
		want[n] = true
	}
	var out []SpiderConfig
	for _, sp := range f.Spiders {
		if want[sp.Name] {
			out = append(out, sp)
		}
	}
	return out, nil
}

// NeedsRender reports whether any template of sp renders scripts.
func (sp SpiderConfig) NeedsRender() bool {
	for _, t := range sp.Templates {
		if t.Render {
			return true
		}
	}
	return false
}

// unknownHook names the built-in hooks so a typo is easy to fix.
func unknownHook(name string) error {
	return fmt.Errorf("%w: %q (available: %s)", ErrUnknownHook, name, strings.Join(hook.Names(), ", "))
}

func require(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingSinkSetting, name)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
