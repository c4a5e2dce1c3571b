package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/nao1215/spider/internal/dedup"
	"github.com/nao1215/spider/internal/fetch"
	"github.com/nao1215/spider/internal/hook"
	"github.com/nao1215/spider/internal/model"
	"github.com/nao1215/spider/internal/sink"
	"github.com/nao1215/spider/internal/transport"
)

// Chain builds the immutable template chain of sp.
func (sp SpiderConfig) Chain() (*model.Chain, error) {
	templates := make([]*model.Template, 0, len(sp.Templates))
	for i, tc := range sp.Templates {
		spec, err := tc.spec()
		if err != nil {
			return nil, fmt.Errorf("spider %q template %d: %w", sp.Name, i, err)
		}
		tmpl, err := model.NewTemplate(spec)
		if err != nil {
			return nil, fmt.Errorf("spider %q template %d: %w", sp.Name, i, err)
		}
		templates = append(templates, tmpl)
	}

	chain, err := model.NewChain(templates...)
	if err != nil {
		return nil, fmt.Errorf("spider %q: %w", sp.Name, err)
	}
	return chain, nil
}

func (tc TemplateConfig) spec() (model.TemplateSpec, error) {
	var hooks model.Hooks
	for _, slot := range []struct {
		names []string
		dst   *model.HookFunc
	}{
		{tc.Hooks.BeforeDownload, &hooks.BeforeDownload},
		{tc.Hooks.AfterDownload, &hooks.AfterDownload},
		{tc.Hooks.BeforeSave, &hooks.BeforeSave},
	} {
		fns := make([]model.HookFunc, 0, len(slot.names))
		for _, name := range slot.names {
			fn, ok := hook.Lookup(name)
			if !ok {
				return model.TemplateSpec{}, unknownHook(name)
			}
			fns = append(fns, fn)
		}
		*slot.dst = hook.Compose(fns...)
	}

	return model.TemplateSpec{
		SeedURLs:    tc.URLs,
		Expressions: model.Fields(tc.Expressions),
		Next:        tc.Next,
		Tag:         tc.Tag,
		Aliases:     model.Fields(tc.Fields),
		List:        tc.List,
		Render:      tc.Render,
		Method:      tc.Method,
		Form:        tc.Form,
		Header:      tc.Headers,
		Hooks:       hooks,
	}, nil
}

// NewFetcher builds a fresh fetcher. The headless browser is only set up
// when render is true; it starts lazily on the first render request.
func (fc FetcherConfig) NewFetcher(logger *slog.Logger, render bool) (fetch.Fetcher, error) {
	opts := []fetch.HTTPOption{
		fetch.WithTimeout(fc.Timeout),
		fetch.WithUserAgent(fc.UserAgent),
		fetch.WithHeaders(fc.Headers),
		fetch.WithHTTPLogger(logger),
	}
	if fc.Proxy != "" {
		client, err := transport.NewClient(fc.Proxy, fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("proxy %q: %w", fc.Proxy, err)
		}
		opts = append(opts, fetch.WithTransport(client.Transport()))
	}
	plain := fetch.NewHTTPFetcher(opts...)

	if !render {
		return plain, nil
	}
	browser := fetch.NewRenderFetcher(fetch.RenderOptions{
		Timeout:   fc.Render.Timeout,
		Wait:      fc.Render.Wait,
		Headless:  fc.Render.Headless == nil || *fc.Render.Headless,
		NoSandbox: fc.Render.NoSandbox == nil || *fc.Render.NoSandbox,
		UserAgent: fc.UserAgent,
		ExecPath:  fc.Render.ExecPath,
		Proxy:     fc.Proxy,
		Logger:    logger,
	})
	return fetch.NewRouter(plain, browser), nil
}

// NewFilter opens the dedup filter. The caller closes it when it
// implements io.Closer.
func (dc DedupConfig) NewFilter(ctx context.Context) (dedup.Filter, error) {
	switch dc.Kind {
	case DedupMemory, "":
		return dedup.NewMemory(), nil
	case DedupRedis:
		return dedup.NewRedis(ctx, dedup.RedisOptions{
			Addr:     dc.Redis.Addr,
			Password: dc.Redis.Password,
			DB:       dc.Redis.DB,
			Key:      dc.Redis.Key,
		})
	case DedupBadger:
		return dedup.NewBadger(dedup.BadgerOptions{Dir: dc.Badger.Dir})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDedup, dc.Kind)
	}
}

// NewSink opens one sink. Console output goes to stdout.
func (s SinkConfig) NewSink(ctx context.Context, stdout io.Writer, logger *slog.Logger) (sink.Sink, error) {
	switch s.Kind {
	case SinkConsole:
		return sink.NewConsole(stdout), nil
	case SinkFile:
		var sep rune
		if s.Separator != "" {
			sep, _ = utf8.DecodeRuneInString(s.Separator)
		}
		return sink.NewFile(sink.FileOptions{
			Path:      s.Path,
			Separator: sep,
			CRLF:      s.CRLF == nil || *s.CRLF,
		})
	case SinkSQLite, SinkPostgres:
		return sink.NewSQL(ctx, sink.SQLOptions{
			Dialect:     sink.Dialect(s.Kind),
			DSN:         s.DSN,
			Table:       s.Table,
			CreateTable: s.CreateTable == nil || *s.CreateTable,
			Logger:      logger,
		})
	case SinkKafka:
		return sink.NewKafka(sink.KafkaOptions{Brokers: s.Brokers, Topic: s.Topic})
	case SinkWordPress:
		return sink.NewWordPress(sink.WordPressOptions{
			Host:     s.Host,
			User:     s.User,
			Password: s.Password,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, s.Kind)
	}
}

// NewSinks opens every configured sink as one fan-out sink.
// Sinks opened before a failure are closed again.
func (f *File) NewSinks(ctx context.Context, stdout io.Writer, logger *slog.Logger) (*sink.Multi, error) {
	sinks := make([]sink.Sink, 0, len(f.Sinks))
	for i, sc := range f.Sinks {
		s, err := sc.NewSink(ctx, stdout, logger)
		if err != nil {
			closeErr := sink.NewMulti(sinks...).Close()
			return nil, errors.Join(fmt.Errorf("sink %d (%s): %w", i+1, sc.Kind, err), closeErr)
		}
		sinks = append(sinks, s)
	}
	return sink.NewMulti(sinks...), nil
}
