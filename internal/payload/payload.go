package payload

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kitbuilder587/serpclient/internal/domain"
)

// Payload - тело запроса к API, уходит как JSON без изменений.
type Payload map[string]any

func (p Payload) Source() domain.Source {
	s, _ := p["source"].(string)
	return domain.Source(s)
}

// Target возвращает query или url, смотря что есть в payload
func (p Payload) Target() string {
	if q, ok := p["query"].(string); ok {
		return q
	}
	u, _ := p["url"].(string)
	return u
}

type ContextParam struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Options - необязательные поля запроса. Нулевое значение = не задано.
type Options struct {
	Domain              string
	StartPage           int
	Pages               int
	Limit               int
	UserAgentType       string
	Locale              string
	GeoLocation         string
	Render              string
	CallbackURL         string
	Parse               bool
	Context             []ContextParam
	ParsingInstructions map[string]any
	ParserType          string
	ContentEncoding     string
}

type Builder func(target string, opts Options) (Payload, error)

var userAgentTypes = map[string]bool{
	"desktop":         true,
	"desktop_chrome":  true,
	"desktop_edge":    true,
	"desktop_firefox": true,
	"desktop_opera":   true,
	"desktop_safari":  true,
	"mobile":          true,
	"mobile_android":  true,
	"mobile_ios":      true,
	"tablet":          true,
	"tablet_android":  true,
	"tablet_ios":      true,
}

var renderModes = map[string]bool{
	"html": true,
	"png":  true,
}

const DefaultUserAgentType = "desktop"

// layout описывает дефолты конкретного source
type layout struct {
	source    domain.Source
	targetKey string // "query" или "url"
	host      string // для url-источников: обязательная подстрока хоста

	domain          string
	paginate        bool
	limit           bool
	render          string
	parse           bool // писать parse=false, если не задан
	contentEncoding string
}

func (l layout) build(target string, opts Options) (Payload, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidArgument, l.targetKey)
	}
	if l.targetKey == "url" {
		if err := validateURL(target, l.host); err != nil {
			return nil, err
		}
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	p := Payload{
		"source":          string(l.source),
		l.targetKey:       target,
		"user_agent_type": orDefault(opts.UserAgentType, DefaultUserAgentType),
	}

	if d := orDefault(opts.Domain, l.domain); d != "" {
		p["domain"] = d
	}
	if l.paginate {
		p["start_page"] = orDefaultInt(opts.StartPage, 1)
		p["pages"] = orDefaultInt(opts.Pages, 1)
	} else {
		setInt(p, "start_page", opts.StartPage)
		setInt(p, "pages", opts.Pages)
	}
	if l.limit {
		p["limit"] = orDefaultInt(opts.Limit, 10)
	} else {
		setInt(p, "limit", opts.Limit)
	}
	if r := orDefault(opts.Render, l.render); r != "" {
		p["render"] = r
	}
	if opts.Parse || l.parse {
		p["parse"] = opts.Parse
	}
	if enc := orDefault(opts.ContentEncoding, l.contentEncoding); enc != "" {
		p["content_encoding"] = enc
	}

	setString(p, "locale", opts.Locale)
	setString(p, "geo_location", opts.GeoLocation)
	setString(p, "callback_url", opts.CallbackURL)
	setString(p, "parser_type", opts.ParserType)
	if len(opts.Context) > 0 {
		p["context"] = opts.Context
	}
	if len(opts.ParsingInstructions) > 0 {
		p["parsing_instructions"] = opts.ParsingInstructions
	}

	return p, nil
}

func (o Options) validate() error {
	if o.StartPage < 0 {
		return fmt.Errorf("%w: start_page must be a positive integer, got %d", domain.ErrInvalidArgument, o.StartPage)
	}
	if o.Pages < 0 {
		return fmt.Errorf("%w: pages must be a positive integer, got %d", domain.ErrInvalidArgument, o.Pages)
	}
	if o.Limit < 0 {
		return fmt.Errorf("%w: limit must be a positive integer, got %d", domain.ErrInvalidArgument, o.Limit)
	}
	if o.UserAgentType != "" && !userAgentTypes[o.UserAgentType] {
		return fmt.Errorf("%w: unknown user_agent_type %q", domain.ErrInvalidArgument, o.UserAgentType)
	}
	if o.Render != "" && !renderModes[o.Render] {
		return fmt.Errorf("%w: unknown render %q", domain.ErrInvalidArgument, o.Render)
	}
	if len(o.ParsingInstructions) > 0 && !o.Parse {
		return fmt.Errorf("%w: parsing_instructions require parse=true", domain.ErrInvalidArgument)
	}
	if o.CallbackURL != "" {
		if err := validateURL(o.CallbackURL, ""); err != nil {
			return fmt.Errorf("callback_url: %w", err)
		}
	}
	for _, c := range o.Context {
		if c.Key == "" {
			return fmt.Errorf("%w: context key must not be empty", domain.ErrInvalidArgument)
		}
	}
	return nil
}

// только http/https с валидным хостом
func validateURL(raw, host string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid url %q", domain.ErrInvalidArgument, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url must be http or https: %q", domain.ErrInvalidArgument, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url has no host: %q", domain.ErrInvalidArgument, raw)
	}
	if host != "" && !strings.Contains(strings.ToLower(u.Host), host) {
		return fmt.Errorf("%w: url %q is not a %s url", domain.ErrInvalidArgument, raw, strings.TrimSuffix(host, "."))
	}
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orDefaultInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func setString(p Payload, key, v string) {
	if v != "" {
		p[key] = v
	}
}

func setInt(p Payload, key string, v int) {
	if v > 0 {
		p[key] = v
	}
}
