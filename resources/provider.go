// Package resources serves the content blocker's bundled raw resources:
// the filter database scripts, the remote URLs from application.properties,
// and the two locale-templated scripts.
//
// Every script is loaded lazily on first access and kept in a Cache for the
// lifetime of the Cache. The only exceptions are update scripts, which are
// looked up by version pair, and the select-filters script, which follows
// the current default locale.
package resources

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minios-linux/cbres/inputmethod"
	"github.com/minios-linux/cbres/locale"
	"github.com/minios-linux/cbres/propfile"
	"github.com/minios-linux/cbres/rawres"
)

// Resource names in the raw bundle.
const (
	NameProperties                = "application"
	NameCreateTables              = "create_tables"
	NameDropTables                = "drop_tables"
	NameInsertFilters             = "insert_filters"
	NameInsertFiltersLocalization = "insert_filters_localization"
	NameEnableDefaultFilters      = "enable_default_filters"
	NameSelectFilters             = "select_filters"

	updatePrefix = "update_"
)

// Property keys in application.properties.
const (
	KeyCheckFilterVersionsURL = "check.filter.versions.url"
	KeyFilterURL              = "get.filter.url"
)

// Placeholder is substituted in templated scripts.
const Placeholder = "{0}"

// ResourceError reports a mandatory resource that could not be loaded.
// It indicates a broken bundle and is not meant to be recovered from.
type ResourceError struct {
	Name string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("error getting resource %s: %v", e.Name, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Platform bundles the host capabilities the provider depends on.
type Platform struct {
	Resources    rawres.Resources
	InputMethods inputmethod.Manager
	Locale       locale.Source
}

// Provider exposes the bundled resources. It is safe for concurrent use.
type Provider struct {
	platform Platform
	cache    *Cache
	logger   *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Provider over platform. A nil cache gets a private one;
// pass a shared cache to keep loaded scripts across providers.
func New(platform Platform, cache *Cache, opts ...Option) *Provider {
	if cache == nil {
		cache = &Cache{}
	}
	if platform.Locale == nil {
		platform.Locale = locale.System{}
	}
	p := &Provider{
		platform: platform,
		cache:    cache,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cache returns the provider's cache.
func (p *Provider) Cache() *Cache { return p.cache }

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

// CheckFilterVersionsURL returns the URL for checking filter versions.
func (p *Provider) CheckFilterVersionsURL() (string, bool) {
	return p.Property(KeyCheckFilterVersionsURL)
}

// FilterURL returns the URL template for downloading filter rules.
func (p *Provider) FilterURL() (string, bool) {
	return p.Property(KeyFilterURL)
}

// Property returns a value from application.properties. A missing or
// unreadable properties resource is logged and reported as absent; the
// load is retried on the next call.
func (p *Provider) Property(key string) (string, bool) {
	props := p.cache.properties.Load()
	if props == nil {
		loaded, err := p.loadProperties()
		if err != nil {
			p.logger.Error("failed to load properties", "resource", NameProperties, "error", err)
			return "", false
		}
		p.cache.properties.Store(loaded)
		props = loaded
	}
	return props.Get(key)
}

func (p *Provider) loadProperties() (*propfile.File, error) {
	rc, err := p.platform.Resources.Open(NameProperties)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return propfile.Load(rc)
}

// ---------------------------------------------------------------------------
// Scripts
// ---------------------------------------------------------------------------

// CreateTablesScript returns the schema creation script.
func (p *Provider) CreateTablesScript() (string, error) {
	return p.cached(&p.cache.createTables, NameCreateTables)
}

// DropTablesScript returns the script dropping all filter tables.
func (p *Provider) DropTablesScript() (string, error) {
	return p.cached(&p.cache.dropTables, NameDropTables)
}

// InsertFiltersScript returns the script seeding the filter list.
func (p *Provider) InsertFiltersScript() (string, error) {
	return p.cached(&p.cache.insertFilters, NameInsertFilters)
}

// InsertFiltersLocalizationScript returns the script seeding localized
// filter names and descriptions.
func (p *Provider) InsertFiltersLocalizationScript() (string, error) {
	return p.cached(&p.cache.insertFiltersLocalization, NameInsertFiltersLocalization)
}

// UpdateScript returns the migration script from oldVersion to newVersion.
// ok is false when the bundle has no such script, meaning there is no
// direct migration path.
func (p *Provider) UpdateScript(oldVersion, newVersion int) (script string, ok bool, err error) {
	name := UpdateScriptName(oldVersion, newVersion)
	if !p.platform.Resources.Has(name) {
		return "", false, nil
	}
	text, err := p.load(name)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// UpdateScriptName is the resource name of a migration script.
func UpdateScriptName(oldVersion, newVersion int) string {
	return fmt.Sprintf("%s%d_%d", updatePrefix, oldVersion, newVersion)
}

// EnableDefaultFiltersScript returns the script enabling the filters for
// the user's languages. The language list is computed on the first call
// only; later input-method or locale changes do not alter the result.
func (p *Provider) EnableDefaultFiltersScript() (string, error) {
	if s := p.cache.enableDefaultFilters.Load(); s != nil {
		return *s, nil
	}
	template, err := p.load(NameEnableDefaultFilters)
	if err != nil {
		return "", err
	}
	langs := p.languageSet()
	script := strings.ReplaceAll(template, Placeholder, langs.Join(","))
	p.logger.Debug("enable default filters script built", "languages", langs.Codes())
	// First publisher wins.
	if !p.cache.enableDefaultFilters.CompareAndSwap(nil, &script) {
		return *p.cache.enableDefaultFilters.Load(), nil
	}
	return script, nil
}

// SelectFiltersScript returns the filter listing query for the current
// default locale's language. It is rebuilt on every call.
func (p *Provider) SelectFiltersScript() (string, error) {
	template, err := p.load(NameSelectFilters)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(template, Placeholder, p.DefaultLanguage()), nil
}

// cached returns the slot's content, loading it into the slot on a miss.
// Two goroutines may both miss and both load; they store equal strings.
func (p *Provider) cached(s *slot, name string) (string, error) {
	if v := s.Load(); v != nil {
		return *v, nil
	}
	text, err := p.load(name)
	if err != nil {
		return "", err
	}
	s.Store(&text)
	return text, nil
}

func (p *Provider) load(name string) (string, error) {
	text, err := rawres.ReadString(p.platform.Resources, name)
	if err != nil {
		return "", &ResourceError{Name: name, Err: err}
	}
	return text, nil
}

// ---------------------------------------------------------------------------
// Languages
// ---------------------------------------------------------------------------

// DefaultLanguage returns the language code of the current default locale.
func (p *Provider) DefaultLanguage() string {
	return locale.Code(p.platform.Locale.Default())
}

// Languages returns the user's languages: keyboard input languages in order
// of first appearance, then the default locale's language if missing.
// It is recomputed on every call.
func (p *Provider) Languages() []string {
	return p.languageSet().Codes()
}

func (p *Provider) languageSet() *locale.Set {
	codes, err := inputmethod.Languages(p.platform.InputMethods)
	if err != nil {
		p.logger.Warn("cannot get user input languages", "error", err)
		codes = nil
	}
	set := locale.NewSet(codes...)
	set.Add(p.DefaultLanguage())
	return set
}
