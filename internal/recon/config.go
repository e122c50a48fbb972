package recon

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackzampolin/fundrecon/internal/catalog"
	"github.com/jackzampolin/fundrecon/internal/config"
	"github.com/jackzampolin/fundrecon/internal/consolidate"
	"github.com/jackzampolin/fundrecon/internal/home"
)

// FromConfig builds a run request from loaded configuration, resolving the
// catalog and parsing the output options.
func FromConfig(cfg *config.Config, logger *slog.Logger) (Request, error) {
	cfg = cfg.Resolved()

	cat, err := ResolveCatalog(cfg)
	if err != nil {
		return Request{}, err
	}

	identifier, err := CompileIdentifier(cfg.Identifier)
	if err != nil {
		return Request{}, err
	}

	format, err := consolidate.ParseFormat(cfg.Output.Format)
	if err != nil {
		return Request{}, err
	}
	delimiter, err := consolidate.ParseDelimiter(cfg.Output.Delimiter)
	if err != nil {
		return Request{}, err
	}
	encoding, err := consolidate.ParseEncoding(cfg.Output.Encoding)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Catalog:    cat,
		InputDir:   cfg.Input.Dir,
		Extensions: cfg.Input.Extensions,
		Identifier: identifier,
		Workers:    cfg.Workers,
		Strict:     cfg.OnError == config.OnErrorAbort,
		OutputPath: cfg.Output.Path,
		Output: consolidate.Options{
			Format:    format,
			Delimiter: delimiter,
			Encoding:  encoding,
		},
		IdentifierLabel: cfg.Output.IdentifierLabel,
		AuditPath:       cfg.Output.AuditPath,
		Logger:          logger,
	}, nil
}

// ResolveCatalog loads the configured catalog: a built-in name, a name in
// the home catalogs directory, or a file path.
func ResolveCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	h, err := home.New(config.ResolveEnvVars(cfg.Home))
	if err != nil {
		return nil, err
	}
	return catalog.Resolve(config.ResolveEnvVars(cfg.Catalog), h.CatalogsDir())
}

// CompileIdentifier compiles a file-name identifier override. An empty
// pattern returns nil, meaning the catalog's own pattern applies.
func CompileIdentifier(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("identifier pattern %q has no capture group", pattern)
	}
	return re, nil
}
