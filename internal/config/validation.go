package config

import (
	"fmt"

	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
)

// Validate checks the configuration for values a build cannot work with.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return derrors.ValidationError("at least one page must be configured").Build()
	}
	if c.TemplatesDir == "" {
		return derrors.ValidationError("templates_dir is required").Build()
	}
	if c.DestDir == "" {
		return derrors.ValidationError("dest_dir is required").Build()
	}
	if !c.BaseURL.IsAbs() || c.BaseURL.Host == "" {
		return derrors.ValidationError("base_url must be an absolute URL").
			WithContext("base_url", c.BaseURL.String()).
			Build()
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return derrors.ValidationError(fmt.Sprintf("preview.port %d out of range", c.Preview.Port)).Build()
	}
	if c.Preview.PollInterval < 0 {
		return derrors.ValidationError("preview.poll_interval must not be negative").Build()
	}

	seen := make(map[string]bool, len(c.Pages))
	for i, p := range c.Pages {
		if p.Name == "" {
			return derrors.ValidationError(fmt.Sprintf("pages[%d]: name is required", i)).Build()
		}
		if seen[p.Name] {
			return derrors.ValidationError("duplicate page name").WithContext("page", p.Name).Build()
		}
		seen[p.Name] = true
		if p.TemplatePath == "" {
			return derrors.ValidationError("template_path is required").WithContext("page", p.Name).Build()
		}
		for j, e := range p.Entries {
			if e.Source() == "" {
				return derrors.ValidationError(fmt.Sprintf("entries[%d]: %s path is required", j, e.Kind)).
					WithContext("page", p.Name).
					Build()
			}
			if e.TemplatePath == "" {
				return derrors.ValidationError(fmt.Sprintf("entries[%d]: template_path is required", j)).
					WithContext("page", p.Name).
					Build()
			}
		}
	}
	return nil
}
