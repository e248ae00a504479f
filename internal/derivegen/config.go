package derivegeninternal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sublee/derivegen/internal/derive"
)

// ConfigFile is the name of the configuration file looked up in the working
// directory.
const ConfigFile = "derivegen.yaml"

// DefaultSuffix replaces the ".rs" extension of an input file to name its
// output file.
const DefaultSuffix = "_derive.rs"

// Config configures a run. The zero value is usable.
type Config struct {
	// Crate is the path of the runtime crate emitted code refers to.
	Crate string `yaml:"crate"`
	// Suffix names output files: "a.rs" becomes "a" + Suffix.
	Suffix string `yaml:"suffix" validate:"omitempty,endswith=.rs,ne=.rs"`
	// Derives restricts the derives to expand. Empty allows every derive.
	Derives []string `yaml:"derives" validate:"dive,derive"`
	// Header is written verbatim after the generated-code notice.
	Header string `yaml:"header"`
}

// LoadConfig reads a configuration file. A missing file is an empty
// configuration.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Update returns a copy of c overridden by the non-zero fields of o.
func (c Config) Update(o Config) Config {
	if o.Crate != "" {
		c.Crate = o.Crate
	}
	if o.Suffix != "" {
		c.Suffix = o.Suffix
	}
	if o.Derives != nil {
		c.Derives = o.Derives
	}
	if o.Header != "" {
		c.Header = o.Header
	}
	return c
}

var validate = validator.New()

func init() {
	// A derive name must be a trait name, not an attribute name.
	_ = validate.RegisterValidation("derive", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		d, ok := derive.Lookup(name)
		return ok && d.Name == name
	})
}

// Validate reports unknown derive names and suffixes that would overwrite
// inputs.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}

	var errs error
	for _, ve := range valErrs {
		switch ve.Tag() {
		case "derive":
			errs = errors.Join(errs, fmt.Errorf("unknown derive %q\n\tknown derives: %s", ve.Value(), strings.Join(derive.Names(), ", ")))
		case "endswith", "ne":
			errs = errors.Join(errs, fmt.Errorf("invalid suffix %q\n\tthe suffix must end with \".rs\" and must not be \".rs\"", ve.Value()))
		default:
			errs = errors.Join(errs, fmt.Errorf("invalid %s: failed %s validation", strings.ToLower(ve.Field()), ve.Tag()))
		}
	}
	return errs
}

func (c Config) suffix() string {
	if c.Suffix == "" {
		return DefaultSuffix
	}
	return c.Suffix
}

// allows reports whether the derive named name may be expanded.
func (c Config) allows(name string) bool {
	return len(c.Derives) == 0 || slices.Contains(c.Derives, name)
}

func (c Config) deriveConfig() derive.Config {
	return derive.Config{Crate: c.Crate}
}
