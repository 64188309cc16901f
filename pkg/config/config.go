// Package config loads YAML or TOML configuration files, fills defaults from
// struct tags and watches the file for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/radovskyb/watcher"
	"gopkg.in/yaml.v3"

	"github.com/forest33/sockserver/pkg/logger"
)

const (
	EnvConfigPath = "SOCKSERVER_CONFIG"

	tagDefault    = "default"
	watchInterval = time.Second
)

type format uint8

const (
	formatYAML format = iota
	formatTOML
)

type Config struct {
	path      string
	format    format
	data      interface{}
	log       *logger.Logger
	observers []func(interface{})
	watcher   *watcher.Watcher
	mux       sync.Mutex
}

// New reads the configuration into cfg. The file is looked up in the
// SOCKSERVER_CONFIG environment variable, then in configFileDir, then next to
// the executable. A missing file is not an error, cfg gets the defaults.
func New(configFileName, configFileDir string, cfg interface{}) (*Config, error) {
	path, ok := os.LookupEnv(EnvConfigPath)
	if !ok {
		if configFileDir == "" {
			ex, err := os.Executable()
			if err != nil {
				return nil, err
			}
			configFileDir = filepath.Dir(ex)
		}
		path = filepath.Join(configFileDir, configFileName)
	}

	c := &Config{
		path:      path,
		format:    getFormat(path),
		data:      cfg,
		log:       logger.NewNop(),
		observers: make([]func(interface{}), 0, 1),
	}

	if err := c.load(cfg); err != nil {
		return nil, err
	}

	return c, nil
}

// SetLogger sets the logger used by the file watcher
func (c *Config) SetLogger(log *logger.Logger) {
	c.log = log
}

func (c *Config) Update(data interface{}) {
	c.mux.Lock()
	c.data = data
	c.mux.Unlock()
}

func (c *Config) Save() error {
	c.mux.Lock()
	defer c.mux.Unlock()

	var (
		buf []byte
		err error
	)

	switch c.format {
	case formatTOML:
		b := &bytes.Buffer{}
		err = toml.NewEncoder(b).Encode(c.data)
		buf = b.Bytes()
	default:
		buf, err = yaml.Marshal(c.data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, buf, 0664); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) GetPath() string {
	return c.path
}

// AddObserver registers f to be called with the reloaded configuration every
// time the file is written. The watcher starts with the first observer. Each
// reload decodes into a new value, the configuration passed to New is never
// modified by the watcher.
func (c *Config) AddObserver(f func(interface{})) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	if len(c.observers) == 0 {
		if err := c.startWatcher(); err != nil {
			return err
		}
	}
	c.observers = append(c.observers, f)

	return nil
}

// Close stops the file watcher
func (c *Config) Close() {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}
}

func (c *Config) load(target interface{}) error {
	data, err := os.ReadFile(c.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := c.unmarshal(data, target); err != nil {
		return err
	}

	return Parse(target)
}

func (c *Config) unmarshal(data []byte, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	switch c.format {
	case formatTOML:
		return toml.Unmarshal(data, target)
	default:
		return yaml.Unmarshal(data, target)
	}
}

func (c *Config) startWatcher() error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)
	if err := w.Add(c.path); err != nil {
		return err
	}
	c.watcher = w

	go func() {
		for {
			select {
			case <-w.Event:
				c.reload()
			case err := <-w.Error:
				c.log.Error().Err(err).Msg("error on watching config file")
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		if err := w.Start(watchInterval); err != nil {
			c.log.Error().Err(err).Msg("failed to start watching config file")
		}
	}()

	w.Wait()

	return nil
}

func (c *Config) reload() {
	c.log.Info().Str("path", c.path).Msg("config file changed")

	c.mux.Lock()
	data := reflect.New(reflect.TypeOf(c.data).Elem()).Interface()
	if err := c.load(data); err != nil {
		c.mux.Unlock()
		c.log.Error().Err(err).Msg("failed to reload config file")
		return
	}
	c.data = data
	observers := append([]func(interface{}){}, c.observers...)
	c.mux.Unlock()

	for _, f := range observers {
		f(data)
	}
}

func getFormat(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML
	default:
		return formatYAML
	}
}

// Parse fills empty fields of target from their default tags. Fields without a
// default must be set unless they are bools, pointers or slices. Nested struct
// pointers are allocated and parsed recursively. A zero value read from the
// file can only be told apart from a missing one for pointer fields, so use
// pointers where zero is a meaningful setting.
func Parse(target interface{}) error {
	ref := reflect.Indirect(reflect.ValueOf(target))
	for i := 0; i < ref.Type().NumField(); i++ {
		structField := ref.Type().Field(i)
		fieldValue := ref.Field(i)

		if !structField.IsExported() {
			continue
		}

		kind := structField.Type.Kind()

		if isSet(structField, &fieldValue) {
			if kind == reflect.Ptr && structField.Type.Elem().Kind() == reflect.Struct {
				if err := Parse(fieldValue.Interface()); err != nil {
					return err
				}
			}
			continue
		}

		if def, ok := structField.Tag.Lookup(tagDefault); ok {
			if err := setValue(structField, &fieldValue, def); err != nil {
				return fmt.Errorf("%s.%s: %w", ref.Type().Name(), structField.Name, err)
			}
			continue
		}

		switch kind {
		case reflect.Ptr:
			if structField.Type.Elem().Kind() == reflect.Struct {
				if err := setValue(structField, &fieldValue, ""); err != nil {
					return err
				}
			}
		case reflect.Slice, reflect.Bool:
		default:
			if fieldValue.IsZero() {
				return fmt.Errorf("required configuration parameter is not specified - %s.%s", ref.Type().Name(), structField.Name)
			}
		}
	}

	return nil
}

func isSet(structField reflect.StructField, field *reflect.Value) bool {
	switch structField.Type.Kind() {
	case reflect.Ptr:
		return !field.IsNil()
	case reflect.Slice:
		return false
	default:
		return !field.IsZero()
	}
}

func setValue(structField reflect.StructField, field *reflect.Value, value string) error {
	switch structField.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(value, 10, int(structField.Type.Size()*8))
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(value, 10, int(structField.Type.Size()*8))
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, int(structField.Type.Size()*8))
		if err != nil {
			return err
		}
		field.SetFloat(v)
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		field.SetBool(strings.EqualFold(value, "true"))
	case reflect.Ptr:
		elem := structField.Type.Elem()
		if elem.Kind() == reflect.Struct {
			if field.IsNil() {
				field.Set(reflect.New(elem))
			}
			return Parse(field.Interface())
		}
		ptr := reflect.New(elem)
		elemField := structField
		elemField.Type = elem
		elemValue := ptr.Elem()
		if err := setValue(elemField, &elemValue, value); err != nil {
			return err
		}
		field.Set(ptr)
	case reflect.Slice:
		if value == "" {
			return nil
		}
		values := strings.Split(value, ",")
		sl := reflect.MakeSlice(field.Type(), len(values), len(values))
		for i, val := range values {
			sl.Index(i).Set(reflect.ValueOf(val))
		}
		field.Set(sl)
	}
	return nil
}
