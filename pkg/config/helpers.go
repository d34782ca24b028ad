package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/shelfsync/pkg/errors"
)

const secretMask = "********"

// secretKeys are masked by ToMap.
var secretKeys = map[string]bool{
	"catalog.token":      true,
	"storage.secret_key": true,
}

// field locates the struct field addressed by a dotted key such as
// "settings.retry".
func (c *Config) field(key string) (reflect.Value, error) {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return reflect.Value{}, errors.Wrap(errors.ErrUnknownConfigKey, key)
	}

	root := reflect.ValueOf(c).Elem()
	for i := 0; i < root.NumField(); i++ {
		if yamlKey(root.Type().Field(i)) != section {
			continue
		}
		sv := root.Field(i)
		for j := 0; j < sv.NumField(); j++ {
			if yamlKey(sv.Type().Field(j)) == name {
				return sv.Field(j), nil
			}
		}
	}
	return reflect.Value{}, errors.Wrap(errors.ErrUnknownConfigKey, key)
}

func yamlKey(f reflect.StructField) string {
	return strings.Split(f.Tag.Get("yaml"), ",")[0]
}

// SetValue sets a configuration value by dotted key, e.g.
// "settings.retry" or "storage.endpoint". The result is validated.
func (c *Config) SetValue(key, value string) error {
	fv, err := c.field(key)
	if err != nil {
		return err
	}

	switch fv.Interface().(type) {
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		fv.SetInt(int64(d))
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		fv.SetBool(b)
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		fv.SetInt(int64(n))
	case string:
		fv.SetString(value)
	default:
		return errors.Wrap(errors.ErrUnknownConfigKey, key)
	}

	return c.Validate()
}

// GetValue returns the value of a dotted key as a string.
func (c *Config) GetValue(key string) (string, error) {
	fv, err := c.field(key)
	if err != nil {
		return "", err
	}
	return formatValue(fv), nil
}

func formatValue(fv reflect.Value) string {
	switch v := fv.Interface().(type) {
	case time.Duration:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToMap returns every key with its value. Secrets are masked.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	for _, key := range Keys() {
		fv, err := c.field(key)
		if err != nil {
			continue
		}
		value := formatValue(fv)
		if secretKeys[key] && value != "" {
			value = secretMask
		}
		result[key] = value
	}
	return result
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	var keys []string
	root := reflect.TypeOf(Config{})
	for i := 0; i < root.NumField(); i++ {
		section := root.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, yamlKey(section)+"."+yamlKey(section.Type.Field(j)))
		}
	}
	sort.Strings(keys)
	return keys
}

// Masked returns a copy of the configuration with secrets replaced.
func (c *Config) Masked() *Config {
	masked := *c
	if masked.Catalog.Token != "" {
		masked.Catalog.Token = secretMask
	}
	if masked.Storage.SecretKey != "" {
		masked.Storage.SecretKey = secretMask
	}
	return &masked
}
