// Package config loads struct-tagged configuration from YAML files and the
// environment.
//
// Supported tags:
//
//	env:"NAME"       environment variable that overrides the field
//	yaml:"name"      key in the optional YAML file
//	default:"value"  value applied when the field is still zero after loading
//	required:"true"  loading fails when the field is zero and has no default
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Validator interface allows config structs to implement custom validation logic.
// It is called after the file and environment have been applied.
type Validator interface {
	Validate() error
}

// setFromString parses raw into field according to the field's type.
func setFromString(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to duration: %v", raw, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int64, reflect.Int32:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to convert %s to int: %v", raw, err)
		}
		field.SetInt(v)
	case reflect.Float64, reflect.Float32:
		v, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to convert %s to float: %v", raw, err)
		}
		field.SetFloat(v)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("failed to convert %s to bool: %v", raw, err)
		}
		field.SetBool(v)
	case reflect.Slice:
		return setSlice(field, raw)
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}

// setSlice handles comma-separated string and int slices.
func setSlice(field reflect.Value, raw string) error {
	values := strings.Split(raw, ",")
	slice := reflect.MakeSlice(field.Type(), len(values), len(values))

	for i, v := range values {
		v = strings.TrimSpace(v)
		switch field.Type().Elem().Kind() {
		case reflect.String:
			slice.Index(i).SetString(v)
		case reflect.Int:
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("failed to convert %s to int: %v", v, err)
			}
			slice.Index(i).SetInt(int64(n))
		default:
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
	}

	field.Set(slice)
	return nil
}

// fieldKey identifies a field by struct type and field name so nested structs
// with identically named fields do not collide.
func fieldKey(t reflect.Type, f reflect.StructField) string {
	return t.Name() + "." + f.Name
}

// applyEnv overlays environment values onto every env-tagged field and returns
// the set of fields that were explicitly set.
func applyEnv(val reflect.Value, typeOfT reflect.Type, setFields map[string]bool) error {
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnv(field, fieldType.Type, setFields); err != nil {
				return err
			}
			continue
		}

		tag := fieldType.Tag.Get("env")
		if tag == "" {
			continue
		}
		envVal := os.Getenv(tag)
		if envVal == "" {
			continue
		}

		if err := setFromString(field, envVal); err != nil {
			return fmt.Errorf("env %s: %w", tag, err)
		}
		setFields[fieldKey(typeOfT, fieldType)] = true
	}
	return nil
}

// applyDefaults fills zero fields from default tags and reports missing required fields.
func applyDefaults(val reflect.Value, typeOfT reflect.Type, setFields map[string]bool) error {
	var result error
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typeOfT.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyDefaults(field, fieldType.Type, setFields); err != nil {
				result = multierror.Append(result, err)
			}
			continue
		}

		defaultTag := fieldType.Tag.Get("default")
		required := isTrue(fieldType.Tag.Get("required")) && defaultTag == ""

		if !field.IsZero() {
			continue
		}
		if required {
			result = multierror.Append(result, fmt.Errorf("required field env:%s / yaml:%s is missing",
				fieldType.Tag.Get("env"), fieldType.Tag.Get("yaml")))
			continue
		}
		if defaultTag == "" || setFields[fieldKey(typeOfT, fieldType)] {
			continue
		}
		if err := setFromString(field, defaultTag); err != nil {
			result = multierror.Append(result, fmt.Errorf("default for %s: %w", fieldType.Name, err))
		}
	}
	return result
}

func isTrue(tag string) bool {
	tag = strings.ToLower(tag)
	return tag == "true" || tag == "1"
}

// GetConfigFromEnvVars loads configuration from environment variables only.
// On failure dest is reset to its zero value.
//
//	var cfg MyConfig
//	err := GetConfigFromEnvVars(&cfg)
func GetConfigFromEnvVars[T any](dest *T) error {
	val := reflect.ValueOf(dest).Elem()
	typeOfT := val.Type()

	setFields := make(map[string]bool)
	if err := applyEnv(val, typeOfT, setFields); err != nil {
		return err
	}

	if err := applyDefaults(val, typeOfT, setFields); err != nil {
		var zero T
		*dest = zero
		return err
	}

	if validator, ok := any(dest).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	} else if validator, ok := any(*dest).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	return nil
}

// GetConfig loads configuration from a YAML file first, then overlays environment
// variables. ${VAR} references inside the file are expanded from the environment.
// If filepath is empty, only environment variables are used. If allowFileErrors
// is true, file read/parse errors fall back to env vars only.
//
//	var cfg MyConfig
//	err := GetConfig(&cfg, "config.yaml", true)
func GetConfig[T any](dest *T, filepath string, allowFileErrors bool) error {
	if filepath == "" {
		return GetConfigFromEnvVars(dest)
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), dest); err != nil {
		if allowFileErrors {
			return GetConfigFromEnvVars(dest)
		}
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return GetConfigFromEnvVars(dest)
}
