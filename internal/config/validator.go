package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aleister1102/ingestor/internal/common/errorwrapper"
	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "onetime", "automated", "lookup", "export":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("compression", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "none", "snappy", "gzip", "zstd":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("httpmethod", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
		case "", "POST", "PUT", "GET":
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		return formatValidationErrors(err)
	}

	return validateWatchFolders(cfg.WatchFolders)
}

// validateWatchFolders checks the cross-folder rules that struct tags cannot express.
func validateWatchFolders(folders []WatchFolderConfig) error {
	var messages []string
	seen := make(map[string]int, len(folders))

	for i, folder := range folders {
		in := filepath.Clean(folder.InPath)
		if prev, ok := seen[in]; ok {
			messages = append(messages, fmt.Sprintf("watch_folders[%d].in_path duplicates watch_folders[%d].in_path (%s)", i, prev, folder.InPath))
		}
		seen[in] = i

		if rel, err := filepath.Rel(in, filepath.Clean(folder.OutPath)); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			messages = append(messages, fmt.Sprintf("watch_folders[%d].out_path must not be inside in_path", i))
		}
	}

	if len(messages) > 0 {
		return fmt.Errorf("%w:\n  %s", errorwrapper.ErrInvalidConfiguration, strings.Join(messages, "\n  "))
	}
	return nil
}

func formatValidationErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return errorwrapper.WrapError(err, "configuration validation error")
	}

	var validationErrorMessages []string
	for _, e := range errs {
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		validationErrorMessages = append(validationErrorMessages, msg)
	}
	return fmt.Errorf("%w:\n  %s", errorwrapper.ErrInvalidConfiguration, strings.Join(validationErrorMessages, "\n  "))
}
